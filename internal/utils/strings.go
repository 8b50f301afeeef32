package utils

import (
	"regexp"
	"strings"
)

var (
	nonSlugChars     = regexp.MustCompile(`[^\w\s-]`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
	dashRun          = regexp.MustCompile(`-+`)
	nonFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
)

// TrimOrEmpty normalizes user input without turning nil into "nil".
func TrimOrEmpty(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Slugify lowercases, drops punctuation, turns whitespace into dashes and collapses dash runs.
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = nonSlugChars.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = dashRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SanitizeFilename strips the extension and keeps at most 50 safe characters.
func SanitizeFilename(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	name = nonFilenameChars.ReplaceAllString(name, "-")
	if len(name) > 50 {
		name = name[:50]
	}
	if name == "" {
		name = "file"
	}
	return name
}

// SplitList splits comma/semicolon separated values into trimmed, non-empty items.
func SplitList(raw string) []string {
	out := []string{}
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SafeOr returns def when s is blank.
func SafeOr(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
