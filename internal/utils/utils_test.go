package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Nile Cruise: 5 Days!":      "nile-cruise-5-days",
		"  Petra   &  Wadi Rum  ":   "petra-wadi-rum",
		"Dubai -- Abu Dhabi":        "dubai-abu-dhabi",
		"Already-a-slug":            "already-a-slug",
		"Snake_case stays_together": "snake_case-stays_together",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "my-photo--1-", SanitizeFilename("my photo (1).jpg"))
	assert.Equal(t, "file", SanitizeFilename(""))
	long := SanitizeFilename("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa.png")
	assert.Len(t, long, 50)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"beach", "desert"}, SplitList(" beach, ,desert;"))
	assert.Empty(t, SplitList(""))
}

func TestParseISODate(t *testing.T) {
	d, err := ParseISODate("2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseISODate("2026-03-01T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, 8, d.Hour())

	_, err = ParseISODate("01/03/2026")
	assert.Error(t, err)

	p, err := ParseOptionalDate("  ")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 3, DaysUntil(now, now.Add(3*24*time.Hour+time.Hour)))
	assert.Equal(t, 0, DaysUntil(now, now.Add(-time.Hour)))
}

func TestRandomHex(t *testing.T) {
	s, err := RandomHex(3)
	require.NoError(t, err)
	assert.Len(t, s, 6)

	u, err := RandomHexUpper(40)
	require.NoError(t, err)
	assert.Len(t, u, 80)
	assert.Regexp(t, "^[0-9A-F]+$", u)
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "USD 1200.50", FormatPrice("", 1200.5))
	assert.Equal(t, 359.97, LineTotal(119.99, 3))
	assert.Equal(t, "TBD", FormatDate(nil))
}
