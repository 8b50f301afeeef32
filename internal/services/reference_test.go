package services

import (
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBookingReferenceFormat(t *testing.T) {
	ref, err := NewBookingReference(fixedNow)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^ST-[0-9A-Z]+-[0-9A-F]{6}$`), ref)

	stamp := strings.Split(ref, "-")[1]
	ms, err := strconv.ParseInt(strings.ToLower(stamp), 36, 64)
	require.NoError(t, err)
	assert.Equal(t, fixedNow.UnixMilli(), ms)

	other, err := NewBookingReference(fixedNow)
	require.NoError(t, err)
	assert.NotEqual(t, ref, other)
}
