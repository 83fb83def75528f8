package reports

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTrimTo(t *testing.T) {
	assert.Equal(t, "short", trimTo("short", 10))
	assert.Equal(t, "spaced", trimTo("  spaced  ", 10))

	got := trimTo(strings.Repeat("a", 60), 48)
	assert.Equal(t, 48, utf8.RuneCountInString(got))
	assert.Equal(t, strings.Repeat("a", 47)+"…", got)
}

func TestTrimToKeepsMultibyteRunesIntact(t *testing.T) {
	s := strings.Repeat("é", 60)
	got := trimTo(s, 48)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 48, utf8.RuneCountInString(got))
	assert.Equal(t, strings.Repeat("é", 47)+"…", got)
}
