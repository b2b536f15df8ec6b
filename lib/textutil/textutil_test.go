package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollapseWhitespace(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{"  hello   world ", "hello world"},
		{"a\t\nb", "a b"},
		{"  spaced out ", "spaced out"},
		{"", ""},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, CollapseWhitespace(test.in))
	}
}

func TestIsBlank(t *testing.T) {
	require.True(t, IsBlank(""))
	require.True(t, IsBlank("   \t\n"))
	require.True(t, IsBlank("   "))
	require.False(t, IsBlank(" x "))
}

func TestStripTags(t *testing.T) {
	require.Equal(t, "bold and plain", StripTags("<b>bold</b> and plain"))
	require.Equal(t, "no markup", StripTags("no markup"))
	require.Equal(t, "", StripTags("<td nowrap>"))
}

func TestParseCommaInt(t *testing.T) {
	testCases := []struct {
		in       string
		expected int
		ok       bool
	}{
		{"37", 37, true},
		{"1,204", 1204, true},
		{" 12 ", 12, true},
		{"", 0, false},
		{"12a", 0, false},
	}
	for _, test := range testCases {
		n, ok := ParseCommaInt(test.in)
		require.Equal(t, test.ok, ok, test.in)
		require.Equal(t, test.expected, n, test.in)
	}
}
