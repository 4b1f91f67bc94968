package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{name: "short", in: "hello", limit: 10, want: "hello"},
		{name: "exact", in: "hello", limit: 5, want: "hello"},
		{name: "long", in: "hello world", limit: 8, want: "hello..."},
		{name: "trailing space trimmed", in: "abcd efgh", limit: 8, want: "abcd..."},
		{name: "unicode", in: "привет мир", limit: 6, want: "при..."},
		{name: "tiny limit", in: "hello", limit: 2, want: "he"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.limit))
		})
	}
}

func TestTruncate_NeverExceedsLimit(t *testing.T) {
	s := strings.Repeat("x", 200)
	got := Truncate(s, 80)
	assert.Equal(t, 80, Len(got))
	assert.True(t, strings.HasSuffix(got, Ellipsis))
}

func TestCollapseSpaces(t *testing.T) {
	assert.Equal(t, "a b c", CollapseSpaces("  a \t b\n\nc  "))
	assert.Equal(t, "", CollapseSpaces(" \n "))
}
