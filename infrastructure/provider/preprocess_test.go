package provider

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreprocessText(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		budget int
		want   string
	}{
		{"plain text unchanged", "adds two numbers", 512, "adds two numbers"},
		{"collapses spaces", "adds   two    numbers", 512, "adds two numbers"},
		{"collapses newlines and tabs", "adds\ntwo\t\tnumbers\r\n", 512, "adds two numbers"},
		{"trims surrounding whitespace", "  adds two numbers  ", 512, "adds two numbers"},
		{"whitespace-only becomes empty", " \n\t ", 512, ""},
		{"truncates to budget", "abcdefghij", 4, "abcd"},
		{"zero budget means unlimited", strings.Repeat("a", 1000), 0, strings.Repeat("a", 1000)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, preprocessText(tt.input, tt.budget))
		})
	}
}

func TestPreprocessText_TruncatesRunesNotBytes(t *testing.T) {
	got := preprocessText("héllo wörld", 7)
	assert.Equal(t, "héllo w", got)
}
