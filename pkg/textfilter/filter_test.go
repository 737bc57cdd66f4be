package textfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain prose untouched",
			input:    "Alex stepped into the clearing.",
			expected: "Alex stepped into the clearing.",
		},
		{
			name:     "leading speaker label stripped",
			input:    "Narrator: Alex stepped into the clearing.",
			expected: "Alex stepped into the clearing.",
		},
		{
			name:     "code fences stripped",
			input:    "```\nAlex stepped into the clearing.\n```",
			expected: "Alex stepped into the clearing.",
		},
		{
			name:     "markdown heading stripped",
			input:    "## Chapter Two\nAlex stepped into the clearing.",
			expected: "Chapter Two\nAlex stepped into the clearing.",
		},
		{
			name:     "blank line runs collapsed",
			input:    "First paragraph.\n\n\n\nSecond paragraph.",
			expected: "First paragraph.\n\nSecond paragraph.",
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  \n  Alex waited.  \n",
			expected: "Alex waited.",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Clean(tt.input))
		})
	}
}

func TestSoftener_Soften(t *testing.T) {
	s := NewSoftener()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple replacement",
			input:    "What the hell is going on?",
			expected: "What the heck is going on?",
		},
		{
			name:     "multiple replacements",
			input:    "This is damn crap!",
			expected: "This is dang crud!",
		},
		{
			name:     "uppercase preserved",
			input:    "DAMN that hurt!",
			expected: "DANG that hurt!",
		},
		{
			name:     "title case preserved",
			input:    "Hell no, said Marcus.",
			expected: "Heck no, said Marcus.",
		},
		{
			name:     "partial words untouched",
			input:    "The classical assembly hall.",
			expected: "The classical assembly hall.",
		},
		{
			name:     "clean text untouched",
			input:    "Alex drew the blade and waited.",
			expected: "Alex drew the blade and waited.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.Soften(tt.input))
		})
	}
}

func TestSoftener_ContainsStrongLanguage(t *testing.T) {
	s := NewSoftener()
	assert.True(t, s.ContainsStrongLanguage("What the hell?"))
	assert.False(t, s.ContainsStrongLanguage("A quiet evening by the fire."))
}

func TestShouldSoften(t *testing.T) {
	tests := []struct {
		rating   string
		expected bool
	}{
		{"G", true},
		{"PG", true},
		{"PG-13", true},
		{"pg13", true},
		{"R", false},
		{"", false},
		{"unrated", false},
	}

	for _, tt := range tests {
		t.Run("rating "+tt.rating, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShouldSoften(tt.rating))
		})
	}
}
