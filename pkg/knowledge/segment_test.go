package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegmentText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []Segment
	}{
		{
			name:     "empty input",
			text:     "",
			expected: nil,
		},
		{
			name:     "whitespace only",
			text:     "  \n\n \t \n\n ",
			expected: nil,
		},
		{
			name: "two paragraphs",
			text: "First paragraph.\n\nSecond paragraph.",
			expected: []Segment{
				{Index: 0, Chapter: 1, Text: "First paragraph."},
				{Index: 1, Chapter: 1, Text: "Second paragraph."},
			},
		},
		{
			name: "blank paragraphs keep indices dense",
			text: "One.\n\n\n\n   \n\nTwo.",
			expected: []Segment{
				{Index: 0, Chapter: 1, Text: "One."},
				{Index: 1, Chapter: 1, Text: "Two."},
			},
		},
		{
			name: "chapter headings advance the counter",
			text: "Chapter 1\n\nOpening scene.\n\nChapter 2\n\nLater on.",
			expected: []Segment{
				{Index: 0, Chapter: 1, Text: "Opening scene."},
				{Index: 1, Chapter: 2, Text: "Later on."},
			},
		},
		{
			name: "roman numeral heading with inline prose",
			text: "Chapter IV: The Storm\n\nRain fell.",
			expected: []Segment{
				{Index: 0, Chapter: 1, Text: "The Storm"},
				{Index: 1, Chapter: 1, Text: "Rain fell."},
			},
		},
		{
			name: "internal whitespace is normalized",
			text: "A  line\nwith   breaks.",
			expected: []Segment{
				{Index: 0, Chapter: 1, Text: "A line with breaks."},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SegmentText(tc.text))
		})
	}
}
