package knowledge

import (
	"regexp"
	"strings"
)

// Segment is one ordered unit of source text, usually a paragraph.
// Indices are dense over retained segments: blank paragraphs are dropped
// without leaving gaps.
type Segment struct {
	Index   int    `json:"index"`
	Chapter int    `json:"chapter"`
	Text    string `json:"text"`
}

var chapterHeadingRe = regexp.MustCompile(`(?i)^\s*(?:chapter|part)\s+(?:[0-9]+|[ivxlc]+)\b`)

// SegmentText splits raw text into ordered paragraph segments. Paragraphs are
// separated by blank lines; a "Chapter N" style heading advances the chapter
// counter and is not itself a segment. Empty input yields no segments.
func SegmentText(text string) []Segment {
	var segs []Segment
	chapter := 1
	seen := false

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if chapterHeadingRe.MatchString(para) {
			if seen {
				chapter++
			}
			seen = true
			// Keep any prose that follows the heading on the same paragraph.
			rest := chapterHeadingRe.ReplaceAllString(para, "")
			para = strings.TrimSpace(strings.TrimLeft(rest, ".:-— \t\n"))
			if para == "" {
				continue
			}
		}
		segs = append(segs, Segment{
			Index:   len(segs),
			Chapter: chapter,
			Text:    normalizeWhitespace(para),
		})
	}
	return segs
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
