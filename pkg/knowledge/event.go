package knowledge

import (
	"sort"
	"strings"
)

const excerptLimit = 400

// Classify assigns an event type to a span of text. Rule families are checked
// in declaration order and the first family with a keyword hit wins; text with
// no hits is plain narrative.
func (e *Engine) Classify(text string) EventType {
	lower := strings.ToLower(text)
	if strings.ContainsAny(text, `"“”`) {
		return EventDialogue
	}
	for _, rule := range e.rules.EventTypes {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Type
			}
		}
	}
	return EventNarrative
}

// BuildEvents produces one event per segment, in source order. Participants
// are the known characters the segment names, and the event's location is the
// first known location it mentions. Empty input yields a single synthesized
// narrative event so that every book has a playable starting point.
func (e *Engine) BuildEvents(segs []Segment, chars map[string]*Character, locs map[string]*Location) []StoryEvent {
	if len(segs) == 0 {
		return []StoryEvent{{
			SequenceIndex: 0,
			Chapter:       1,
			TextExcerpt:   "The story begins.",
			EventType:     EventNarrative,
			Synthesized:   true,
		}}
	}

	charNames := sortedKeys(chars)
	locNames := sortedKeys(locs)

	events := make([]StoryEvent, 0, len(segs))
	for _, seg := range segs {
		ev := StoryEvent{
			SequenceIndex: seg.Index,
			Chapter:       seg.Chapter,
			TextExcerpt:   excerpt(seg.Text),
			EventType:     e.Classify(seg.Text),
		}
		for _, name := range charNames {
			if containsName(seg.Text, name) {
				ev.Participants = append(ev.Participants, name)
			}
		}
		for _, name := range locNames {
			if containsName(seg.Text, name) {
				ev.Location = name
				locs[name].MentionedIn = append(locs[name].MentionedIn, seg.Index)
				break
			}
		}
		events = append(events, ev)
	}
	return events
}

// containsName reports whether text mentions name as a whole word, including
// possessive forms.
func containsName(text, name string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], name)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(name)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		idx = start + 1
	}
}

func boundaryBefore(text string, i int) bool {
	return i == 0 || !isWordByte(text[i-1])
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	return !isWordByte(text[i])
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

func excerpt(text string) string {
	if len(text) <= excerptLimit {
		return text
	}
	cut := text[:excerptLimit]
	if i := strings.LastIndexByte(cut, ' '); i > excerptLimit/2 {
		cut = cut[:i]
	}
	return cut + "…"
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
