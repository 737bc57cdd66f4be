// Package knowledge turns raw narrative text into a structured world:
// characters, locations, and an ordered graph of story events. Extraction is
// heuristic pattern matching driven by the tables in rules.yaml; it is
// best-effort by design and never fails on well-formed input.
package knowledge

import (
	"github.com/google/uuid"
)

// Role classifies a character's part in the story.
type Role string

const (
	RoleProtagonist Role = "protagonist"
	RoleAntagonist  Role = "antagonist"
	RoleSupporting  Role = "supporting"
	RoleMinor       Role = "minor"
)

// EventType classifies a story event. The zero-value default for
// unclassifiable text is EventNarrative.
type EventType string

const (
	EventDialogue   EventType = "dialogue"
	EventConflict   EventType = "conflict"
	EventJourney    EventType = "journey"
	EventReflection EventType = "reflection"
	EventNarrative  EventType = "narrative"
)

// EvidenceKind names the pattern family that produced an evidence unit.
type EvidenceKind string

const (
	EvidenceDialogue   EvidenceKind = "dialogue"
	EvidencePossessive EvidenceKind = "possessive"
	EvidenceAddress    EvidenceKind = "address"
	EvidenceHonorific  EvidenceKind = "honorific"
	EvidenceConflict   EvidenceKind = "conflict"
)

// Evidence is a text span supporting a character or location inference.
type Evidence struct {
	Kind         EvidenceKind `json:"kind"`
	Span         string       `json:"span"`
	SegmentIndex int          `json:"segment_index"`
}

// Character is an extracted character profile. Profiles are immutable once
// a Book is built; sessions reference them by name.
type Character struct {
	Name          string            `json:"name"`
	Role          Role              `json:"role"`
	Traits        []string          `json:"traits,omitempty"`
	Importance    int               `json:"importance"`
	Relationships map[string]string `json:"relationships,omitempty"`
	Evidence      []Evidence        `json:"evidence,omitempty"`
}

// Location is an extracted place, with the events that mention it.
type Location struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MentionedIn []int  `json:"mentioned_in,omitempty"`
}

// StoryEvent is one unit of the event graph. Events are ordered by
// SequenceIndex, which follows source-text order rather than causal order.
type StoryEvent struct {
	SequenceIndex int       `json:"sequence_index"`
	Chapter       int       `json:"chapter"`
	TextExcerpt   string    `json:"text_excerpt"`
	EventType     EventType `json:"event_type"`
	Participants  []string  `json:"participants,omitempty"`
	Location      string    `json:"location,omitempty"`
	Synthesized   bool      `json:"synthesized,omitempty"`
}

// Book is the extracted knowledge for one source text. It is read-only after
// extraction: sessions layer their own state on top and never mutate it.
// ExtractBook always yields at least one event, synthesizing an opening
// event when the text has no usable segments.
type Book struct {
	ID         uuid.UUID             `json:"id"`
	Title      string                `json:"title"`
	Characters map[string]*Character `json:"characters"`
	Locations  map[string]*Location  `json:"locations"`
	Events     []StoryEvent          `json:"events"`
}

// Character returns the named profile, or nil if the book has no such
// character.
func (b *Book) Character(name string) *Character {
	if b == nil {
		return nil
	}
	return b.Characters[name]
}

const backstoryLimit = 600

// Backstory concatenates the character's evidence spans up to and including
// the given event index, bounded in length. This is what makes backstory both
// character-specific and starting-point dependent.
func (b *Book) Backstory(name string, uptoIndex int) string {
	c := b.Character(name)
	if c == nil {
		return ""
	}

	var out []byte
	for _, ev := range c.Evidence {
		if ev.SegmentIndex > uptoIndex {
			continue
		}
		if len(out) > 0 {
			out = append(out, ' ')
		}
		out = append(out, ev.Span...)
		if len(out) >= backstoryLimit {
			out = out[:backstoryLimit]
			break
		}
	}

	if len(out) == 0 {
		return name + " begins their journey in " + b.Title + "."
	}
	return string(out)
}
