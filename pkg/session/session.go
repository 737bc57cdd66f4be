// Package session drives a branching narrative session over an extracted
// book: it tracks the player's position in the event graph, generates choices
// for the current event, and applies the consequences of actions to an
// evolving world state. One session belongs to one player; independent
// sessions share nothing.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/jwebster45206/book-engine/pkg/knowledge"
)

var (
	// ErrUnknownCharacter is returned when a session is configured with a
	// character name the book does not contain.
	ErrUnknownCharacter = errors.New("unknown character")
	// ErrInvalidAction is returned for empty action text. No state is
	// mutated; the caller should resubmit.
	ErrInvalidAction = errors.New("action text is required")
	// ErrSessionEnded is returned for actions on an ended session.
	ErrSessionEnded = errors.New("session has ended")
	// ErrBookMismatch is returned when a session is bound to the wrong book.
	ErrBookMismatch = errors.New("book does not match session")
)

// Status is the session lifecycle state.
type Status string

const (
	StatusConfigured Status = "configured"
	StatusActive     Status = "active"
	StatusEnded      Status = "ended"
)

const defaultGeneratorTimeout = 30 * time.Second

// Turn is one resolved action in the session history.
type Turn struct {
	Action      string              `json:"action"`
	Consequence string              `json:"consequence"`
	EventType   knowledge.EventType `json:"event_type"`
}

// Session is per-player narrative state layered over a read-only Book. All
// mutation goes through ApplyAction and End; the embedded lock keeps turns
// for one session strictly sequential.
type Session struct {
	ID                uuid.UUID              `json:"id"`
	BookID            uuid.UUID              `json:"book_id"`
	PlayerCharacter   string                 `json:"player_character"`
	CurrentEventIndex int                    `json:"current_event_index"`
	WorldState        map[string]string      `json:"world_state"`
	History           []Turn                 `json:"history"`
	Extended          []knowledge.StoryEvent `json:"extended_events,omitempty"`
	Language          string                 `json:"language"`
	Status            Status                 `json:"status"`

	// GeneratorTimeout bounds the external generator call per turn.
	// Zero means the default.
	GeneratorTimeout time.Duration `json:"-"`

	mu   sync.Mutex
	book *knowledge.Book
}

// State is the player-visible view of a session at one point in time.
type State struct {
	SessionID    uuid.UUID            `json:"session_id"`
	Status       Status               `json:"status"`
	CurrentEvent knowledge.StoryEvent `json:"current_event"`
	Choices      []Choice             `json:"choices"`
	Backstory    string               `json:"backstory"`
	WorldState   map[string]string    `json:"world_state,omitempty"`
	Stats        Stats                `json:"stats"`
}

// Stats summarizes session progress for display.
type Stats struct {
	Role        knowledge.Role `json:"role"`
	Importance  int            `json:"importance"`
	TurnsTaken  int            `json:"turns_taken"`
	Momentum    string         `json:"momentum"`
	ArcPosition string         `json:"arc_position"`
	Location    string         `json:"location,omitempty"`
}

// TurnResult is the outcome of one applied action.
type TurnResult struct {
	Consequence string              `json:"consequence"`
	EventType   knowledge.EventType `json:"event_type"`
	Fallback    bool                `json:"fallback,omitempty"`
	State       State               `json:"state"`
}

// New configures a session for one character of a book. A start index outside
// the event graph is clamped to the nearest valid event. An unparseable
// language code falls back to English.
func New(book *knowledge.Book, characterName string, startIndex int, lang string) (*Session, error) {
	if book == nil {
		return nil, ErrBookMismatch
	}
	if book.Character(characterName) == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharacter, characterName)
	}

	if startIndex >= len(book.Events) {
		startIndex = len(book.Events) - 1
	}
	if startIndex < 0 {
		startIndex = 0
	}

	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}

	// Extraction always yields at least one event, but a hand-built book
	// may carry none. Seed a synthetic opening event so the index always
	// resolves.
	var extended []knowledge.StoryEvent
	if len(book.Events) == 0 {
		extended = append(extended, knowledge.StoryEvent{
			TextExcerpt: "The story begins.",
			EventType:   knowledge.EventNarrative,
			Synthesized: true,
		})
	}

	return &Session{
		ID:                uuid.New(),
		BookID:            book.ID,
		PlayerCharacter:   characterName,
		CurrentEventIndex: startIndex,
		WorldState:        make(map[string]string),
		Extended:          extended,
		Language:          tag.String(),
		Status:            StatusConfigured,
		book:              book,
	}, nil
}

// Bind attaches the book to a session that was rehydrated from storage.
func (s *Session) Bind(book *knowledge.Book) error {
	if book == nil || book.ID != s.BookID {
		return ErrBookMismatch
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.book = book
	return nil
}

// State returns the current view of the session. It never mutates state, so
// repeated calls without an intervening ApplyAction return identical results.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// ApplyAction resolves one turn. The action is either a choice ID from the
// current option set or free-form text, which is treated as a medium-risk
// custom action. The generator call is bounded by GeneratorTimeout; on error,
// timeout, or empty output the turn completes with templated fallback text.
// Exactly one event index is consumed per call.
func (s *Session) ApplyAction(ctx context.Context, gen Generator, action string) (*TurnResult, error) {
	action = strings.TrimSpace(action)
	if action == "" {
		return nil, ErrInvalidAction
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status == StatusEnded {
		return nil, ErrSessionEnded
	}

	current := s.eventAt(s.CurrentEventIndex)

	actionText, risk := action, RiskMedium
	if c := findChoice(current.EventType, action); c != nil {
		actionText, risk = c.Action, c.Risk
	}

	consequence, fellBack := s.resolveConsequence(ctx, gen, GenerateRequest{
		BookTitle:  s.book.Title,
		Event:      current,
		Character:  s.book.Character(s.PlayerCharacter),
		Backstory:  s.book.Backstory(s.PlayerCharacter, s.CurrentEventIndex),
		Action:     actionText,
		Risk:       risk,
		WorldState: s.WorldState,
		Language:   s.Language,
	}, current.EventType)

	eventType := knowledge.ClassifyEventType(consequence)

	s.History = append(s.History, Turn{
		Action:      actionText,
		Consequence: consequence,
		EventType:   eventType,
	})

	s.CurrentEventIndex++
	if s.CurrentEventIndex >= s.totalEvents() {
		s.Extended = append(s.Extended, knowledge.StoryEvent{
			SequenceIndex: s.totalEvents(),
			Chapter:       current.Chapter,
			TextExcerpt:   consequence,
			EventType:     eventType,
			Participants:  []string{s.PlayerCharacter},
			Synthesized:   true,
		})
	}

	// Later writes win for repeated keys.
	for k, v := range s.inferDeltas(consequence) {
		s.WorldState[k] = v
	}

	s.Status = StatusActive

	return &TurnResult{
		Consequence: consequence,
		EventType:   eventType,
		Fallback:    fellBack,
		State:       s.stateLocked(),
	}, nil
}

// End moves the session to its terminal state. Ending is explicit and final;
// there is no automatic win or loss.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = StatusEnded
}

func (s *Session) resolveConsequence(ctx context.Context, gen Generator, req GenerateRequest, t knowledge.EventType) (string, bool) {
	if gen != nil {
		timeout := s.GeneratorTimeout
		if timeout <= 0 {
			timeout = defaultGeneratorTimeout
		}
		gctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		// Single attempt; fallback keeps turn latency predictable.
		text, err := gen.GenerateConsequence(gctx, req)
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text), false
		}
	}
	return fallbackConsequence(s.PlayerCharacter, req.Action, t), true
}

func (s *Session) stateLocked() State {
	ev := s.eventAt(s.CurrentEventIndex)

	worldState := make(map[string]string, len(s.WorldState))
	for k, v := range s.WorldState {
		worldState[k] = v
	}

	return State{
		SessionID:    s.ID,
		Status:       s.Status,
		CurrentEvent: ev,
		Choices:      ChoicesFor(ev.EventType),
		Backstory:    s.book.Backstory(s.PlayerCharacter, s.CurrentEventIndex),
		WorldState:   worldState,
		Stats:        s.statsLocked(ev),
	}
}

func (s *Session) statsLocked(current knowledge.StoryEvent) Stats {
	stats := Stats{
		TurnsTaken:  len(s.History),
		Momentum:    momentum(len(s.History)),
		ArcPosition: arcPosition(s.CurrentEventIndex, len(s.book.Events)),
		Location:    current.Location,
	}
	if c := s.book.Character(s.PlayerCharacter); c != nil {
		stats.Role = c.Role
		stats.Importance = c.Importance
	}
	if loc, ok := s.WorldState["location"]; ok {
		stats.Location = loc
	}
	return stats
}

// eventAt resolves an index against the book events followed by the
// session's own extended events. Extraction guarantees at least one event,
// but a hand-built book may carry none; that case yields a synthetic
// opening event instead of an out-of-range read.
func (s *Session) eventAt(i int) knowledge.StoryEvent {
	if s.totalEvents() == 0 {
		return knowledge.StoryEvent{
			TextExcerpt: "The story begins.",
			EventType:   knowledge.EventNarrative,
			Synthesized: true,
		}
	}
	if i < len(s.book.Events) {
		return s.book.Events[i]
	}
	return s.Extended[i-len(s.book.Events)]
}

func (s *Session) totalEvents() int {
	return len(s.book.Events) + len(s.Extended)
}

func momentum(turns int) string {
	switch {
	case turns < 3:
		return "building"
	case turns < 7:
		return "accelerating"
	default:
		return "climactic"
	}
}

func arcPosition(index, originalEvents int) string {
	if originalEvents < 1 {
		originalEvents = 1
	}
	progress := float64(index) / float64(originalEvents)
	switch {
	case progress < 0.3:
		return "beginning"
	case progress < 0.7:
		return "middle"
	default:
		return "climax"
	}
}
