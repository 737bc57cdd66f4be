package knowledge

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrEmptyTitle is returned when a book is extracted without a title.
var ErrEmptyTitle = errors.New("book title is required")

const profileWorkers = 4

// ExtractBook runs the full pipeline: segmentation, entity extraction,
// profiling, relationship inference, and event graph construction. Extraction
// is best-effort: thin or malformed text produces a small book, not an error.
// The only failure modes are a missing title and context cancellation.
func (e *Engine) ExtractBook(ctx context.Context, title, text string) (*Book, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	segs := SegmentText(text)
	charCands, locCands := e.ExtractEntities(segs)

	// Profiles are independent per candidate, so build them concurrently.
	profiles := make([]*Character, len(charCands))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(profileWorkers)
	for i, cand := range charCands {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			profiles[i] = e.BuildProfile(cand, i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	characters := make(map[string]*Character, len(profiles))
	for _, p := range profiles {
		characters[p.Name] = p
	}
	e.inferRelationships(characters, segs)

	// A name that extracted as both a character and a place is almost always
	// a character; drop the location reading.
	locations := make(map[string]*Location, len(locCands))
	for _, cand := range locCands {
		if _, isChar := characters[cand.Name]; isChar {
			continue
		}
		locations[cand.Name] = &Location{
			Name:        cand.Name,
			Description: firstSpan(cand.Evidence),
		}
	}

	events := e.BuildEvents(segs, characters, locations)

	return &Book{
		ID:         uuid.New(),
		Title:      title,
		Characters: characters,
		Locations:  locations,
		Events:     events,
	}, nil
}

func firstSpan(evidence []Evidence) string {
	if len(evidence) == 0 {
		return ""
	}
	return evidence[0].Span
}

var defaultEngine = NewEngine(nil)

// ExtractBook extracts a book with the embedded default rules.
func ExtractBook(ctx context.Context, title, text string) (*Book, error) {
	return defaultEngine.ExtractBook(ctx, title, text)
}

// ClassifyEventType classifies text with the embedded default rules.
func ClassifyEventType(text string) EventType {
	return defaultEngine.Classify(text)
}
