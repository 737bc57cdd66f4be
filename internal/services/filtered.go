package services

import (
	"context"

	"github.com/jwebster45206/book-engine/pkg/session"
	"github.com/jwebster45206/book-engine/pkg/textfilter"
)

// FilteredGenerator wraps another generator and cleans its output before
// it reaches the player. Formatting artifacts are always stripped. Strong
// language is softened when the configured content rating calls for it.
type FilteredGenerator struct {
	inner    session.Generator
	softener *textfilter.Softener
	soften   bool
}

// NewFilteredGenerator wraps inner with output filtering for the given
// content rating.
func NewFilteredGenerator(inner session.Generator, rating string) *FilteredGenerator {
	return &FilteredGenerator{
		inner:    inner,
		softener: textfilter.NewSoftener(),
		soften:   textfilter.ShouldSoften(rating),
	}
}

func (g *FilteredGenerator) GenerateConsequence(ctx context.Context, req session.GenerateRequest) (string, error) {
	text, err := g.inner.GenerateConsequence(ctx, req)
	if err != nil {
		return "", err
	}
	text = textfilter.Clean(text)
	if g.soften {
		text = g.softener.Soften(text)
	}
	return text, nil
}
