package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/book-engine/pkg/knowledge"
	"github.com/jwebster45206/book-engine/pkg/session"
)

// TemplateGenerator is the no-API-key narrative backend. It produces
// deterministic templated prose from the turn context, so the engine is fully
// playable without any external service.
type TemplateGenerator struct {
	logger *slog.Logger
}

// Ensure TemplateGenerator implements the Generator interface
var _ session.Generator = (*TemplateGenerator)(nil)

func NewTemplateGenerator(logger *slog.Logger) *TemplateGenerator {
	return &TemplateGenerator{logger: logger}
}

// GenerateConsequence renders a consequence from fixed per-event-type
// templates. It never fails.
func (t *TemplateGenerator) GenerateConsequence(_ context.Context, req session.GenerateRequest) (string, error) {
	name := "The player"
	if req.Character != nil {
		name = req.Character.Name
	}

	var text string
	switch req.Event.EventType {
	case knowledge.EventDialogue:
		text = fmt.Sprintf("%s chose to %s. The conversation shifted around this choice, and the others weighed their next words carefully. What was said here would not be forgotten.", name, req.Action)
	case knowledge.EventConflict:
		text = fmt.Sprintf("%s chose to %s. The confrontation turned on that decision, and when the dust settled, the balance between the rivals had changed. Word of it would travel.", name, req.Action)
	case knowledge.EventJourney:
		text = fmt.Sprintf("%s chose to %s. The road unwound ahead, and by the time they stopped to rest, the land behind them looked like another life. The destination felt closer and stranger at once.", name, req.Action)
	case knowledge.EventReflection:
		text = fmt.Sprintf("%s chose to %s. In the stillness afterward, old memories arranged themselves into something like an answer, and a quiet resolve took hold.", name, req.Action)
	default:
		text = fmt.Sprintf("%s chose to %s. The world answered in small ways at first, then larger ones, as the consequences of the choice began to spread.", name, req.Action)
	}

	if loc := req.Event.Location; loc != "" {
		text += fmt.Sprintf(" All of this unfolded at %s.", loc)
	}

	return text, nil
}
