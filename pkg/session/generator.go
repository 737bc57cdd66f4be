package session

import (
	"context"

	"github.com/jwebster45206/book-engine/pkg/knowledge"
)

// GenerateRequest is the context handed to a narrative generator for one turn.
type GenerateRequest struct {
	BookTitle  string                `json:"book_title"`
	Event      knowledge.StoryEvent  `json:"event"`
	Character  *knowledge.Character  `json:"character"`
	Backstory  string                `json:"backstory"`
	Action     string                `json:"action"`
	Risk       RiskLevel             `json:"risk"`
	WorldState map[string]string     `json:"world_state,omitempty"`
	Language   string                `json:"language"`
}

// Generator produces the prose consequence of a player action. Implementations
// may call external services; the session applies a bounded timeout through
// ctx and falls back to templated text on any error, so a Generator never
// needs to retry or recover internally.
type Generator interface {
	GenerateConsequence(ctx context.Context, req GenerateRequest) (string, error)
}
