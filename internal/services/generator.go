package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jwebster45206/book-engine/pkg/session"
)

const narratorSystemPrompt = `You are the narrator of an interactive story adapted from a book. ` +
	`The player controls one of the book's characters. Describe the consequence of the player's action ` +
	`in 2-4 sentences of vivid prose, consistent with the established characters, locations, and world state. ` +
	`Never break character, never address the player directly, and never invent an ending.`

// buildPrompt renders one turn's context as the user prompt for a generator
// backend. World state entries are sorted so the same session state always
// produces the same prompt.
func buildPrompt(req session.GenerateRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Book: %s\n", req.BookTitle)
	fmt.Fprintf(&b, "Current scene (%s): %s\n", req.Event.EventType, req.Event.TextExcerpt)

	if c := req.Character; c != nil {
		fmt.Fprintf(&b, "Player character: %s (%s)", c.Name, c.Role)
		if len(c.Traits) > 0 {
			fmt.Fprintf(&b, ", traits: %s", strings.Join(c.Traits, ", "))
		}
		b.WriteString("\n")
	}
	if req.Backstory != "" {
		fmt.Fprintf(&b, "Backstory so far: %s\n", req.Backstory)
	}

	if len(req.WorldState) > 0 {
		keys := make([]string, 0, len(req.WorldState))
		for k := range req.WorldState {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("Established facts:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %s\n", k, req.WorldState[k])
		}
	}

	fmt.Fprintf(&b, "Player action (%s risk): %s\n", req.Risk, req.Action)
	if req.Language != "" && req.Language != "en" {
		fmt.Fprintf(&b, "Write the narration in language: %s\n", req.Language)
	}

	return b.String()
}
