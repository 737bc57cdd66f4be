package session

import (
	"github.com/jwebster45206/book-engine/pkg/knowledge"
)

// RiskLevel tags a choice with how dangerous it is for the player.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Choice is one selectable option for the current event. ID is stable and
// unique within the option set, so clients can submit it back verbatim.
type Choice struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Action  string    `json:"action"`
	Risk    RiskLevel `json:"risk"`
	Outcome string    `json:"outcome"`
}

// Option sets are fixed per event type, with risk assigned by what the option
// means rather than by context. Free-form player text bypasses these and is
// treated as a medium-risk custom action.
var choiceTable = map[knowledge.EventType][]Choice{
	knowledge.EventDialogue: {
		{
			ID:      "engage",
			Title:   "Engage in Conversation",
			Action:  "join the dialogue and speak your mind",
			Risk:    RiskLow,
			Outcome: "Learn more about the other characters and build relationships",
		},
		{
			ID:      "listen",
			Title:   "Listen Carefully",
			Action:  "observe and listen without speaking",
			Risk:    RiskLow,
			Outcome: "Gain information while remaining neutral",
		},
		{
			ID:      "question",
			Title:   "Question the Speaker",
			Action:  "challenge what is being said",
			Risk:    RiskMedium,
			Outcome: "Assert your position at the cost of possible friction",
		},
	},
	knowledge.EventConflict: {
		{
			ID:      "fight",
			Title:   "Face the Challenge",
			Action:  "confront the conflict head on",
			Risk:    RiskHigh,
			Outcome: "Resolve the conflict directly but risk the consequences",
		},
		{
			ID:      "negotiate",
			Title:   "Seek Peaceful Resolution",
			Action:  "look for a diplomatic way out",
			Risk:    RiskMedium,
			Outcome: "Avoid violence but perhaps compromise your position",
		},
		{
			ID:      "strategize",
			Title:   "Step Back and Strategize",
			Action:  "withdraw to reassess the situation",
			Risk:    RiskLow,
			Outcome: "Avoid immediate danger but maybe lose the moment",
		},
	},
	knowledge.EventJourney: {
		{
			ID:      "lead",
			Title:   "Take the Lead",
			Action:  "set the pace and pick the route",
			Risk:    RiskMedium,
			Outcome: "Shape where the journey goes next",
		},
		{
			ID:      "scout",
			Title:   "Scout Ahead",
			Action:  "range ahead of the others to see what waits",
			Risk:    RiskMedium,
			Outcome: "Learn the road early but face it alone",
		},
		{
			ID:      "follow",
			Title:   "Follow the Others",
			Action:  "keep to the group and let others lead",
			Risk:    RiskLow,
			Outcome: "Stay safe but limit your influence",
		},
	},
}

// defaultChoices covers reflection, plain narrative, and synthesized events.
var defaultChoices = []Choice{
	{
		ID:      "initiative",
		Title:   "Take Initiative",
		Action:  "act on your own initiative",
		Risk:    RiskMedium,
		Outcome: "Shape the direction of events",
	},
	{
		ID:      "observe",
		Title:   "Observe",
		Action:  "watch and wait for the situation to develop",
		Risk:    RiskLow,
		Outcome: "Discover more before committing to anything",
	},
	{
		ID:      "instinct",
		Title:   "Follow Your Instinct",
		Action:  "trust your instinct and act on it",
		Risk:    RiskMedium,
		Outcome: "Move forward on intuition alone",
	},
}

// ChoicesFor returns the option set for an event type. The returned slice is
// shared; callers must not modify it.
func ChoicesFor(t knowledge.EventType) []Choice {
	if set, ok := choiceTable[t]; ok {
		return set
	}
	return defaultChoices
}

func findChoice(t knowledge.EventType, id string) *Choice {
	set := ChoicesFor(t)
	for i := range set {
		if set[i].ID == id {
			return &set[i]
		}
	}
	return nil
}
