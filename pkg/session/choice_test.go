package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/book-engine/pkg/knowledge"
)

func TestChoicesFor(t *testing.T) {
	tests := []struct {
		eventType   knowledge.EventType
		expectedIDs []string
	}{
		{knowledge.EventDialogue, []string{"engage", "listen", "question"}},
		{knowledge.EventConflict, []string{"fight", "negotiate", "strategize"}},
		{knowledge.EventJourney, []string{"lead", "scout", "follow"}},
		{knowledge.EventReflection, []string{"initiative", "observe", "instinct"}},
		{knowledge.EventNarrative, []string{"initiative", "observe", "instinct"}},
	}

	for _, tc := range tests {
		t.Run(string(tc.eventType), func(t *testing.T) {
			choices := ChoicesFor(tc.eventType)
			require.Len(t, choices, len(tc.expectedIDs))
			for i, c := range choices {
				assert.Equal(t, tc.expectedIDs[i], c.ID)
				assert.NotEmpty(t, c.Title)
				assert.NotEmpty(t, c.Action)
				assert.NotEmpty(t, c.Outcome)
			}
		})
	}
}

func TestRiskMapping(t *testing.T) {
	tests := []struct {
		eventType knowledge.EventType
		id        string
		risk      RiskLevel
	}{
		{knowledge.EventConflict, "fight", RiskHigh},
		{knowledge.EventConflict, "strategize", RiskLow},
		{knowledge.EventDialogue, "listen", RiskLow},
		{knowledge.EventDialogue, "question", RiskMedium},
		{knowledge.EventJourney, "follow", RiskLow},
	}

	for _, tc := range tests {
		t.Run(tc.id, func(t *testing.T) {
			c := findChoice(tc.eventType, tc.id)
			require.NotNil(t, c)
			assert.Equal(t, tc.risk, c.Risk)
		})
	}
}

func TestFindChoice_UnknownID(t *testing.T) {
	assert.Nil(t, findChoice(knowledge.EventDialogue, "fight"))
	assert.Nil(t, findChoice(knowledge.EventDialogue, "climb the wall"))
}
