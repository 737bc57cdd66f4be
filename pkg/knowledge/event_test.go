package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	e := NewEngine(nil)

	tests := []struct {
		name     string
		text     string
		expected EventType
	}{
		{"quoted speech", `"Run," she urged.`, EventDialogue},
		{"speech verb", "Marcus told the guards to stand down.", EventDialogue},
		{"conflict", "The two armies clashed at dawn and the battle raged.", EventConflict},
		{"journey", "They rode west and arrived after three days.", EventJourney},
		{"reflection", "She remembered the promise and wondered if it still held.", EventReflection},
		{"plain narrative", "The harvest was poor that year.", EventNarrative},
		{"dialogue outranks conflict", "He said the war was over.", EventDialogue},
		{"empty text", "", EventNarrative},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, e.Classify(tc.text))
		})
	}
}

func TestBuildEvents(t *testing.T) {
	e := NewEngine(nil)
	text := "Chapter 1\n\nAlex said he would fight Marcus. Marcus feared Alex.\n\n" +
		"Chapter 2\n\nAlex walked to the Blackwood Forest alone."
	segs := SegmentText(text)

	chars := map[string]*Character{
		"Alex":   {Name: "Alex"},
		"Marcus": {Name: "Marcus"},
	}
	locs := map[string]*Location{
		"Blackwood Forest": {Name: "Blackwood Forest"},
	}

	events := e.BuildEvents(segs, chars, locs)
	require.Len(t, events, 2)

	assert.Equal(t, 0, events[0].SequenceIndex)
	assert.Equal(t, 1, events[0].Chapter)
	assert.Equal(t, EventDialogue, events[0].EventType)
	assert.Equal(t, []string{"Alex", "Marcus"}, events[0].Participants)
	assert.Empty(t, events[0].Location)

	assert.Equal(t, 1, events[1].SequenceIndex)
	assert.Equal(t, 2, events[1].Chapter)
	assert.Equal(t, EventJourney, events[1].EventType)
	assert.Equal(t, []string{"Alex"}, events[1].Participants)
	assert.Equal(t, "Blackwood Forest", events[1].Location)

	assert.Equal(t, []int{1}, locs["Blackwood Forest"].MentionedIn)
}

func TestBuildEvents_EmptyInputSynthesizes(t *testing.T) {
	e := NewEngine(nil)

	events := e.BuildEvents(nil, nil, nil)
	require.Len(t, events, 1)
	assert.True(t, events[0].Synthesized)
	assert.Equal(t, EventNarrative, events[0].EventType)
	assert.NotEmpty(t, events[0].TextExcerpt)
}

func TestContainsName(t *testing.T) {
	assert.True(t, containsName("Alex said hello", "Alex"))
	assert.True(t, containsName("it was Alex's idea", "Alex"))
	assert.True(t, containsName("they blamed Alex.", "Alex"))
	assert.False(t, containsName("Alexandra said hello", "Alex"))
	assert.False(t, containsName("nothing here", "Alex"))
}
