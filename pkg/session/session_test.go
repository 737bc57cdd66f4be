package session

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/book-engine/pkg/knowledge"
)

// stubGenerator returns canned output or a canned error.
type stubGenerator struct {
	text  string
	err   error
	calls int
	last  GenerateRequest
}

func (g *stubGenerator) GenerateConsequence(_ context.Context, req GenerateRequest) (string, error) {
	g.calls++
	g.last = req
	return g.text, g.err
}

func testBook() *knowledge.Book {
	return &knowledge.Book{
		ID:    uuid.New(),
		Title: "The Rivalry",
		Characters: map[string]*knowledge.Character{
			"Alex": {
				Name:       "Alex",
				Role:       knowledge.RoleProtagonist,
				Importance: 12,
				Evidence: []knowledge.Evidence{
					{Kind: knowledge.EvidenceDialogue, Span: "Alex said he would fight Marcus", SegmentIndex: 0},
					{Kind: knowledge.EvidenceConflict, Span: "Marcus feared Alex", SegmentIndex: 1},
				},
			},
			"Marcus": {Name: "Marcus", Role: knowledge.RoleSupporting, Importance: 7},
		},
		Locations: map[string]*knowledge.Location{
			"Blackwood Forest": {Name: "Blackwood Forest"},
		},
		Events: []knowledge.StoryEvent{
			{SequenceIndex: 0, Chapter: 1, TextExcerpt: "Alex said he would fight Marcus.", EventType: knowledge.EventDialogue, Participants: []string{"Alex", "Marcus"}},
			{SequenceIndex: 1, Chapter: 1, TextExcerpt: "Marcus feared Alex.", EventType: knowledge.EventConflict, Participants: []string{"Alex", "Marcus"}},
			{SequenceIndex: 2, Chapter: 2, TextExcerpt: "Alex walked to the Blackwood Forest.", EventType: knowledge.EventJourney, Participants: []string{"Alex"}, Location: "Blackwood Forest"},
		},
	}
}

func TestNew(t *testing.T) {
	book := testBook()

	tests := []struct {
		name          string
		character     string
		startIndex    int
		lang          string
		expectedErr   error
		expectedIndex int
		expectedLang  string
	}{
		{"valid start", "Alex", 1, "en", nil, 1, "en"},
		{"unknown character", "Nobody", 0, "en", ErrUnknownCharacter, 0, ""},
		{"negative index clamps to zero", "Alex", -5, "en", nil, 0, "en"},
		{"index past graph clamps to last", "Alex", 99, "en", nil, 2, "en"},
		{"bad language falls back to english", "Alex", 0, "!!", nil, 0, "en"},
		{"language is normalized", "Marcus", 0, "DE", nil, 0, "de"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := New(book, tc.character, tc.startIndex, tc.lang)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedIndex, s.CurrentEventIndex)
			assert.Equal(t, tc.expectedLang, s.Language)
			assert.Equal(t, StatusConfigured, s.Status)
			assert.Equal(t, book.ID, s.BookID)
		})
	}
}

func TestState_Idempotent(t *testing.T) {
	s, err := New(testBook(), "Alex", 1, "en")
	require.NoError(t, err)

	first := s.State()
	second := s.State()
	assert.Equal(t, first, second)

	assert.Equal(t, knowledge.EventConflict, first.CurrentEvent.EventType)
	assert.Equal(t, ChoicesFor(knowledge.EventConflict), first.Choices)
	assert.NotEmpty(t, first.Backstory)
	assert.Equal(t, knowledge.RoleProtagonist, first.Stats.Role)
}

func TestState_BackstoryDependsOnStart(t *testing.T) {
	book := testBook()

	early, err := New(book, "Alex", 0, "en")
	require.NoError(t, err)
	late, err := New(book, "Alex", 2, "en")
	require.NoError(t, err)

	assert.NotEqual(t, early.State().Backstory, late.State().Backstory)
}

func TestApplyAction_GeneratorSuccess(t *testing.T) {
	s, err := New(testBook(), "Alex", 0, "en")
	require.NoError(t, err)

	gen := &stubGenerator{text: "Alex spoke, and Marcus listened in silence."}
	result, err := s.ApplyAction(context.Background(), gen, "engage")
	require.NoError(t, err)

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, "Alex spoke, and Marcus listened in silence.", result.Consequence)
	assert.False(t, result.Fallback)
	assert.Equal(t, 1, s.CurrentEventIndex)
	assert.Equal(t, StatusActive, s.Status)
	require.Len(t, s.History, 1)

	// The chosen option's action text, not the raw ID, is recorded.
	assert.Equal(t, "join the dialogue and speak your mind", s.History[0].Action)
	assert.Equal(t, RiskLow, gen.last.Risk)
	assert.Equal(t, "The Rivalry", gen.last.BookTitle)
}

func TestApplyAction_FallbackOnGeneratorError(t *testing.T) {
	s, err := New(testBook(), "Alex", 0, "en")
	require.NoError(t, err)

	gen := &stubGenerator{err: errors.New("upstream unavailable")}
	result, err := s.ApplyAction(context.Background(), gen, "investigate the letter")
	require.NoError(t, err)

	assert.True(t, result.Fallback)
	assert.Contains(t, result.Consequence, "investigate the letter")
	assert.Equal(t, 1, s.CurrentEventIndex)
	require.Len(t, s.History, 1)
	assert.Equal(t, "investigate the letter", s.History[0].Action)
}

func TestApplyAction_FallbackIsDeterministic(t *testing.T) {
	book := testBook()

	run := func() string {
		s, err := New(book, "Alex", 0, "en")
		require.NoError(t, err)
		result, err := s.ApplyAction(context.Background(), nil, "investigate the letter")
		require.NoError(t, err)
		return result.Consequence
	}

	assert.Equal(t, run(), run())
}

func TestApplyAction_EmptyActionMutatesNothing(t *testing.T) {
	s, err := New(testBook(), "Alex", 0, "en")
	require.NoError(t, err)

	_, err = s.ApplyAction(context.Background(), nil, "   ")
	assert.ErrorIs(t, err, ErrInvalidAction)
	assert.Equal(t, 0, s.CurrentEventIndex)
	assert.Empty(t, s.History)
	assert.Equal(t, StatusConfigured, s.Status)
}

func TestApplyAction_ExtendsBeyondBook(t *testing.T) {
	s, err := New(testBook(), "Alex", 2, "en")
	require.NoError(t, err)

	gen := &stubGenerator{text: "Alex pressed on past the last page."}
	result, err := s.ApplyAction(context.Background(), gen, "lead")
	require.NoError(t, err)

	assert.Equal(t, 3, s.CurrentEventIndex)
	require.Len(t, s.Extended, 1)
	assert.True(t, s.Extended[0].Synthesized)
	assert.Equal(t, 3, s.Extended[0].SequenceIndex)
	assert.Equal(t, []string{"Alex"}, s.Extended[0].Participants)

	// The synthesized event is the new current event.
	assert.Equal(t, result.State.CurrentEvent, s.Extended[0])

	// Play keeps going: the next turn extends the graph again.
	_, err = s.ApplyAction(context.Background(), gen, "initiative")
	require.NoError(t, err)
	assert.Equal(t, 4, s.CurrentEventIndex)
	assert.Len(t, s.Extended, 2)
}

func TestApplyAction_WorldStateDeltas(t *testing.T) {
	s, err := New(testBook(), "Alex", 0, "en")
	require.NoError(t, err)

	gen := &stubGenerator{text: "Alex walked into the Blackwood Forest, and Marcus trusted him at last."}
	_, err = s.ApplyAction(context.Background(), gen, "engage")
	require.NoError(t, err)

	assert.Equal(t, "Blackwood Forest", s.WorldState["location"])
	assert.Equal(t, "strengthened", s.WorldState["relationship:Marcus"])

	// A later consequence overwrites the same keys.
	gen.text = "Marcus attacked without warning."
	_, err = s.ApplyAction(context.Background(), gen, "listen")
	require.NoError(t, err)
	assert.Equal(t, "damaged", s.WorldState["relationship:Marcus"])
	assert.Equal(t, "Blackwood Forest", s.WorldState["location"])
}

func TestEnd(t *testing.T) {
	s, err := New(testBook(), "Alex", 0, "en")
	require.NoError(t, err)

	s.End()
	assert.Equal(t, StatusEnded, s.Status)

	_, err = s.ApplyAction(context.Background(), nil, "engage")
	assert.ErrorIs(t, err, ErrSessionEnded)
}

func TestBind(t *testing.T) {
	book := testBook()
	s, err := New(book, "Alex", 0, "en")
	require.NoError(t, err)

	other := testBook()
	assert.ErrorIs(t, s.Bind(other), ErrBookMismatch)
	assert.NoError(t, s.Bind(book))
}

func TestNewEmptyEventGraph(t *testing.T) {
	book := &knowledge.Book{
		ID:    uuid.New(),
		Title: "Blank Pages",
		Characters: map[string]*knowledge.Character{
			"Alex": {Name: "Alex", Role: knowledge.RoleProtagonist},
		},
	}

	s, err := New(book, "Alex", 5, "en")
	require.NoError(t, err)
	assert.Equal(t, 0, s.CurrentEventIndex)

	state := s.State()
	assert.Equal(t, knowledge.EventNarrative, state.CurrentEvent.EventType)
	assert.True(t, state.CurrentEvent.Synthesized)

	result, err := s.ApplyAction(context.Background(), &stubGenerator{text: "Alex set out alone."}, "observe")
	require.NoError(t, err)
	assert.Equal(t, 1, s.CurrentEventIndex)
	assert.NotEmpty(t, result.Consequence)
	assert.True(t, result.State.CurrentEvent.Synthesized)
}
