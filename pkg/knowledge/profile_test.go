package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profilesFromText(t *testing.T, text string) (map[string]*Character, []Segment) {
	t.Helper()
	e := NewEngine(nil)
	segs := SegmentText(text)
	cands, _ := e.ExtractEntities(segs)

	chars := make(map[string]*Character, len(cands))
	for i, c := range cands {
		p := e.BuildProfile(c, i)
		chars[p.Name] = p
	}
	e.inferRelationships(chars, segs)
	return chars, segs
}

func TestClassifyRole(t *testing.T) {
	e := NewEngine(nil)

	tests := []struct {
		name     string
		spans    string
		rank     int
		expected Role
	}{
		{"explicit antagonist cue", "the cruel tyrant struck again", 0, RoleAntagonist},
		{"explicit protagonist cue", "her quest and her destiny", 3, RoleProtagonist},
		{"rank zero default", "nothing notable here", 0, RoleProtagonist},
		{"rank one default", "nothing notable here", 1, RoleSupporting},
		{"deep rank default", "nothing notable here", 5, RoleMinor},
		{"rank never assigns antagonist", "ordinary text", 1, RoleSupporting},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, e.classifyRole(tc.spans, tc.rank))
		})
	}
}

func TestBuildProfile_TraitsBounded(t *testing.T) {
	e := NewEngine(nil)
	c := Candidate{
		Name: "Mira",
		Evidence: []Evidence{
			{Span: "Mira was brave and clever, kind to strangers, endlessly determined and witty"},
			{Span: "Mira said so"},
		},
	}

	p := e.BuildProfile(c, 0)
	require.Len(t, p.Traits, 3)
	// First occurrence order, capped at three.
	assert.Equal(t, []string{"brave", "clever", "kind"}, p.Traits)
}

func TestBuildProfile_Importance(t *testing.T) {
	chars, _ := profilesFromText(t, "Alex said he would fight Marcus. Marcus feared Alex.")
	require.Contains(t, chars, "Alex")
	require.Contains(t, chars, "Marcus")

	alex, marcus := chars["Alex"], chars["Marcus"]
	assert.Equal(t, RoleProtagonist, alex.Role)
	assert.Greater(t, alex.Importance, marcus.Importance)
}

func TestInferRelationships_Rival(t *testing.T) {
	chars, _ := profilesFromText(t, "Alex said he would fight Marcus. Marcus feared Alex.")

	assert.Equal(t, "rival", chars["Alex"].Relationships["Marcus"])
	assert.Equal(t, "rival", chars["Marcus"].Relationships["Alex"])
}

func TestInferRelationships_MentorAsymmetric(t *testing.T) {
	text := "Elena taught the blade forms each dawn, and Tomas repeated them. " +
		"Elena said practice was everything. Elena whispered corrections while Tomas muttered complaints. " +
		"Tomas asked when he would be ready."
	chars, _ := profilesFromText(t, text)
	require.Contains(t, chars, "Elena")
	require.Contains(t, chars, "Tomas")
	require.Greater(t, chars["Elena"].Importance, chars["Tomas"].Importance)

	assert.Equal(t, "mentor", chars["Elena"].Relationships["Tomas"])
	assert.Equal(t, "student", chars["Tomas"].Relationships["Elena"])
}

func TestInferRelationships_FirstKindSticks(t *testing.T) {
	// The first segment establishes friendship; the later quarrel must not
	// overwrite it.
	text := "Brin and Cole were friends since childhood. Brin said so often, and Cole replied in kind.\n\n" +
		"Years later Brin fought Cole over the inheritance. Cole said nothing. Brin shouted until dusk."
	chars, _ := profilesFromText(t, text)
	require.Contains(t, chars, "Brin")
	require.Contains(t, chars, "Cole")

	assert.Equal(t, "friend", chars["Brin"].Relationships["Cole"])
	assert.Equal(t, "friend", chars["Cole"].Relationships["Brin"])
}
