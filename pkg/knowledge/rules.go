package knowledge

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var rulesYAML []byte

// RelationshipRule maps a set of keywords to a relationship kind.
// Asymmetric kinds (mentor) produce a different label on each side.
type RelationshipRule struct {
	Kind      string   `yaml:"kind"`
	Symmetric bool     `yaml:"symmetric"`
	Keywords  []string `yaml:"keywords"`
}

// EventTypeRule maps a keyword family to an event type. Rules are checked
// in declaration order, so earlier families take priority.
type EventTypeRule struct {
	Type     EventType `yaml:"type"`
	Keywords []string  `yaml:"keywords"`
}

// Rules holds every keyword and pattern table the extraction engine uses.
// The defaults ship embedded in rules.yaml.
type Rules struct {
	Stoplist      []string            `yaml:"stoplist"`
	Honorifics    []string            `yaml:"honorifics"`
	SpeechVerbs   []string            `yaml:"speech_verbs"`
	ConflictVerbs []string            `yaml:"conflict_verbs"`
	MovementVerbs []string            `yaml:"movement_verbs"`
	RoleCues      map[Role][]string   `yaml:"role_cues"`
	RoleWeights   map[Role]int        `yaml:"role_weights"`
	Traits        map[string][]string `yaml:"traits"`
	MaxTraits     int                 `yaml:"max_traits"`
	Relationships []RelationshipRule  `yaml:"relationships"`
	EventTypes    []EventTypeRule     `yaml:"event_types"`
	MinEvidence   int                 `yaml:"min_evidence"`
	Window        int                 `yaml:"evidence_window"`
}

// ParseRules loads a rule table from YAML.
func ParseRules(data []byte) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	if r.MinEvidence < 1 {
		r.MinEvidence = 1
	}
	if r.Window < 1 {
		r.Window = 80
	}
	if r.MaxTraits < 1 {
		r.MaxTraits = 3
	}
	return &r, nil
}

// DefaultRules returns the embedded rule tables.
func DefaultRules() *Rules {
	r, err := ParseRules(rulesYAML)
	if err != nil {
		// The embedded tables are validated by tests; a parse failure here
		// means a broken build, not a runtime condition.
		panic(err)
	}
	return r
}
