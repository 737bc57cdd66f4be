package knowledge

import (
	"sort"
	"strings"
)

// BuildProfile turns one candidate into a Character profile. rank is the
// candidate's position in the evidence-sorted candidate list; it drives the
// default role assignment when no role keyword scores.
func (e *Engine) BuildProfile(c Candidate, rank int) *Character {
	spans := joinSpans(c.Evidence)

	role := e.classifyRole(spans, rank)
	return &Character{
		Name:          c.Name,
		Role:          role,
		Traits:        e.extractTraits(spans),
		Importance:    len(c.Evidence) + e.rules.RoleWeights[role],
		Relationships: make(map[string]string),
		Evidence:      c.Evidence,
	}
}

// classifyRole scores role cue keywords over the evidence windows. The
// highest-scoring category wins; with no score at all, the role falls back to
// evidence rank. Antagonist is only ever assigned by explicit keyword match,
// never by rank.
func (e *Engine) classifyRole(spans string, rank int) Role {
	lower := strings.ToLower(spans)

	best := Role("")
	bestScore := 0
	// Fixed iteration order keeps ties deterministic.
	for _, role := range []Role{RoleProtagonist, RoleAntagonist, RoleSupporting} {
		score := 0
		for _, cue := range e.rules.RoleCues[role] {
			score += strings.Count(lower, cue)
		}
		if score > bestScore {
			best = role
			bestScore = score
		}
	}
	if bestScore > 0 {
		return best
	}

	switch rank {
	case 0:
		return RoleProtagonist
	case 1:
		return RoleSupporting
	default:
		return RoleMinor
	}
}

// extractTraits collects up to MaxTraits distinct traits, ordered by first
// occurrence in the evidence text.
func (e *Engine) extractTraits(spans string) []string {
	lower := strings.ToLower(spans)

	type hit struct {
		name string
		pos  int
	}
	var hits []hit
	for _, entry := range e.traitIndex {
		first := -1
		for _, kw := range entry.keywords {
			if idx := strings.Index(lower, kw); idx >= 0 && (first < 0 || idx < first) {
				first = idx
			}
		}
		if first >= 0 {
			hits = append(hits, hit{name: entry.name, pos: first})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	if len(hits) > e.rules.MaxTraits {
		hits = hits[:e.rules.MaxTraits]
	}
	traits := make([]string, len(hits))
	for i, h := range hits {
		traits[i] = h.name
	}
	return traits
}

// inferRelationships walks the segments and, for every pair of characters
// co-occurring in one, infers a relationship kind from the first matching
// keyword rule. The first inferred kind for a pair sticks. Mentor is
// asymmetric: the more important character is recorded as the mentor.
func (e *Engine) inferRelationships(chars map[string]*Character, segs []Segment) {
	names := make([]string, 0, len(chars))
	for name := range chars {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, seg := range segs {
		var present []string
		for _, name := range names {
			if containsName(seg.Text, name) {
				present = append(present, name)
			}
		}
		if len(present) < 2 {
			continue
		}

		rule := e.matchRelationship(seg.Text)
		if rule == nil {
			continue
		}

		for i := 0; i < len(present); i++ {
			for j := i + 1; j < len(present); j++ {
				e.recordRelationship(chars[present[i]], chars[present[j]], rule)
			}
		}
	}
}

func (e *Engine) matchRelationship(text string) *RelationshipRule {
	lower := strings.ToLower(text)
	for i := range e.rules.Relationships {
		rule := &e.rules.Relationships[i]
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule
			}
		}
	}
	return nil
}

func (e *Engine) recordRelationship(a, b *Character, rule *RelationshipRule) {
	if rule.Symmetric {
		setIfAbsent(a.Relationships, b.Name, rule.Kind)
		setIfAbsent(b.Relationships, a.Name, rule.Kind)
		return
	}
	// Asymmetric: mentor/student, with the higher-importance character as
	// the mentor.
	mentor, student := a, b
	if b.Importance > a.Importance {
		mentor, student = b, a
	}
	setIfAbsent(mentor.Relationships, student.Name, rule.Kind)
	setIfAbsent(student.Relationships, mentor.Name, "student")
}

func setIfAbsent(m map[string]string, key, value string) {
	if _, ok := m[key]; !ok {
		m[key] = value
	}
}

func joinSpans(evidence []Evidence) string {
	parts := make([]string, len(evidence))
	for i, ev := range evidence {
		parts[i] = ev.Span
	}
	return strings.Join(parts, " ")
}
