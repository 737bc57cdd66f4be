package knowledge

import (
	"regexp"
	"sort"
	"strings"
)

// Candidate is a possible character or location name with its accumulated
// evidence. FirstPos is the position of the earliest match in the full text,
// used as a deterministic tie-break when evidence counts are equal.
type Candidate struct {
	Name     string
	Evidence []Evidence
	FirstPos int
}

// CueCount returns how many times any keyword in the given list occurs in the
// candidate's evidence spans. Used to inspect what kind of signal supports a
// candidate (e.g. dialogue vs conflict cues).
func (c *Candidate) CueCount(keywords []string) int {
	n := 0
	for _, ev := range c.Evidence {
		lower := strings.ToLower(ev.Span)
		for _, kw := range keywords {
			n += strings.Count(lower, strings.ToLower(kw))
		}
	}
	return n
}

// Engine runs extraction with a fixed rule table. The zero value is not
// usable; construct with NewEngine.
type Engine struct {
	rules *Rules

	dialogueRe       *regexp.Regexp
	possessiveRe     *regexp.Regexp
	addressRe        *regexp.Regexp
	honorificRe      *regexp.Regexp
	conflictBeforeRe *regexp.Regexp
	conflictAfterRe  *regexp.Regexp
	movementLocRe    *regexp.Regexp
	prepLocRe        *regexp.Regexp
	traitIndex       []traitEntry
	stop             map[string]bool
}

type traitEntry struct {
	name     string
	keywords []string
}

const namePat = `[A-Z][a-zA-Z]+`

// NewEngine compiles the pattern families for the given rules.
// Passing nil uses the embedded defaults.
func NewEngine(rules *Rules) *Engine {
	if rules == nil {
		rules = DefaultRules()
	}

	speech := alternation(rules.SpeechVerbs)
	conflict := alternation(rules.ConflictVerbs)
	movement := alternation(rules.MovementVerbs)

	honorifics := make([]string, len(rules.Honorifics))
	for i, h := range rules.Honorifics {
		honorifics[i] = regexp.QuoteMeta(h)
	}

	e := &Engine{
		rules:            rules,
		dialogueRe:       regexp.MustCompile(`\b(` + namePat + `)\s+(?:` + speech + `)\b`),
		possessiveRe:     regexp.MustCompile(`\b(` + namePat + `)['\x{2019}]s\b`),
		addressRe:        regexp.MustCompile(`[,;]\s*(` + namePat + `)\s*[,.!?]`),
		honorificRe:      regexp.MustCompile(`(?:` + strings.Join(honorifics, "|") + `)\s+(` + namePat + `)\b`),
		conflictBeforeRe: regexp.MustCompile(`\b(` + namePat + `)\s+(?:` + conflict + `)\b`),
		conflictAfterRe:  regexp.MustCompile(`\b(?:` + conflict + `)\s+(` + namePat + `)\b`),
		movementLocRe:    regexp.MustCompile(`\b(?:` + movement + `)\s+(?:back\s+)?(?:to|into|toward|towards|at)\s+(?:the\s+)?(` + namePat + `(?:\s+` + namePat + `)?)`),
		prepLocRe:        regexp.MustCompile(`\b(?:at|in|to)\s+(?:the\s+)?(` + namePat + `(?:\s+` + namePat + `)?)\b`),
		stop:             make(map[string]bool, len(rules.Stoplist)),
	}
	for _, w := range rules.Stoplist {
		e.stop[w] = true
	}
	for name, kws := range rules.Traits {
		e.traitIndex = append(e.traitIndex, traitEntry{name: name, keywords: kws})
	}
	sort.Slice(e.traitIndex, func(i, j int) bool { return e.traitIndex[i].name < e.traitIndex[j].name })
	return e
}

func alternation(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}

// ExtractEntities scans the segments with every pattern family and returns
// character and location candidates, each sorted by descending evidence count
// with ties broken by first appearance. It is a pure function of its input:
// empty or malformed text yields empty candidate sets, never an error.
func (e *Engine) ExtractEntities(segs []Segment) (characters, locations []Candidate) {
	charAcc := newAccumulator()
	locAcc := newAccumulator()
	offset := 0

	for _, seg := range segs {
		e.scanNames(seg, offset, e.dialogueRe, EvidenceDialogue, charAcc)
		e.scanNames(seg, offset, e.possessiveRe, EvidencePossessive, charAcc)
		e.scanNames(seg, offset, e.addressRe, EvidenceAddress, charAcc)
		e.scanNames(seg, offset, e.honorificRe, EvidenceHonorific, charAcc)
		e.scanNames(seg, offset, e.conflictBeforeRe, EvidenceConflict, charAcc)
		e.scanNames(seg, offset, e.conflictAfterRe, EvidenceConflict, charAcc)

		e.scanNames(seg, offset, e.movementLocRe, "", locAcc)
		e.scanNames(seg, offset, e.prepLocRe, "", locAcc)

		offset += len(seg.Text) + 1
	}

	return e.filterAndSort(charAcc), e.filterAndSort(locAcc)
}

type accumulator struct {
	byName map[string]*Candidate
}

func newAccumulator() *accumulator {
	return &accumulator{byName: make(map[string]*Candidate)}
}

func (e *Engine) scanNames(seg Segment, offset int, re *regexp.Regexp, kind EvidenceKind, acc *accumulator) {
	for _, m := range re.FindAllStringSubmatchIndex(seg.Text, -1) {
		start, end := m[2], m[3]
		name := seg.Text[start:end]
		if !e.validName(name) {
			continue
		}

		c, ok := acc.byName[name]
		if !ok {
			c = &Candidate{Name: name, FirstPos: offset + start}
			acc.byName[name] = c
		}
		c.Evidence = append(c.Evidence, Evidence{
			Kind:         kind,
			Span:         window(seg.Text, start, end, e.rules.Window),
			SegmentIndex: seg.Index,
		})
	}
}

// validName applies the rejection filter: stoplist words, single characters,
// and tokens without letters are never candidates.
func (e *Engine) validName(name string) bool {
	if len(name) < 2 || len(name) > 40 {
		return false
	}
	for _, word := range strings.Fields(name) {
		if e.stop[word] {
			return false
		}
	}
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

func (e *Engine) filterAndSort(acc *accumulator) []Candidate {
	out := make([]Candidate, 0, len(acc.byName))
	for _, c := range acc.byName {
		if len(c.Evidence) < e.rules.MinEvidence {
			continue
		}
		out = append(out, *c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].Evidence) != len(out[j].Evidence) {
			return len(out[i].Evidence) > len(out[j].Evidence)
		}
		return out[i].FirstPos < out[j].FirstPos
	})
	return out
}

// window returns a context span around [start, end), clamped to the segment.
func window(text string, start, end, radius int) string {
	lo := start - radius
	if lo < 0 {
		lo = 0
	}
	hi := end + radius
	if hi > len(text) {
		hi = len(text)
	}
	return strings.TrimSpace(text[lo:hi])
}
