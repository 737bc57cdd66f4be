// Package textfilter cleans narrative text returned by language model
// providers before it is shown to the player. Cleaning removes formatting
// artifacts the models sometimes emit. Softening replaces strong language
// with family-friendly alternatives for lower content ratings.
package textfilter

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	codeFenceRe  = regexp.MustCompile("(?s)```[a-z]*\\n?|```")
	mdHeadingRe  = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	speakerRe    = regexp.MustCompile(`(?i)^\s*(narrator|narration|story)\s*:\s*`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
)

// Clean strips formatting artifacts from generated narration: markdown
// code fences and headings, a leading speaker label, and runs of blank
// lines. The prose itself is left untouched.
func Clean(text string) string {
	text = codeFenceRe.ReplaceAllString(text, "")
	text = mdHeadingRe.ReplaceAllString(text, "")
	text = speakerRe.ReplaceAllString(text, "")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// replacements maps strong language to softer alternatives. Words absent
// from this table are left alone.
var replacements = map[string]string{
	"fuck":       "fudge",
	"fucking":    "flipping",
	"shit":       "shoot",
	"bullshit":   "nonsense",
	"damn":       "dang",
	"goddamn":    "gosh-dang",
	"hell":       "heck",
	"ass":        "butt",
	"asshole":    "jerk",
	"bitch":      "jerk",
	"bastard":    "scoundrel",
	"crap":       "crud",
	"piss":       "ticked",
	"dumbass":    "fool",
	"jackass":    "fool",
	"prick":      "jerk",
	"dick":       "jerk",
	"whore":      "[censored]",
	"slut":       "[censored]",
	"cunt":       "[censored]",
	"cocksucker": "[censored]",
}

// Softener replaces strong language with family-friendly alternatives
// while preserving the case pattern of the original word.
type Softener struct {
	re *regexp.Regexp
}

// NewSoftener compiles the replacement table into a single matcher.
func NewSoftener() *Softener {
	words := make([]string, 0, len(replacements))
	for w := range replacements {
		words = append(words, regexp.QuoteMeta(w))
	}
	return &Softener{
		re: regexp.MustCompile(`(?i)\b(` + strings.Join(words, "|") + `)\b`),
	}
}

// Soften returns text with every matched word replaced by its
// family-friendly alternative.
func (s *Softener) Soften(text string) string {
	return s.re.ReplaceAllStringFunc(text, func(match string) string {
		repl, ok := replacements[strings.ToLower(match)]
		if !ok {
			return match
		}
		return matchCase(match, repl)
	})
}

// ContainsStrongLanguage reports whether text matches the replacement table.
func (s *Softener) ContainsStrongLanguage(text string) bool {
	return s.re.MatchString(text)
}

// ShouldSoften reports whether a content rating calls for softening.
// Ratings of PG-13 and below are softened; everything else passes through.
func ShouldSoften(rating string) bool {
	switch strings.ToUpper(strings.TrimSpace(rating)) {
	case "G", "PG", "PG13", "PG-13":
		return true
	default:
		return false
	}
}

// matchCase applies the case pattern of the original word to the
// replacement.
func matchCase(original, replacement string) string {
	if original == strings.ToUpper(original) {
		return strings.ToUpper(replacement)
	}
	if original == strings.ToLower(original) {
		return replacement
	}
	titleCaser := cases.Title(language.English)
	if titleCaser.String(strings.ToLower(original)) == original {
		return titleCaser.String(replacement)
	}
	// Mixed case: mirror the original character by character.
	out := make([]rune, 0, len(replacement))
	origRunes := []rune(original)
	for i, r := range replacement {
		if i < len(origRunes) && unicode.IsUpper(origRunes[i]) {
			out = append(out, unicode.ToUpper(r))
		} else {
			out = append(out, unicode.ToLower(r))
		}
	}
	return string(out)
}
