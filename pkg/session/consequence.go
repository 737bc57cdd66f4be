package session

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jwebster45206/book-engine/pkg/knowledge"
)

// fallbackConsequence builds a deterministic templated consequence when the
// generator is unavailable. The player's action phrase always appears in the
// output, so free-form actions still read as acknowledged.
func fallbackConsequence(character, action string, t knowledge.EventType) string {
	switch t {
	case knowledge.EventDialogue:
		return fmt.Sprintf("%s decided to %s. The words carried weight, and the others' reactions would shape what came next.", character, action)
	case knowledge.EventConflict:
		return fmt.Sprintf("%s decided to %s. The confrontation tested their resolve, and its outcome would echo through their relationships.", character, action)
	case knowledge.EventJourney:
		return fmt.Sprintf("%s decided to %s. The road answered in its own way, and the path ahead looked different for it.", character, action)
	case knowledge.EventReflection:
		return fmt.Sprintf("%s decided to %s. In the quiet that followed, the choice settled into something like certainty.", character, action)
	default:
		return fmt.Sprintf("%s decided to %s. The world responded to this choice in ways both expected and surprising.", character, action)
	}
}

// inferDeltas scans consequence prose for facts worth recording: a mention of
// a known location moves the player there, and a mention of another character
// near a relationship keyword records a shift with that character. Names are
// visited in sorted order so repeated runs produce the same deltas.
func (s *Session) inferDeltas(consequence string) map[string]string {
	deltas := make(map[string]string)

	locNames := make([]string, 0, len(s.book.Locations))
	for name := range s.book.Locations {
		locNames = append(locNames, name)
	}
	sort.Strings(locNames)
	for _, name := range locNames {
		if strings.Contains(consequence, name) {
			deltas["location"] = name
			break
		}
	}

	lower := strings.ToLower(consequence)
	charNames := make([]string, 0, len(s.book.Characters))
	for name := range s.book.Characters {
		charNames = append(charNames, name)
	}
	sort.Strings(charNames)
	for _, name := range charNames {
		if name == s.PlayerCharacter || !strings.Contains(consequence, name) {
			continue
		}
		for _, shift := range relationshipShifts {
			if strings.Contains(lower, shift.keyword) {
				deltas["relationship:"+name] = shift.change
				break
			}
		}
	}

	return deltas
}

// relationshipShifts maps consequence keywords to recorded relationship
// changes, checked in order so the first hit wins.
var relationshipShifts = []struct {
	keyword string
	change  string
}{
	{"betray", "damaged"},
	{"angered", "damaged"},
	{"fought", "damaged"},
	{"attacked", "damaged"},
	{"trust", "strengthened"},
	{"friend", "strengthened"},
	{"allied", "strengthened"},
}
