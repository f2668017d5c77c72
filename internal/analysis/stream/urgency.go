package stream

import (
	"strings"

	"github.com/donovanp007/medscribe/internal/domain/lexicon"
	"github.com/donovanp007/medscribe/pkg/types/clinical"
)

// EvaluateUrgency scans text against the lexicon's red-flag phrases and
// returns the highest urgency level whose phrases appear, with the matched
// phrases, defaulting to low.  Callers enforce monotonicity across a
// session with MaxUrgency.
func EvaluateUrgency(text string, lex *lexicon.Lexicon) (clinical.UrgencyLevel, []string) {
	if lex == nil {
		return clinical.UrgencyLow, nil
	}
	lower := strings.ToLower(text)
	for _, candidate := range []clinical.UrgencyLevel{
		clinical.UrgencyUrgent, clinical.UrgencyHigh, clinical.UrgencyMedium,
	} {
		var matched []string
		for _, phrase := range lex.RedFlags[candidate] {
			if strings.Contains(lower, phrase) {
				matched = append(matched, phrase)
			}
		}
		if len(matched) > 0 {
			return candidate, matched
		}
	}
	return clinical.UrgencyLow, nil
}
