package stream

import "strings"

// WordOverlapSimilarity measures how much two sentences share vocabulary,
// as |common words| / min(|words a|, |words b|).  The min denominator makes
// a short restatement of a longer sentence count as a duplicate, which is
// the common dictation pattern ("patient reports severe chest pain" after
// "the patient reports severe chest pain today").
func WordOverlapSimilarity(a, b string) float64 {
	wa := wordSet(a)
	wb := wordSet(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}

	common := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			common++
		}
	}

	smaller := len(wa)
	if len(wb) < smaller {
		smaller = len(wb)
	}
	return float64(common) / float64(smaller)
}

func wordSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,;:!?\"'()")
		if w != "" {
			out[w] = struct{}{}
		}
	}
	return out
}
