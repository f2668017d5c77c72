package extract

import (
	"sort"

	"github.com/donovanp007/medscribe/pkg/types/clinical"
)

// resolveOverlaps reduces a candidate set to non-overlapping entities.
// Candidates are ordered by start offset; when a candidate overlaps the
// previously kept entity, the higher-confidence one wins, and on equal
// confidence the earlier start wins.
func resolveOverlaps(candidates []clinical.Entity) []clinical.Entity {
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].StartIndex != candidates[j].StartIndex {
			return candidates[i].StartIndex < candidates[j].StartIndex
		}
		return candidates[i].Confidence > candidates[j].Confidence
	})

	kept := candidates[:1]
	for _, c := range candidates[1:] {
		last := &kept[len(kept)-1]
		if !c.Overlaps(*last) {
			kept = append(kept, c)
			continue
		}
		if c.Confidence > last.Confidence {
			*last = c
		}
	}
	return kept
}
