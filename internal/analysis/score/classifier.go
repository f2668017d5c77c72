package score

import "context"

// Classifier assigns a sentence to one of the candidate sections.  The
// returned section id must be one of the candidates; confidence is in
// [0,1].  Implementations may call remote services and should honour the
// context deadline.
type Classifier interface {
	Classify(ctx context.Context, sentence string, candidateSectionIDs []string) (sectionID string, confidence float64, err error)
}
