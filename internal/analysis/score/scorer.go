// Package score assigns sentences to template sections.  The local scorer
// is a weighted keyword matcher; the Classifier interface lets an external
// AI assist service take over assignment when one is configured, with the
// local scorer as the fallback.
package score

import (
	"regexp"
	"strings"

	"github.com/donovanp007/medscribe/internal/domain/lexicon"
	"github.com/donovanp007/medscribe/internal/domain/template"
	"github.com/donovanp007/medscribe/pkg/types/clinical"
)

// Keyword evidence weights.  Exact word-boundary matches dominate; partial
// substring matches and contextual cues only tip close calls.
const (
	exactWeight   = 3.0
	partialWeight = 2.0
	cueWeight     = 1.0

	// DefaultConfidenceFloor is the minimum score for a sentence to be
	// assigned to a section at all.
	DefaultConfidenceFloor = 0.3
)

// numericVitalPattern recognises vital-sign shaped numerics ("140/90",
// "85 bpm", "38.5") so vitals sections get a cue even when the sentence
// carries no vitals keyword.
var numericVitalPattern = regexp.MustCompile(`\b\d{2,3}\s*/\s*\d{2,3}\b|\b\d{2,3}(?:\.\d)?\s*(?:bpm|%|degrees|°)`)

// Assignment is a scored section candidate for one sentence.
type Assignment struct {
	SectionID  string
	Confidence float64
}

// Scorer computes keyword-evidence scores for sentences against template
// sections.  Scoring is pure and deterministic.
type Scorer struct {
	lex   *lexicon.Lexicon
	floor float64
}

// NewScorer builds a scorer.  A nil lexicon falls back to the built-in one;
// a non-positive floor selects DefaultConfidenceFloor.
func NewScorer(lex *lexicon.Lexicon, floor float64) *Scorer {
	if lex == nil {
		lex = lexicon.Default()
	}
	if floor <= 0 {
		floor = DefaultConfidenceFloor
	}
	return &Scorer{lex: lex, floor: floor}
}

// Floor returns the configured assignment floor.
func (s *Scorer) Floor() float64 {
	return s.floor
}

// Score rates how well a sentence fits one section, in [0,1].  Raw evidence
// is the weighted sum of exact keyword hits, partial keyword hits, and
// contextual cue hits; it is normalised against the size of the section's
// keyword set so keyword-rich sections do not dominate on volume alone.
func (s *Scorer) Score(sentence string, section template.Section) float64 {
	lower := strings.ToLower(sentence)
	if strings.TrimSpace(lower) == "" {
		return 0
	}

	var raw float64
	for _, kw := range section.Keywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" {
			continue
		}
		switch {
		case containsWord(lower, k):
			raw += exactWeight
		case strings.Contains(lower, k) || partialTokenMatch(lower, k):
			raw += partialWeight
		}
	}
	for _, cue := range s.lex.CuesFor(section.Type) {
		if strings.Contains(lower, cue) {
			raw += cueWeight
		}
	}
	if section.Type == clinical.SectionVitals && numericVitalPattern.MatchString(lower) {
		raw += cueWeight
	}

	norm := float64(len(section.Keywords)) * 0.1
	if norm > 1 {
		norm = 1
	}
	if norm <= 0 {
		norm = 1
	}
	score := raw * 0.1 / norm
	if score > 1 {
		score = 1
	}
	return score
}

// AssignBestSection scores the sentence against every section and returns
// the winner, or nil when no section reaches the floor.  Ties go to the
// earlier section in schema order.
func (s *Scorer) AssignBestSection(sentence string, def template.Definition) *Assignment {
	var best *Assignment
	for _, sec := range def.Sections {
		sc := s.Score(sentence, sec)
		if best == nil || sc > best.Confidence {
			best = &Assignment{SectionID: sec.ID, Confidence: sc}
		}
	}
	if best == nil || best.Confidence < s.floor || best.Confidence == 0 {
		return nil
	}
	return best
}

// containsWord reports whether k occurs in lower at word boundaries.
func containsWord(lower, k string) bool {
	from := 0
	for {
		i := strings.Index(lower[from:], k)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(k)
		if (start == 0 || !isWordByte(lower[start-1])) &&
			(end == len(lower) || !isWordByte(lower[end])) {
			return true
		}
		from = end
	}
}

// partialTokenMatch reports whether any token of the sentence contains the
// keyword as a substring, covering inflected forms ("diagnosed" vs
// "diagnosis" stem keywords).
func partialTokenMatch(lower, k string) bool {
	for _, tok := range strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		if strings.Contains(tok, k) || strings.Contains(k, tok) && len(tok) >= 4 {
			return true
		}
	}
	return false
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
