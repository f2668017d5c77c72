package template

import (
	"fmt"
	"sort"
	"strings"

	"github.com/donovanp007/medscribe/pkg/types/clinical"
)

// suggestion scoring weights.  Trigger keywords carry more weight than
// section coverage because they are explicit template-level signals.
const (
	triggerWeight       = 0.4
	coverageWeight      = 0.3
	defaultSuggestFloor = 0.2
)

// Suggester ranks templates against accumulated dictation text.
type Suggester struct {
	registry *Registry
	floor    float64
}

// NewSuggester builds a suggester over the given registry.  A floor of zero
// selects the default minimum confidence.
func NewSuggester(registry *Registry, floor float64) *Suggester {
	if floor <= 0 {
		floor = defaultSuggestFloor
	}
	return &Suggester{registry: registry, floor: floor}
}

// Suggest scores every registered template against the text and returns the
// best match, or nil when no template clears the confidence floor.  Scoring
// is additive: matching any trigger keyword contributes a fixed bonus, and
// section keyword coverage contributes proportionally to the fraction of
// sections with at least one keyword hit.
func (s *Suggester) Suggest(text string) *clinical.TemplateSuggestion {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return nil
	}

	var best *clinical.TemplateSuggestion
	for _, d := range s.registry.List() {
		score, reasons := scoreTemplate(d, lower)
		if score < s.floor {
			continue
		}
		if best == nil || score > best.Confidence {
			best = &clinical.TemplateSuggestion{
				TemplateID: d.ID,
				Name:       d.Name,
				Confidence: score,
				Reasoning:  strings.Join(reasons, "; "),
			}
		}
	}
	return best
}

// SuggestAll returns every template clearing the floor, best first.
func (s *Suggester) SuggestAll(text string) []clinical.TemplateSuggestion {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return nil
	}

	var out []clinical.TemplateSuggestion
	for _, d := range s.registry.List() {
		score, reasons := scoreTemplate(d, lower)
		if score < s.floor {
			continue
		}
		out = append(out, clinical.TemplateSuggestion{
			TemplateID: d.ID,
			Name:       d.Name,
			Confidence: score,
			Reasoning:  strings.Join(reasons, "; "),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out
}

func scoreTemplate(d Definition, lowerText string) (float64, []string) {
	var (
		score   float64
		reasons []string
	)

	for _, kw := range d.TriggerKeywords {
		if kw != "" && strings.Contains(lowerText, strings.ToLower(kw)) {
			score += triggerWeight
			reasons = append(reasons, fmt.Sprintf("trigger keyword %q present", kw))
			break
		}
	}

	covered := 0
	for _, sec := range d.Sections {
		for _, kw := range sec.Keywords {
			if kw != "" && strings.Contains(lowerText, strings.ToLower(kw)) {
				covered++
				break
			}
		}
	}
	if covered > 0 && len(d.Sections) > 0 {
		frac := float64(covered) / float64(len(d.Sections))
		score += coverageWeight * frac
		reasons = append(reasons, fmt.Sprintf("%d of %d sections have keyword matches", covered, len(d.Sections)))
	}

	if score > 1 {
		score = 1
	}
	return score, reasons
}
