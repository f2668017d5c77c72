// Package extract pulls typed clinical entities (medications, vital signs,
// procedures, devices) out of sentence text using declarative regex patterns
// and lexicon phrase lists.  Extraction is pure: the same sentence always
// yields the same entities, and overlapping candidates are resolved before
// results are returned.
package extract

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/donovanp007/medscribe/internal/domain/lexicon"
	"github.com/donovanp007/medscribe/pkg/types/clinical"
)

// Extractor recognises entities in sentence text.
type Extractor struct {
	lex *lexicon.Lexicon
}

// NewExtractor builds an extractor over the given lexicon.  A nil lexicon
// falls back to the built-in one.
func NewExtractor(lex *lexicon.Lexicon) *Extractor {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Extractor{lex: lex}
}

// Extract returns the entities found in text, ordered by start offset, with
// overlaps already resolved in favour of higher-confidence matches.  Offsets
// are byte offsets into the NFC-normalised form of the input.
func (x *Extractor) Extract(text string) []clinical.Entity {
	text = norm.NFC.String(text)
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var candidates []clinical.Entity
	candidates = append(candidates, x.extractVitals(text)...)
	candidates = append(candidates, x.extractMedications(text)...)
	candidates = append(candidates, x.extractPhrases(text, x.lex.ProcedurePhrases, clinical.EntityProcedure)...)
	candidates = append(candidates, x.extractPhrases(text, x.lex.DevicePhrases, clinical.EntityDevice)...)

	return resolveOverlaps(candidates)
}

func (x *Extractor) extractMedications(text string) []clinical.Entity {
	var out []clinical.Entity
	for _, idx := range medicationPattern.FindAllSubmatchIndex([]byte(text), -1) {
		e := medicationEntity(text, idx)
		// The drug-name group also matches vital keywords followed by a
		// number and unit-like token; those are handled by vitalPatterns.
		name := strings.ToLower(text[idx[2]:idx[3]])
		if isVitalKeyword(name) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (x *Extractor) extractVitals(text string) []clinical.Entity {
	var out []clinical.Entity
	for _, p := range vitalPatterns {
		for _, idx := range p.re.FindAllSubmatchIndex([]byte(text), -1) {
			vs, ve := idx[2*p.value], idx[2*p.value+1]
			if vs < 0 {
				continue
			}
			value := strings.ReplaceAll(text[vs:ve], " ", "")
			out = append(out, clinical.Entity{
				Type:       clinical.EntityVital,
				Text:       text[idx[0]:idx[1]],
				StartIndex: idx[0],
				EndIndex:   idx[1],
				Confidence: vitalConfidence,
				Details: map[string]string{
					clinical.DetailVitalKind: p.kind,
					clinical.DetailValue:     value,
					clinical.DetailUnit:      p.unit,
				},
			})
		}
	}
	return out
}

func (x *Extractor) extractPhrases(text string, phrases []string, typ clinical.EntityType) []clinical.Entity {
	lower := strings.ToLower(text)
	var out []clinical.Entity
	for _, phrase := range phrases {
		p := strings.ToLower(phrase)
		from := 0
		for {
			i := strings.Index(lower[from:], p)
			if i < 0 {
				break
			}
			start := from + i
			end := start + len(p)
			if wordBounded(lower, start, end) {
				out = append(out, clinical.Entity{
					Type:       typ,
					Text:       text[start:end],
					StartIndex: start,
					EndIndex:   end,
					Confidence: phraseConfidence,
				})
			}
			from = end
		}
	}
	return out
}

// wordBounded reports whether [start,end) is not embedded inside a larger
// alphanumeric token ("ecg" must not match inside "recognise").
func wordBounded(s string, start, end int) bool {
	if start > 0 && isWordByte(s[start-1]) {
		return false
	}
	if end < len(s) && isWordByte(s[end]) {
		return false
	}
	return true
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isVitalKeyword(name string) bool {
	switch name {
	case "temp", "temperature", "pulse", "sats", "spo2", "saturation", "pressure", "rate":
		return true
	}
	return false
}
