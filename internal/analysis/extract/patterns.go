package extract

import (
	"regexp"

	"github.com/donovanp007/medscribe/pkg/types/clinical"
)

// Pattern confidence tiers.  Vital-sign patterns are near-unambiguous
// numeric forms; medication dosages are strong but can false-positive on
// non-drug nouns; lexicon phrase matches are weakest.
const (
	vitalConfidence      = 0.95
	medicationConfidence = 0.9
	phraseConfidence     = 0.8
)

// medicationPattern matches "<drug> <amount> <unit>" with an optional
// trailing frequency phrase, e.g. "Aspirin 300mg once daily".
var medicationPattern = regexp.MustCompile(
	`(?i)\b([A-Za-z][A-Za-z-]{2,})\s*(\d+(?:\.\d+)?)\s*(mg|mcg|g|ml|units?)\b` +
		`(?:\s+((?:once|twice|three times|four times)\s+(?:a\s+day|daily|weekly)|daily|nocte|mane|prn|stat|bd|tds|qds))?`,
)

// vitalPattern couples a compiled regex with the vital kind it captures.
// The value group index points at the submatch holding the reading.
type vitalPattern struct {
	re    *regexp.Regexp
	kind  string
	unit  string
	value int
}

var vitalPatterns = []vitalPattern{
	{
		re:    regexp.MustCompile(`(?i)\b(?:bp|blood pressure)(?:\s+(?:is|of|was|at))?\s*(\d{2,3}\s*/\s*\d{2,3})\b`),
		kind:  "blood_pressure",
		unit:  "mmHg",
		value: 1,
	},
	{
		re:    regexp.MustCompile(`(?i)\b(?:hr|heart rate|pulse)(?:\s+(?:is|of|was|at))?\s*(\d{2,3})(?:\s*bpm)?\b`),
		kind:  "heart_rate",
		unit:  "bpm",
		value: 1,
	},
	{
		re:    regexp.MustCompile(`(?i)\b(?:temp|temperature)(?:\s+(?:is|of|was|at))?\s*(\d{2,3}(?:\.\d)?)\s*(?:degrees|°)?\s*(?:c|celsius|f|fahrenheit)?\b`),
		kind:  "temperature",
		unit:  "°C",
		value: 1,
	},
	{
		re:    regexp.MustCompile(`(?i)\b(?:spo2|sats?|oxygen saturation)(?:\s+(?:is|of|was|at))?\s*(\d{2,3})\s*%?`),
		kind:  "oxygen_saturation",
		unit:  "%",
		value: 1,
	},
}

// medicationEntity builds a medication entity from a medicationPattern
// submatch index slice against the source text.
func medicationEntity(text string, idx []int) clinical.Entity {
	e := clinical.Entity{
		Type:       clinical.EntityMedication,
		Text:       text[idx[0]:idx[1]],
		StartIndex: idx[0],
		EndIndex:   idx[1],
		Confidence: medicationConfidence,
		Details:    map[string]string{},
	}
	amount := text[idx[4]:idx[5]]
	unit := text[idx[6]:idx[7]]
	e.Details[clinical.DetailDosage] = amount + " " + unit
	if idx[8] >= 0 {
		e.Details[clinical.DetailFrequency] = text[idx[8]:idx[9]]
	}
	return e
}
