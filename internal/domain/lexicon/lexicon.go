// Package lexicon holds the keyword and phrase data that drives section
// scoring, entity extraction, and urgency escalation.  The lexicon is plain
// immutable data injected at construction time; there are no package-level
// registries, so tests can substitute fixtures freely.
package lexicon

import (
	"github.com/donovanp007/medscribe/pkg/types/clinical"
)

// Lexicon bundles every keyword set the analysis pipeline consumes.
type Lexicon struct {
	// SectionCues maps a section type to contextual cue substrings.  A cue
	// match contributes the lowest scoring weight; it nudges assignment when
	// keyword evidence alone is thin.
	SectionCues map[clinical.SectionType][]string

	// ProcedurePhrases are exact phrases recognised as procedure entities.
	ProcedurePhrases []string

	// DevicePhrases are exact phrases recognised as device entities.
	DevicePhrases []string

	// RedFlags maps an urgency level to the phrases that trigger escalation
	// to that level.  Escalation is monotonic within a session.
	RedFlags map[clinical.UrgencyLevel][]string
}

// Default returns the built-in clinical lexicon.  Callers must treat the
// returned value as read-only; mutating it would leak state between
// components sharing the same instance.
func Default() *Lexicon {
	return &Lexicon{
		SectionCues: map[clinical.SectionType][]string{
			clinical.SectionSymptoms: {
				"complain", "feel", "report", "present", "describ", "pain",
				"discomfort", "nausea", "dizz",
			},
			clinical.SectionHistory: {
				"history", "previous", "prior", "past", "known", "chronic",
				"family", "smoker", "alcohol",
			},
			clinical.SectionExamination: {
				"exam", "inspect", "palpat", "auscult", "percuss", "tender",
				"on examination", "observ",
			},
			clinical.SectionVitals: {
				"bp", "blood pressure", "heart rate", "pulse", "temperature",
				"saturation", "spo2", "respiratory rate",
			},
			clinical.SectionDiagnosis: {
				"assess", "diagnos", "impression", "consistent with",
				"likely", "differential", "confirmed",
			},
			clinical.SectionTreatment: {
				"prescrib", "administer", "start", "commence", "treat",
				"dose", "therapy", "medication",
			},
			clinical.SectionPlan: {
				"plan", "follow-up", "follow up", "review", "refer",
				"schedule", "return", "monitor",
			},
			clinical.SectionNotes: {
				"note", "remark", "comment",
			},
		},
		ProcedurePhrases: []string{
			"chest x-ray", "x-ray", "ecg", "ekg", "blood test", "full blood count",
			"ultrasound", "ct scan", "mri", "lumbar puncture", "biopsy",
			"endoscopy", "suturing", "intubation", "dialysis",
		},
		DevicePhrases: []string{
			"pacemaker", "catheter", "nebulizer", "oxygen mask", "iv line",
			"defibrillator", "splint", "stent", "ventilator", "cannula",
		},
		RedFlags: map[clinical.UrgencyLevel][]string{
			clinical.UrgencyUrgent: {
				"unresponsive", "not breathing", "cardiac arrest", "anaphylaxis",
				"severe bleeding", "unconscious", "no pulse",
			},
			clinical.UrgencyHigh: {
				"chest pain", "shortness of breath", "difficulty breathing",
				"stroke", "severe pain", "high fever", "suicidal",
			},
			clinical.UrgencyMedium: {
				"persistent pain", "worsening", "dehydration", "infection",
				"vomiting blood",
			},
		},
	}
}

// CuesFor returns the contextual cues for a section type, or nil when the
// type has none.
func (l *Lexicon) CuesFor(t clinical.SectionType) []string {
	if l == nil || l.SectionCues == nil {
		return nil
	}
	return l.SectionCues[t]
}
