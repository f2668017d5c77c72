// Package clinical defines the shared domain and wire types of the medscribe
// engine: entity kinds, urgency levels, scored sentences, snapshot DTOs, and
// the messaging event payloads exchanged with collaborators.
package clinical

import (
	"time"

	"github.com/google/uuid"
)

// ─────────────────────────────────────────────────────────────────────────────
// SectionType — classification of a template section's content
// ─────────────────────────────────────────────────────────────────────────────

// SectionType classifies a template section by the kind of content it holds.
type SectionType string

const (
	SectionSymptoms    SectionType = "symptoms"
	SectionHistory     SectionType = "history"
	SectionExamination SectionType = "examination"
	SectionVitals      SectionType = "vitals"
	SectionDiagnosis   SectionType = "diagnosis"
	SectionTreatment   SectionType = "treatment"
	SectionPlan        SectionType = "plan"
	SectionNotes       SectionType = "notes"
	SectionText        SectionType = "text"
)

// IsValid reports whether t is one of the known section types.
func (t SectionType) IsValid() bool {
	switch t {
	case SectionSymptoms, SectionHistory, SectionExamination, SectionVitals,
		SectionDiagnosis, SectionTreatment, SectionPlan, SectionNotes, SectionText:
		return true
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// Entity — typed clinical facts located in sentence text
// ─────────────────────────────────────────────────────────────────────────────

// EntityType classifies an extracted clinical entity.
type EntityType string

const (
	EntityMedication EntityType = "medication"
	EntityProcedure  EntityType = "procedure"
	EntityDevice     EntityType = "device"
	EntityVital      EntityType = "vital"
	EntitySymptom    EntityType = "symptom"
	EntityDiagnosis  EntityType = "diagnosis"
)

// Detail keys used in Entity.Details.
const (
	DetailDosage    = "dosage"
	DetailFrequency = "frequency"
	DetailRoute     = "route"
	DetailValue     = "value"
	DetailUnit      = "unit"
	DetailVitalKind = "vital_kind"
)

// Entity is a typed, located clinical fact extracted from a single sentence.
// StartIndex and EndIndex are byte offsets into the originating sentence,
// not the whole accumulated stream.
type Entity struct {
	Type       EntityType        `json:"type"`
	Text       string            `json:"text"`
	StartIndex int               `json:"start_index"`
	EndIndex   int               `json:"end_index"`
	Confidence float64           `json:"confidence"`
	Details    map[string]string `json:"details,omitempty"`
}

// Overlaps reports whether the [StartIndex,EndIndex) spans of e and other
// intersect.
func (e Entity) Overlaps(other Entity) bool {
	return e.StartIndex < other.EndIndex && other.StartIndex < e.EndIndex
}

// ScoredSentence is a transient record of one segmented sentence after
// scoring and extraction.  SectionID is empty when the sentence fell below
// the assignment confidence floor.
type ScoredSentence struct {
	Text       string   `json:"text"`
	SectionID  string   `json:"section_id,omitempty"`
	Confidence float64  `json:"confidence"`
	Entities   []Entity `json:"entities,omitempty"`
}

// Assigned reports whether the sentence was assigned to a section.
func (s ScoredSentence) Assigned() bool {
	return s.SectionID != ""
}

// ─────────────────────────────────────────────────────────────────────────────
// UrgencyLevel — monotonic review-urgency rating
// ─────────────────────────────────────────────────────────────────────────────

// UrgencyLevel is a coarse, monotonically escalating rating of how urgently
// the accumulated dictation should be reviewed.
type UrgencyLevel string

const (
	UrgencyLow    UrgencyLevel = "low"
	UrgencyMedium UrgencyLevel = "medium"
	UrgencyHigh   UrgencyLevel = "high"
	UrgencyUrgent UrgencyLevel = "urgent"
)

// Rank returns the ordering position of the level, low first.  Unknown
// levels rank below low so they never win an escalation comparison.
func (u UrgencyLevel) Rank() int {
	switch u {
	case UrgencyLow:
		return 1
	case UrgencyMedium:
		return 2
	case UrgencyHigh:
		return 3
	case UrgencyUrgent:
		return 4
	}
	return 0
}

// MaxUrgency returns the higher ranked of a and b.
func MaxUrgency(a, b UrgencyLevel) UrgencyLevel {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// ─────────────────────────────────────────────────────────────────────────────
// SuggestedAction — rule-raised recommendations
// ─────────────────────────────────────────────────────────────────────────────

// SuggestedActionType classifies a rule-raised suggestion.
type SuggestedActionType string

const (
	ActionUrgentReview     SuggestedActionType = "urgent_review"
	ActionMedicationReview SuggestedActionType = "medication_review"
	ActionFollowUp         SuggestedActionType = "follow_up"
)

// SuggestedAction is a free-text, rule-based recommendation surfaced in the
// snapshot alongside the classified content.
type SuggestedAction struct {
	ID         string              `json:"id"`
	Type       SuggestedActionType `json:"type"`
	Text       string              `json:"text"`
	Confidence float64             `json:"confidence"`
}

// NewSuggestedAction builds a SuggestedAction with a fresh UUID.
func NewSuggestedAction(typ SuggestedActionType, text string, confidence float64) SuggestedAction {
	return SuggestedAction{
		ID:         uuid.New().String(),
		Type:       typ,
		Text:       text,
		Confidence: confidence,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Snapshot DTOs
// ─────────────────────────────────────────────────────────────────────────────

// SectionSnapshot is the read-only view of one section's accumulated state.
type SectionSnapshot struct {
	SectionID   string    `json:"section_id"`
	Title       string    `json:"title"`
	Fragments   []string  `json:"fragments"`
	Confidence  float64   `json:"confidence"`
	Entities    []Entity  `json:"entities,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
}

// Populated reports whether the section has received at least one fragment.
func (s SectionSnapshot) Populated() bool {
	return len(s.Fragments) > 0
}

// StreamingAnalysisResult is the queryable snapshot of a streaming session:
// the full accumulated text, per-section fill state, suggested actions, the
// current urgency level, and an exact completeness ratio
// (populatedSections / totalSections).
type StreamingAnalysisResult struct {
	Text             string                     `json:"text"`
	Sections         map[string]SectionSnapshot `json:"sections"`
	SuggestedActions []SuggestedAction          `json:"suggested_actions,omitempty"`
	UrgencyLevel     UrgencyLevel               `json:"urgency_level"`
	Completeness     float64                    `json:"completeness"`
	GeneratedAt      time.Time                  `json:"generated_at"`
}

// PopulatedSections counts sections holding at least one fragment.
func (r StreamingAnalysisResult) PopulatedSections() int {
	n := 0
	for _, s := range r.Sections {
		if s.Populated() {
			n++
		}
	}
	return n
}

// TemplateSuggestion is the outcome of scoring candidate templates against
// accumulated text.
type TemplateSuggestion struct {
	TemplateID string  `json:"template_id"`
	Name       string  `json:"name,omitempty"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Messaging event payloads
// ─────────────────────────────────────────────────────────────────────────────

// TranscriptChunk is the messaging payload emitted by the transcription
// front-end collaborator.  Sequence preserves transcript order; chunks must
// be applied in order because confidence is monotonic and deduplication is
// stateful.
type TranscriptChunk struct {
	SessionID  string    `json:"session_id"`
	Sequence   int64     `json:"sequence"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}

// UrgentAlert is published when a session's urgency escalates to high or
// urgent.
type UrgentAlert struct {
	AlertID   string       `json:"alert_id"`
	SessionID string       `json:"session_id"`
	Urgency   UrgencyLevel `json:"urgency"`
	Triggers  []string     `json:"triggers,omitempty"`
	RaisedAt  time.Time    `json:"raised_at"`
}

// NewUrgentAlert builds an UrgentAlert with a fresh UUID and UTC timestamp.
func NewUrgentAlert(sessionID string, urgency UrgencyLevel, triggers []string) UrgentAlert {
	return UrgentAlert{
		AlertID:   uuid.New().String(),
		SessionID: sessionID,
		Urgency:   urgency,
		Triggers:  triggers,
		RaisedAt:  time.Now().UTC(),
	}
}
