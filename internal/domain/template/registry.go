package template

import (
	"sort"
	"sync"

	"github.com/donovanp007/medscribe/pkg/errors"
	"github.com/donovanp007/medscribe/pkg/types/clinical"
)

// Registry is a small in-memory store of template definitions, keyed by
// template id.  It serves the CLI, the suggestion endpoint, and session
// creation; durable template storage belongs to an external collaborator.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]Definition
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]Definition)}
}

// NewBuiltinRegistry returns a registry pre-populated with the built-in
// clinical templates.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	for _, d := range Builtins() {
		// Builtins are validated by their own tests; Register only fails on
		// an invalid definition.
		_ = r.Register(d)
	}
	return r
}

// Register validates and stores a template definition, replacing any
// existing definition with the same id.
func (r *Registry) Register(d Definition) error {
	if err := d.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.templates[d.ID] = d
	r.mu.Unlock()
	return nil
}

// Get returns the template with the given id.
func (r *Registry) Get(id string) (Definition, error) {
	r.mu.RLock()
	d, ok := r.templates[id]
	r.mu.RUnlock()
	if !ok {
		return Definition{}, errors.New(errors.ErrCodeTemplateNotFound, "template not found").
			WithDetail("template=" + id)
	}
	return d, nil
}

// List returns all registered templates ordered by id.
func (r *Registry) List() []Definition {
	r.mu.RLock()
	out := make([]Definition, 0, len(r.templates))
	for _, d := range r.templates {
		out = append(out, d)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Builtins returns the built-in template definitions.
func Builtins() []Definition {
	return []Definition{
		{
			ID:              "general_consultation",
			Name:            "General Consultation",
			TriggerKeywords: []string{"consultation", "consult", "clinic visit"},
			Sections: []Section{
				{ID: "chief_complaint", Title: "Chief Complaint", Type: clinical.SectionSymptoms,
					Keywords: []string{"chest pain", "headache", "cough", "fever", "fatigue", "pain"}},
				{ID: "history", Title: "History", Type: clinical.SectionHistory,
					Keywords: []string{"history", "hypertension", "diabetes", "asthma", "surgery"}},
				{ID: "examination", Title: "Examination", Type: clinical.SectionExamination,
					Keywords: []string{"examination", "auscultation", "palpation", "tenderness"}},
				{ID: "vitals", Title: "Vital Signs", Type: clinical.SectionVitals,
					Keywords: []string{"blood pressure", "heart rate", "temperature", "saturation"}},
				{ID: "diagnosis", Title: "Diagnosis", Type: clinical.SectionDiagnosis,
					Keywords: []string{"diagnosis", "assessment", "impression", "angina", "migraine"}},
				{ID: "plan", Title: "Plan", Type: clinical.SectionPlan,
					Keywords: []string{"plan", "follow-up", "review", "referral", "prescription"}},
			},
		},
		{
			ID:              "emergency",
			Name:            "Emergency Assessment",
			TriggerKeywords: []string{"emergency", "acute", "resus", "triage"},
			Sections: []Section{
				{ID: "presenting_complaint", Title: "Presenting Complaint", Type: clinical.SectionSymptoms,
					Keywords: []string{"chest pain", "shortness of breath", "collapse", "trauma", "bleeding"}},
				{ID: "vitals", Title: "Vital Signs", Type: clinical.SectionVitals,
					Keywords: []string{"blood pressure", "heart rate", "saturation", "gcs", "temperature"}},
				{ID: "examination", Title: "Primary Survey", Type: clinical.SectionExamination,
					Keywords: []string{"airway", "breathing", "circulation", "examination", "pupils"}},
				{ID: "impression", Title: "Impression", Type: clinical.SectionDiagnosis,
					Keywords: []string{"impression", "suspected", "rule out", "differential"}},
				{ID: "treatment", Title: "Immediate Treatment", Type: clinical.SectionTreatment,
					Keywords: []string{"oxygen", "fluids", "analgesia", "administered", "aspirin"}},
			},
		},
		{
			ID:              "follow_up",
			Name:            "Follow-up Visit",
			TriggerKeywords: []string{"follow-up", "follow up", "review visit", "progress"},
			Sections: []Section{
				{ID: "progress", Title: "Progress", Type: clinical.SectionHistory,
					Keywords: []string{"improving", "worsening", "unchanged", "progress", "since last"}},
				{ID: "current_symptoms", Title: "Current Symptoms", Type: clinical.SectionSymptoms,
					Keywords: []string{"pain", "symptom", "complaint", "side effect"}},
				{ID: "medication_review", Title: "Medication Review", Type: clinical.SectionTreatment,
					Keywords: []string{"medication", "dose", "compliance", "adjusted", "stopped"}},
				{ID: "plan", Title: "Plan", Type: clinical.SectionPlan,
					Keywords: []string{"plan", "continue", "review", "repeat", "refer"}},
			},
		},
		{
			ID:              "procedure_note",
			Name:            "Procedure Note",
			TriggerKeywords: []string{"procedure", "operation", "performed"},
			Sections: []Section{
				{ID: "indication", Title: "Indication", Type: clinical.SectionDiagnosis,
					Keywords: []string{"indication", "for", "because", "diagnosis"}},
				{ID: "procedure", Title: "Procedure", Type: clinical.SectionExamination,
					Keywords: []string{"procedure", "incision", "suturing", "biopsy", "performed"}},
				{ID: "findings", Title: "Findings", Type: clinical.SectionNotes,
					Keywords: []string{"findings", "noted", "observed", "specimen"}},
				{ID: "aftercare", Title: "Aftercare", Type: clinical.SectionPlan,
					Keywords: []string{"aftercare", "dressing", "review", "removal", "advice"}},
			},
		},
	}
}
