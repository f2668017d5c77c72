package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donovanp007/medscribe/internal/domain/template"
	"github.com/donovanp007/medscribe/pkg/types/clinical"
)

func symptomSection() template.Section {
	return template.Section{
		ID:       "chief_complaint",
		Title:    "Chief Complaint",
		Type:     clinical.SectionSymptoms,
		Keywords: []string{"chest pain", "headache", "cough", "fever", "fatigue", "pain"},
	}
}

func vitalsSection() template.Section {
	return template.Section{
		ID:       "vitals",
		Title:    "Vital Signs",
		Type:     clinical.SectionVitals,
		Keywords: []string{"blood pressure", "heart rate", "temperature", "saturation"},
	}
}

func planSection() template.Section {
	return template.Section{
		ID:       "plan",
		Title:    "Plan",
		Type:     clinical.SectionPlan,
		Keywords: []string{"plan", "follow-up", "review", "referral"},
	}
}

func testDefinition() template.Definition {
	return template.Definition{
		ID:       "tpl",
		Name:     "Test",
		Sections: []template.Section{symptomSection(), vitalsSection(), planSection()},
	}
}

func TestScore_ExactKeywordOutweighsCue(t *testing.T) {
	s := NewScorer(nil, 0)

	symptomScore := s.Score("Patient reports severe chest pain", symptomSection())
	planScore := s.Score("Patient reports severe chest pain", planSection())
	assert.Greater(t, symptomScore, planScore)
	assert.Greater(t, symptomScore, 0.3)
}

func TestScore_AlwaysInUnitRange(t *testing.T) {
	s := NewScorer(nil, 0)
	sentences := []string{
		"",
		"Patient reports severe chest pain and a headache with fever cough fatigue pain",
		"Follow-up plan to review the referral plan",
		"completely unrelated sentence about the weather",
	}
	sections := []template.Section{symptomSection(), vitalsSection(), planSection()}

	for _, sent := range sentences {
		for _, sec := range sections {
			got := s.Score(sent, sec)
			assert.GreaterOrEqual(t, got, 0.0, "%q vs %s", sent, sec.ID)
			assert.LessOrEqual(t, got, 1.0, "%q vs %s", sent, sec.ID)
		}
	}
}

func TestScore_ZeroKeywordSectionUsesCuesOnly(t *testing.T) {
	s := NewScorer(nil, 0)
	sec := template.Section{ID: "notes", Type: clinical.SectionNotes}

	got := s.Score("A brief note about the consultation", sec)
	assert.Greater(t, got, 0.0)
	assert.LessOrEqual(t, got, 1.0)
}

func TestScore_NumericVitalCue(t *testing.T) {
	s := NewScorer(nil, 0)
	sec := vitalsSection()
	sec.Keywords = nil

	// No vitals keyword in the sentence; the numeric shape alone must cue.
	got := s.Score("Readings were 140/90 this morning", sec)
	assert.Greater(t, got, 0.0)
}

func TestScore_PartialMatchScoresLowerThanExact(t *testing.T) {
	s := NewScorer(nil, 0)
	sec := template.Section{ID: "dx", Type: clinical.SectionDiagnosis, Keywords: []string{
		"diagnosis", "assessment", "impression", "angina", "migraine",
		"pneumonia", "fracture", "sepsis", "anaemia", "appendicitis",
	}}

	exact := s.Score("The diagnosis is stable angina", sec)
	partial := s.Score("Anginal symptoms persisting overnight", sec)
	assert.Greater(t, exact, partial)
	assert.Greater(t, partial, 0.0)
}

func TestAssignBestSection_PicksSymptoms(t *testing.T) {
	s := NewScorer(nil, 0)

	got := s.AssignBestSection("Patient reports severe chest pain", testDefinition())
	require.NotNil(t, got)
	assert.Equal(t, "chief_complaint", got.SectionID)
	assert.Greater(t, got.Confidence, 0.3)
}

func TestAssignBestSection_PicksVitals(t *testing.T) {
	s := NewScorer(nil, 0)

	got := s.AssignBestSection("Blood pressure is 140/90 with heart rate 85", testDefinition())
	require.NotNil(t, got)
	assert.Equal(t, "vitals", got.SectionID)
}

func TestAssignBestSection_NilBelowFloor(t *testing.T) {
	s := NewScorer(nil, 0)

	got := s.AssignBestSection("The weather is pleasant today", testDefinition())
	assert.Nil(t, got)
}

func TestAssignBestSection_CustomFloor(t *testing.T) {
	strict := NewScorer(nil, 0.99)

	got := strict.AssignBestSection("Patient has a cough", testDefinition())
	assert.Nil(t, got, "near-perfect floor should reject ordinary sentences")
	assert.InDelta(t, 0.99, strict.Floor(), 1e-9)
}

func TestScore_Deterministic(t *testing.T) {
	s := NewScorer(nil, 0)
	sent := "Patient reports severe chest pain"

	first := s.Score(sent, symptomSection())
	second := s.Score(sent, symptomSection())
	assert.Equal(t, first, second)
}
