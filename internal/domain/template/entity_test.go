package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donovanp007/medscribe/pkg/errors"
	"github.com/donovanp007/medscribe/pkg/types/clinical"
)

func validDefinition() Definition {
	return Definition{
		ID:   "tpl-1",
		Name: "Test Template",
		Sections: []Section{
			{ID: "symptoms", Title: "Symptoms", Type: clinical.SectionSymptoms, Keywords: []string{"pain"}},
			{ID: "plan", Title: "Plan", Type: clinical.SectionPlan, Keywords: []string{"review"}},
		},
	}
}

func TestDefinition_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Definition)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Definition) {}, wantErr: false},
		{name: "empty id", mutate: func(d *Definition) { d.ID = "  " }, wantErr: true},
		{name: "no sections", mutate: func(d *Definition) { d.Sections = nil }, wantErr: true},
		{name: "empty section id", mutate: func(d *Definition) { d.Sections[1].ID = "" }, wantErr: true},
		{name: "duplicate section id", mutate: func(d *Definition) { d.Sections[1].ID = "symptoms" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDefinition()
			tt.mutate(&d)
			err := d.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrCodeTemplateInvalid))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefinition_SectionByID(t *testing.T) {
	d := validDefinition()

	s, ok := d.SectionByID("plan")
	require.True(t, ok)
	assert.Equal(t, "Plan", s.Title)

	_, ok = d.SectionByID("missing")
	assert.False(t, ok)
}

func TestDefinition_SectionIDs_PreservesOrder(t *testing.T) {
	d := validDefinition()
	assert.Equal(t, []string{"symptoms", "plan"}, d.SectionIDs())
}
