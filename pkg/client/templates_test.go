package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates_List(t *testing.T) {
	c := newTestClient(t)

	templates, err := c.Templates().List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, templates)

	ids := make([]string, 0, len(templates))
	for _, def := range templates {
		ids = append(ids, def.ID)
		assert.NotEmpty(t, def.Sections)
	}
	assert.Contains(t, ids, "general_consultation")
}

func TestTemplates_Suggest(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	suggestion, err := c.Templates().Suggest(ctx, "This is an emergency, starting triage now.")
	require.NoError(t, err)
	require.NotNil(t, suggestion)
	assert.Equal(t, "emergency", suggestion.TemplateID)

	suggestion, err = c.Templates().Suggest(ctx, "nothing clinical here")
	require.NoError(t, err)
	assert.Nil(t, suggestion)
}
