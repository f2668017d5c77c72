package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggest_Match(t *testing.T) {
	out, _, err := execCLI(t, "This is an emergency, starting triage now.", "suggest")
	require.NoError(t, err)
	assert.Contains(t, out, "Template:   emergency")
	assert.Contains(t, out, "Confidence:")
}

func TestSuggest_NoMatch(t *testing.T) {
	out, _, err := execCLI(t, "nothing clinical here", "suggest")
	require.NoError(t, err)
	assert.Contains(t, out, "No template matched")
}

func TestSuggest_JSONOutput(t *testing.T) {
	out, _, err := execCLI(t, "This is an emergency, starting triage now.", "suggest", "-o", "json")
	require.NoError(t, err)

	var payload SuggestResult
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	require.NotNil(t, payload.Suggestion)
	assert.Equal(t, "emergency", payload.Suggestion.TemplateID)

	out, _, err = execCLI(t, "nothing clinical here", "suggest", "-o", "json")
	require.NoError(t, err)
	payload = SuggestResult{}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Nil(t, payload.Suggestion)
}

func TestSuggest_EmptyInput(t *testing.T) {
	_, _, err := execCLI(t, "", "suggest")
	require.Error(t, err)
}
