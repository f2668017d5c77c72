package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessions_Lifecycle(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	session, err := c.Sessions().Create(ctx, "")
	require.NoError(t, err)
	require.NotEmpty(t, session.SessionID)
	assert.Equal(t, "general_consultation", session.TemplateID)

	result, err := c.Sessions().AddText(ctx, session.SessionID, "Patient reports severe chest pain. ")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Sections["chief_complaint"].Fragments)

	snap, err := c.Sessions().Snapshot(ctx, session.SessionID)
	require.NoError(t, err)
	assert.Contains(t, snap.Text, "chest pain")

	require.NoError(t, c.Sessions().Reset(ctx, session.SessionID))

	snap, err = c.Sessions().Snapshot(ctx, session.SessionID)
	require.NoError(t, err)
	assert.Empty(t, snap.Text)

	_, err = c.Sessions().Close(ctx, session.SessionID)
	require.NoError(t, err)

	_, err = c.Sessions().Snapshot(ctx, session.SessionID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
}

func TestSessions_FlushProcessesTail(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	session, err := c.Sessions().Create(ctx, "")
	require.NoError(t, err)

	// No terminator, so the sentence stays buffered until flush.
	_, err = c.Sessions().AddText(ctx, session.SessionID, "Patient reports severe chest pain")
	require.NoError(t, err)

	result, err := c.Sessions().Flush(ctx, session.SessionID)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Sections["chief_complaint"].Fragments)
}

func TestSessions_UnknownTemplate(t *testing.T) {
	c := newTestClient(t)

	_, err := c.Sessions().Create(context.Background(), "nope")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
	assert.NotEmpty(t, apiErr.Code)
}
