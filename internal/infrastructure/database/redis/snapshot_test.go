package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donovanp007/medscribe/internal/infrastructure/monitoring/logging"
	"github.com/donovanp007/medscribe/pkg/types/clinical"
)

func TestSnapshotStore_RoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	store := NewSnapshotStore(c, time.Minute, logging.NewNopLogger())
	ctx := context.Background()

	result := clinical.StreamingAnalysisResult{
		Text:         "Patient reports chest pain.",
		UrgencyLevel: clinical.UrgencyHigh,
		Completeness: 0.25,
		Sections: map[string]clinical.SectionSnapshot{
			"symptoms": {SectionID: "symptoms", Title: "Symptoms", Fragments: []string{"Patient reports chest pain"}},
		},
	}
	require.NoError(t, store.Save(ctx, "sess-1", result))

	got, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, result.Text, got.Text)
	assert.Equal(t, clinical.UrgencyHigh, got.UrgencyLevel)
	assert.Len(t, got.Sections["symptoms"].Fragments, 1)
}

func TestSnapshotStore_LoadMissReturnsNil(t *testing.T) {
	c, _ := newTestCache(t)
	store := NewSnapshotStore(c, time.Minute, logging.NewNopLogger())

	got, err := store.Load(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSnapshotStore_Invalidate(t *testing.T) {
	c, _ := newTestCache(t)
	store := NewSnapshotStore(c, time.Minute, logging.NewNopLogger())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess-1", clinical.StreamingAnalysisResult{Text: "x"}))
	require.NoError(t, store.Invalidate(ctx, "sess-1"))

	got, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
