package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donovanp007/medscribe/internal/application/scribe"
	"github.com/donovanp007/medscribe/pkg/errors"
	"github.com/donovanp007/medscribe/pkg/types/clinical"
)

func TestTranscriptHandler_FeedsService(t *testing.T) {
	svc := scribe.NewService(nil, nil)
	handler := NewTranscriptHandler(svc, nil)

	chunk := clinical.TranscriptChunk{
		SessionID:  "dictation-9",
		Sequence:   1,
		Text:       "Patient reports severe chest pain. ",
		ReceivedAt: time.Now(),
	}
	value, err := json.Marshal(chunk)
	require.NoError(t, err)

	err = handler(context.Background(), &Message{Topic: TopicTranscriptChunks, Value: value})
	require.NoError(t, err)

	snap, err := svc.Snapshot(context.Background(), "dictation-9")
	require.NoError(t, err)
	assert.Contains(t, snap.Text, "chest pain")
}

func TestTranscriptHandler_MalformedPayload(t *testing.T) {
	svc := scribe.NewService(nil, nil)
	handler := NewTranscriptHandler(svc, nil)

	err := handler(context.Background(), &Message{Value: []byte("{not json")})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization))
}

func TestTranscriptHandler_EmptyTextSkipped(t *testing.T) {
	svc := scribe.NewService(nil, nil)
	handler := NewTranscriptHandler(svc, nil)

	value, _ := json.Marshal(clinical.TranscriptChunk{SessionID: "s", Sequence: 1})
	assert.NoError(t, handler(context.Background(), &Message{Value: value}))
	assert.Equal(t, 0, svc.SessionCount(), "empty chunks do not open sessions")
}

func TestTranscriptHandler_SinkErrorPropagates(t *testing.T) {
	svc := scribe.NewService(nil, nil)
	handler := NewTranscriptHandler(svc, nil)

	// A chunk without a session id is rejected by the service.
	value, _ := json.Marshal(clinical.TranscriptChunk{Sequence: 1, Text: "some dictated sentence."})
	err := handler(context.Background(), &Message{Value: value})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}
