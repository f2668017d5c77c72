package kafka

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donovanp007/medscribe/pkg/errors"
	"github.com/donovanp007/medscribe/pkg/types/clinical"
)

type fakeWriter struct {
	mu       sync.Mutex
	written  []kafka.Message
	writeErr error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.writeErr != nil {
		return w.writeErr
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWriter) messages() []kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]kafka.Message(nil), w.written...)
}

func newTestProducer(w WriterInterface) *Producer {
	cfg := ProducerConfig{Brokers: []string{"localhost:9092"}}
	applyProducerDefaults(&cfg)
	return newProducer(w, cfg, nil)
}

func TestValidateProducerConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ProducerConfig
		wantErr bool
	}{
		{"valid", ProducerConfig{Brokers: []string{"localhost:9092"}}, false},
		{"no brokers", ProducerConfig{}, true},
		{"negative retries", ProducerConfig{Brokers: []string{"b"}, MaxRetries: -1}, true},
		{"sasl without credentials", ProducerConfig{
			Brokers: []string{"b"},
			Auth:    AuthConfig{SASLMechanism: "PLAIN"},
		}, true},
		{"unsupported sasl mechanism", ProducerConfig{
			Brokers: []string{"b"},
			Auth:    AuthConfig{SASLMechanism: "GSSAPI", SASLUsername: "u", SASLPassword: "p"},
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProducerConfig(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)

	err := p.Publish(context.Background(), &ProducerMessage{
		Topic:   TopicUrgentAlerts,
		Key:     []byte("sess-1"),
		Value:   []byte(`{"alert_id":"a1"}`),
		Headers: map[string]string{"urgency": "high"},
	})
	require.NoError(t, err)

	msgs := w.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, TopicUrgentAlerts, msgs[0].Topic)
	assert.Equal(t, []byte("sess-1"), msgs[0].Key)
	require.Len(t, msgs[0].Headers, 1)
	assert.Equal(t, "urgency", msgs[0].Headers[0].Key)
	assert.False(t, msgs[0].Time.IsZero())

	m := p.GetMetrics()
	assert.Equal(t, int64(1), m.MessagesSent)
	assert.Equal(t, int64(0), m.MessagesFailed)
	assert.False(t, m.LastSentAt.IsZero())
}

func TestProducer_Publish_Validation(t *testing.T) {
	p := newTestProducer(&fakeWriter{})
	ctx := context.Background()

	assert.Error(t, p.Publish(ctx, &ProducerMessage{Value: []byte("x")}))
	assert.Error(t, p.Publish(ctx, &ProducerMessage{Topic: "t"}))

	big := make([]byte, 2<<20)
	assert.Error(t, p.Publish(ctx, &ProducerMessage{Topic: "t", Value: big}))
}

func TestProducer_Publish_WriteError(t *testing.T) {
	w := &fakeWriter{writeErr: assert.AnError}
	p := newTestProducer(w)

	err := p.Publish(context.Background(), &ProducerMessage{Topic: "t", Value: []byte("x")})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMessageQueueError))
	assert.Equal(t, int64(1), p.GetMetrics().MessagesFailed)
}

func TestProducer_PublishAfterClose(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)
	require.NoError(t, p.Close())
	assert.True(t, w.closed)

	err := p.Publish(context.Background(), &ProducerMessage{Topic: "t", Value: []byte("x")})
	assert.ErrorIs(t, err, ErrProducerClosed)

	// Close is idempotent.
	assert.NoError(t, p.Close())
}

func TestProducer_PublishBatch(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)

	msgs := []*ProducerMessage{
		{Topic: "t", Value: []byte("a")},
		{Topic: "t", Value: []byte("b")},
	}
	result, err := p.PublishBatch(context.Background(), msgs)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 0, result.Failed)
	assert.Len(t, w.messages(), 2)
}

func TestProducer_PublishBatch_PartialFailure(t *testing.T) {
	w := &fakeWriter{writeErr: kafka.WriteErrors{nil, assert.AnError}}
	p := newTestProducer(w)

	msgs := []*ProducerMessage{
		{Topic: "t", Value: []byte("a")},
		{Topic: "t", Value: []byte("b")},
	}
	result, err := p.PublishBatch(context.Background(), msgs)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].Index)
}

func TestProducer_PublishBatch_Empty(t *testing.T) {
	p := newTestProducer(&fakeWriter{})
	_, err := p.PublishBatch(context.Background(), nil)
	assert.Error(t, err)
}

func TestAlertProducer_PublishAlert(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)
	ap, err := NewAlertProducer(p, "", nil)
	require.NoError(t, err)

	alert := clinical.NewUrgentAlert("sess-7", clinical.UrgencyHigh, []string{"chest pain"})
	require.NoError(t, ap.PublishAlert(context.Background(), alert))

	msgs := w.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, TopicUrgentAlerts, msgs[0].Topic)
	assert.Equal(t, []byte("sess-7"), msgs[0].Key)

	var decoded clinical.UrgentAlert
	require.NoError(t, json.Unmarshal(msgs[0].Value, &decoded))
	assert.Equal(t, alert.AlertID, decoded.AlertID)
	assert.Equal(t, clinical.UrgencyHigh, decoded.Urgency)
	assert.Contains(t, decoded.Triggers, "chest pain")

	headers := map[string]string{}
	for _, h := range msgs[0].Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, alert.AlertID, headers["alert_id"])
	assert.Equal(t, "high", headers["urgency"])
}

func TestNewAlertProducer_RequiresProducer(t *testing.T) {
	_, err := NewAlertProducer(nil, TopicUrgentAlerts, nil)
	assert.Error(t, err)
}

func TestProducerDefaults(t *testing.T) {
	cfg := ProducerConfig{Brokers: []string{"b"}}
	applyProducerDefaults(&cfg)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, time.Second, cfg.BatchTimeout)
	assert.Equal(t, 1<<20, cfg.MaxMessageBytes)
}
