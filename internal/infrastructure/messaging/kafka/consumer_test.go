package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donovanp007/medscribe/pkg/errors"
)

type fakeReader struct {
	mu        sync.Mutex
	ch        chan kafka.Message
	committed []kafka.Message
	closed    bool
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	ch := make(chan kafka.Message, len(msgs)+1)
	for _, m := range msgs {
		ch <- m
	}
	return &fakeReader{ch: ch}
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.ch:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) committedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

func (r *fakeReader) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func testConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Brokers: []string{"localhost:9092"},
		GroupID: "medscribe-ingest",
		Topics:  []string{TopicTranscriptChunks},
		Retry: RetryConfig{
			MaxRetries:      2,
			RetryBackoff:    time.Millisecond,
			MaxRetryBackoff: 4 * time.Millisecond,
		},
	}
}

func chunkMessage(offset int64, value string) kafka.Message {
	return kafka.Message{
		Topic:  TopicTranscriptChunks,
		Offset: offset,
		Key:    []byte("sess-1"),
		Value:  []byte(value),
	}
}

func TestValidateConsumerConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ConsumerConfig)
		wantErr bool
	}{
		{"valid", func(*ConsumerConfig) {}, false},
		{"no brokers", func(c *ConsumerConfig) { c.Brokers = nil }, true},
		{"no group", func(c *ConsumerConfig) { c.GroupID = "" }, true},
		{"no topics", func(c *ConsumerConfig) { c.Topics = nil }, true},
		{"bad offset reset", func(c *ConsumerConfig) { c.AutoOffsetReset = "newest" }, true},
		{"negative retries", func(c *ConsumerConfig) { c.Retry.MaxRetries = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConsumerConfig()
			tt.mutate(&cfg)
			err := ValidateConsumerConfig(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConsumer_DispatchesAndCommits(t *testing.T) {
	reader := newFakeReader(chunkMessage(1, `{"session_id":"sess-1"}`))
	c := newConsumer(reader, testConsumerConfig(), nil)

	var handled atomic.Int64
	c.Subscribe(TopicTranscriptChunks, func(_ context.Context, msg *Message) error {
		handled.Add(1)
		assert.Equal(t, TopicTranscriptChunks, msg.Topic)
		assert.Equal(t, []byte("sess-1"), msg.Key)
		return nil
	})

	require.NoError(t, c.Start(context.Background()))
	assert.Eventually(t, func() bool { return reader.committedCount() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())

	assert.Equal(t, int64(1), handled.Load())
	m := c.GetMetrics()
	assert.Equal(t, int64(1), m.MessagesConsumed)
	assert.Equal(t, int64(1), m.MessagesProcessed)
	assert.False(t, m.LastConsumedAt.IsZero())
	assert.True(t, reader.isClosed())
}

func TestConsumer_StartTwice(t *testing.T) {
	c := newConsumer(newFakeReader(), testConsumerConfig(), nil)
	require.NoError(t, c.Start(context.Background()))
	assert.ErrorIs(t, c.Start(context.Background()), ErrAlreadyRunning)
	require.NoError(t, c.Close())
}

func TestConsumer_RetriesThenSucceeds(t *testing.T) {
	reader := newFakeReader(chunkMessage(1, "payload"))
	c := newConsumer(reader, testConsumerConfig(), nil)

	var attempts atomic.Int64
	c.Subscribe(TopicTranscriptChunks, func(context.Context, *Message) error {
		if attempts.Add(1) < 3 {
			return assert.AnError
		}
		return nil
	})

	require.NoError(t, c.Start(context.Background()))
	assert.Eventually(t, func() bool { return reader.committedCount() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())

	assert.Equal(t, int64(3), attempts.Load())
	m := c.GetMetrics()
	assert.Equal(t, int64(1), m.MessagesProcessed)
	assert.Equal(t, int64(2), m.MessagesRetried)
}

func TestConsumer_ExhaustedRetriesGoToDeadLetter(t *testing.T) {
	reader := newFakeReader(chunkMessage(5, "poison"))
	cfg := testConsumerConfig()
	cfg.Retry.DeadLetterTopic = TopicTranscriptDeadLetter

	dlWriter := &fakeWriter{}
	c := newConsumer(reader, cfg, nil)
	c.deadLetter = newTestProducer(dlWriter)

	var attempts atomic.Int64
	c.Subscribe(TopicTranscriptChunks, func(context.Context, *Message) error {
		attempts.Add(1)
		return assert.AnError
	})

	require.NoError(t, c.Start(context.Background()))
	assert.Eventually(t, func() bool { return reader.committedCount() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())

	// One initial attempt plus two retries.
	assert.Equal(t, int64(3), attempts.Load())

	dlMsgs := dlWriter.messages()
	require.Len(t, dlMsgs, 1)
	assert.Equal(t, TopicTranscriptDeadLetter, dlMsgs[0].Topic)
	assert.Equal(t, []byte("poison"), dlMsgs[0].Value)

	headers := map[string]string{}
	for _, h := range dlMsgs[0].Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, TopicTranscriptChunks, headers["original_topic"])
	assert.NotEmpty(t, headers["error_message"])
	assert.NotEmpty(t, headers["failed_at"])

	m := c.GetMetrics()
	assert.Equal(t, int64(1), m.MessagesFailed)
	assert.Equal(t, int64(1), m.MessagesDeadLettered)
}

func TestConsumer_SerializationErrorSkipsRetries(t *testing.T) {
	reader := newFakeReader(chunkMessage(1, "not json"))
	cfg := testConsumerConfig()
	cfg.Retry.DeadLetterTopic = TopicTranscriptDeadLetter

	dlWriter := &fakeWriter{}
	c := newConsumer(reader, cfg, nil)
	c.deadLetter = newTestProducer(dlWriter)

	var attempts atomic.Int64
	c.Subscribe(TopicTranscriptChunks, func(context.Context, *Message) error {
		attempts.Add(1)
		return errors.New(errors.ErrCodeSerialization, "decode failed")
	})

	require.NoError(t, c.Start(context.Background()))
	assert.Eventually(t, func() bool { return reader.committedCount() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())

	assert.Equal(t, int64(1), attempts.Load(), "malformed payloads are not retried")
	assert.Equal(t, int64(0), c.GetMetrics().MessagesRetried)
	assert.Len(t, dlWriter.messages(), 1)
}

func TestConsumer_NoHandlerCommits(t *testing.T) {
	reader := newFakeReader(kafka.Message{Topic: "unknown.topic", Offset: 1, Value: []byte("x")})
	c := newConsumer(reader, testConsumerConfig(), nil)

	require.NoError(t, c.Start(context.Background()))
	assert.Eventually(t, func() bool { return reader.committedCount() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())
}

func TestConsumer_Unsubscribe(t *testing.T) {
	c := newConsumer(newFakeReader(), testConsumerConfig(), nil)
	c.Subscribe("t", func(context.Context, *Message) error { return nil })
	c.Unsubscribe("t")

	c.mu.RLock()
	_, ok := c.handlers["t"]
	c.mu.RUnlock()
	assert.False(t, ok)
}
