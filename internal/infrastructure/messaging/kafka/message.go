package kafka

import (
	"context"
	"time"
)

// Message is a consumed record decoupled from the underlying client type.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// MessageHandler processes a single consumed message.  A nil return commits
// the offset; an error triggers the consumer's retry and dead-letter path.
type MessageHandler func(ctx context.Context, msg *Message) error

// ProducerMessage is an outbound record.
type ProducerMessage struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
	Partition int
}

// BatchPublishResult reports per-message outcomes of a batch publish.
type BatchPublishResult struct {
	Succeeded int
	Failed    int
	Errors    []BatchItemError
}

// BatchItemError identifies a failed message within a batch.  Index is -1
// when the whole batch failed with a single error.
type BatchItemError struct {
	Index int
	Topic string
	Error error
}
