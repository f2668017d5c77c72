package kafka

import (
	"context"
	"encoding/json"

	"github.com/donovanp007/medscribe/internal/infrastructure/monitoring/logging"
	"github.com/donovanp007/medscribe/pkg/errors"
	"github.com/donovanp007/medscribe/pkg/types/clinical"
)

// TranscriptSink receives decoded transcript chunks.  The scribe service
// satisfies this.
type TranscriptSink interface {
	AddTranscriptChunk(ctx context.Context, chunk clinical.TranscriptChunk) error
}

// NewTranscriptHandler decodes transcript chunk messages and feeds them to
// the sink.  Malformed payloads are reported as serialization errors so the
// consumer dead-letters them without retrying.
func NewTranscriptHandler(sink TranscriptSink, log logging.Logger) MessageHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return func(ctx context.Context, msg *Message) error {
		var chunk clinical.TranscriptChunk
		if err := json.Unmarshal(msg.Value, &chunk); err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "decode transcript chunk")
		}
		if chunk.Text == "" {
			log.Debug("empty transcript chunk skipped",
				logging.String("session_id", chunk.SessionID),
				logging.Int64("sequence", chunk.Sequence))
			return nil
		}
		if err := sink.AddTranscriptChunk(ctx, chunk); err != nil {
			return err
		}
		log.Debug("transcript chunk ingested",
			logging.String("session_id", chunk.SessionID),
			logging.Int64("sequence", chunk.Sequence))
		return nil
	}
}
