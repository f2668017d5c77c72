package main

import (
	"context"

	"github.com/donovanp007/medscribe/internal/application/scribe"
	"github.com/donovanp007/medscribe/internal/infrastructure/database/redis"
	"github.com/donovanp007/medscribe/internal/infrastructure/monitoring/logging"
	"github.com/donovanp007/medscribe/pkg/types/clinical"
)

// lockedSink serialises chunk application per session across worker
// replicas.  A consumer-group rebalance can briefly hand the same partition
// to two workers; the session lock keeps chunk order intact through it.
type lockedSink struct {
	service *scribe.Service
	client  *redis.Client
	logger  logging.Logger
}

func (s *lockedSink) AddTranscriptChunk(ctx context.Context, chunk clinical.TranscriptChunk) error {
	if chunk.SessionID == "" {
		// Let the service reject it; there is nothing to lock on.
		return s.service.AddTranscriptChunk(ctx, chunk)
	}

	lock := redis.NewSessionLock(s.client, chunk.SessionID, s.logger)
	if err := lock.Lock(ctx); err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(ctx); err != nil {
			s.logger.Warn("session lock release failed",
				logging.String("session_id", chunk.SessionID), logging.Err(err))
		}
	}()

	return s.service.AddTranscriptChunk(ctx, chunk)
}
