package redis

import (
	"context"
	"time"

	"github.com/donovanp007/medscribe/internal/infrastructure/monitoring/logging"
	"github.com/donovanp007/medscribe/pkg/errors"
	"github.com/donovanp007/medscribe/pkg/types/clinical"
)

// SnapshotStore caches session snapshots so snapshot polling does not have
// to rebuild the result on every request.  The store is write-through: the
// session layer saves after every mutation and invalidates on reset and
// close.
type SnapshotStore struct {
	cache Cache
	ttl   time.Duration
	log   logging.Logger
}

// NewSnapshotStore builds a snapshot store.  A zero ttl falls back to the
// cache default.
func NewSnapshotStore(cache Cache, ttl time.Duration, log logging.Logger) *SnapshotStore {
	return &SnapshotStore{cache: cache, ttl: ttl, log: log}
}

func snapshotKey(sessionID string) string {
	return "session:" + sessionID + ":snapshot"
}

// Save stores the snapshot for a session.
func (s *SnapshotStore) Save(ctx context.Context, sessionID string, result clinical.StreamingAnalysisResult) error {
	return s.cache.Set(ctx, snapshotKey(sessionID), result, s.ttl)
}

// Load returns the cached snapshot, or (nil, nil) on a miss.
func (s *SnapshotStore) Load(ctx context.Context, sessionID string) (*clinical.StreamingAnalysisResult, error) {
	var result clinical.StreamingAnalysisResult
	err := s.cache.Get(ctx, snapshotKey(sessionID), &result)
	if err == nil {
		return &result, nil
	}
	if errors.IsCode(err, errors.ErrCodeNotFound) {
		return nil, nil
	}
	return nil, err
}

// Invalidate drops the cached snapshot for a session.
func (s *SnapshotStore) Invalidate(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, snapshotKey(sessionID))
}
