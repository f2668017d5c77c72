package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/donovanp007/medscribe/internal/infrastructure/monitoring/logging"
	"github.com/donovanp007/medscribe/pkg/errors"
)

var (
	ErrLockNotAcquired = errors.New(errors.ErrCodeConflict, "failed to acquire lock")
	ErrLockNotHeld     = errors.New(errors.ErrCodeConflict, "lock not held by this owner")
)

// SessionLock is a Redis-backed mutex used to serialise transcript
// processing for one session across worker instances.  Chunks must be
// applied in order, so only one worker may own a session at a time.
type SessionLock struct {
	client     *Client
	key        string
	value      string
	ttl        time.Duration
	retryDelay time.Duration
	retryCount int
	logger     logging.Logger
}

// LockOption configures a SessionLock.
type LockOption func(*SessionLock)

// WithLockTTL overrides the lock expiry.
func WithLockTTL(ttl time.Duration) LockOption {
	return func(l *SessionLock) { l.ttl = ttl }
}

// WithRetry overrides the acquisition retry policy.
func WithRetry(count int, delay time.Duration) LockOption {
	return func(l *SessionLock) {
		l.retryCount = count
		l.retryDelay = delay
	}
}

// NewSessionLock builds a lock for the given session.
func NewSessionLock(client *Client, sessionID string, log logging.Logger, opts ...LockOption) *SessionLock {
	l := &SessionLock{
		client:     client,
		key:        "medscribe:lock:session:" + sessionID,
		value:      uuid.New().String(),
		ttl:        30 * time.Second,
		retryDelay: 100 * time.Millisecond,
		retryCount: 30,
		logger:     log,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// unlockScript deletes the key only when this owner still holds it.
var unlockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// extendScript refreshes the expiry only when this owner still holds it.
var extendScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("PEXPIRE", KEYS[1], ARGV[2])
	else
		return 0
	end
`)

// Lock blocks until the lock is acquired, the retry budget is exhausted, or
// the context ends.
func (l *SessionLock) Lock(ctx context.Context) error {
	for i := 0; i < l.retryCount; i++ {
		ok, err := l.client.SetNX(ctx, l.key, l.value, l.ttl).Result()
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeCacheError, "acquire session lock")
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.retryDelay):
		}
	}
	return ErrLockNotAcquired
}

// TryLock attempts a single non-blocking acquisition.
func (l *SessionLock) TryLock(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.value, l.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "acquire session lock")
	}
	return ok, nil
}

// Unlock releases the lock if this owner still holds it.
func (l *SessionLock) Unlock(ctx context.Context) error {
	res, err := unlockScript.Run(ctx, l.client.Underlying(), []string{l.key}, l.value).Result()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "release session lock")
	}
	if res.(int64) == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// Extend refreshes the expiry while long chunk processing is in flight.
func (l *SessionLock) Extend(ctx context.Context, ttl time.Duration) (bool, error) {
	res, err := extendScript.Run(ctx, l.client.Underlying(), []string{l.key}, l.value, ttl.Milliseconds()).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "extend session lock")
	}
	return res.(int64) == 1, nil
}
