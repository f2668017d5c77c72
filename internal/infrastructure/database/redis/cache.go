package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/donovanp007/medscribe/internal/infrastructure/monitoring/logging"
	"github.com/donovanp007/medscribe/pkg/errors"
)

var (
	ErrCacheMiss       = errors.New(errors.ErrCodeNotFound, "cache miss")
	ErrSerializeFailed = errors.New(errors.ErrCodeSerialization, "cache serialization failed")
)

// nullSentinel marks a negatively cached key so repeated misses do not hit
// the loader.
const nullSentinel = "__null__"

// ─────────────────────────────────────────────────────────────────────────────
// Cache interface
// ─────────────────────────────────────────────────────────────────────────────

// Cache is the JSON object cache over Redis.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
	Ping(ctx context.Context) error
}

type cache struct {
	client       *Client
	logger       logging.Logger
	prefix       string
	defaultTTL   time.Duration
	nullCacheTTL time.Duration
	group        singleflight.Group
}

// ─────────────────────────────────────────────────────────────────────────────
// Options and construction
// ─────────────────────────────────────────────────────────────────────────────

// CacheOption configures the cache.
type CacheOption func(*cache)

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) CacheOption {
	return func(c *cache) { c.prefix = prefix }
}

// WithDefaultTTL overrides the TTL applied when Set is called with zero.
func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *cache) { c.defaultTTL = ttl }
}

// WithNullCacheTTL overrides how long negative results are cached.
func WithNullCacheTTL(ttl time.Duration) CacheOption {
	return func(c *cache) { c.nullCacheTTL = ttl }
}

// NewCache builds the cache over an open client.
func NewCache(client *Client, log logging.Logger, opts ...CacheOption) Cache {
	c := &cache{
		client:       client,
		logger:       log,
		prefix:       "medscribe:",
		defaultTTL:   5 * time.Minute,
		nullCacheTTL: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *cache) fullKey(key string) string {
	return c.prefix + key
}

// jitterTTL spreads expirations +/- 10% so a burst of writes does not
// expire in the same instant.
func (c *cache) jitterTTL(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return 0
	}
	jitter := float64(ttl) * 0.1 * (rand.Float64()*2 - 1)
	return ttl + time.Duration(jitter)
}

func (c *cache) Get(ctx context.Context, key string, dest interface{}) error {
	_, err := c.get(ctx, key, dest)
	return err
}

// get reports, alongside the usual Get result, whether the key holds the
// negative sentinel.  GetOrSet needs the distinction: a negative entry is a
// remembered absence and must not trigger the loader again.
func (c *cache) get(ctx context.Context, key string, dest interface{}) (negative bool, err error) {
	data, err := c.client.Get(ctx, c.fullKey(key)).Bytes()
	if err == redis.Nil {
		return false, ErrCacheMiss
	}
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "cache get")
	}
	if string(data) == nullSentinel {
		return true, ErrCacheMiss
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, ErrSerializeFailed.WithCause(err)
	}
	return false, nil
}

func (c *cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	data, err := json.Marshal(value)
	if err != nil {
		return ErrSerializeFailed.WithCause(err)
	}
	if err := c.client.Set(ctx, c.fullKey(key), data, c.jitterTTL(ttl)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache set")
	}
	return nil
}

func (c *cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	fullKeys := make([]string, len(keys))
	for i, k := range keys {
		fullKeys[i] = c.fullKey(k)
	}
	return c.client.Del(ctx, fullKeys...).Err()
}

func (c *cache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.fullKey(key)).Result()
	return n > 0, err
}

// GetOrSet returns the cached value, or loads it exactly once per key under
// concurrent misses and caches the result.  A nil loader result is cached
// negatively and surfaces as ErrCacheMiss.
func (c *cache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error {
	negative, err := c.get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if negative {
		return ErrCacheMiss
	}
	if !errors.IsCode(err, errors.ErrCodeNotFound) {
		return err
	}

	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		v, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		if v == nil {
			c.client.Set(ctx, c.fullKey(key), nullSentinel, c.nullCacheTTL)
			return nil, nil
		}
		if setErr := c.Set(ctx, key, v, ttl); setErr != nil {
			c.logger.Warn("cache set after load failed", logging.Err(setErr))
		}
		return v, nil
	})
	if err != nil {
		return err
	}
	if val == nil {
		return ErrCacheMiss
	}

	data, err := json.Marshal(val)
	if err != nil {
		return ErrSerializeFailed.WithCause(err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return ErrSerializeFailed.WithCause(err)
	}
	return nil
}

func (c *cache) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	var deleted int64
	var cursor uint64
	match := c.fullKey(prefix) + "*"
	for {
		keys, next, err := c.client.Scan(ctx, cursor, match, 100).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return deleted, err
			}
			deleted += int64(len(keys))
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

func (c *cache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.client.Expire(ctx, c.fullKey(key), ttl).Err()
}

func (c *cache) TTL(ctx context.Context, key string) (time.Duration, error) {
	return c.client.TTL(ctx, c.fullKey(key)).Result()
}

func (c *cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}
