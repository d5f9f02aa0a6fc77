package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
	"github.com/secmon-lab/toolforge/pkg/utils/logging"
)

// DefaultCacheTTL is how long a cached embedding lives in Redis
const DefaultCacheTTL = 7 * 24 * time.Hour

// RedisClient is the subset of the go-redis client used by the cache
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

var _ RedisClient = (*redis.Client)(nil)

// Cached memoizes embeddings in Redis keyed by model and text hash.
// Cache errors degrade to a direct call to the inner service.
type Cached struct {
	inner  Service
	client RedisClient
	model  string
	ttl    time.Duration
}

var _ Service = (*Cached)(nil)

type CacheOption func(*Cached)

func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *Cached) {
		c.ttl = ttl
	}
}

// NewCached wraps inner with a Redis cache. model is part of the key so
// vectors from different models never mix.
func NewCached(inner Service, client RedisClient, model string, opts ...CacheOption) *Cached {
	c := &Cached{
		inner:  inner,
		client: client,
		model:  model,
		ttl:    DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CacheKey returns the Redis key for a text embedded by model
func CacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return "toolforge:emb:" + model + ":" + hex.EncodeToString(sum[:])
}

func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	logger := logging.From(ctx)
	key := CacheKey(c.model, text)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var vec []float32
		if err := json.Unmarshal(raw, &vec); err == nil && len(vec) > 0 {
			return vec, nil
		}
		logger.Warn("discarding corrupted cached embedding", "key", key)
	case errors.Is(err, redis.Nil):
	default:
		logger.Warn("embedding cache lookup failed", "key", key, "error", err)
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(vec)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode embedding for cache")
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.Warn("failed to store embedding in cache", "key", key, "error", err)
	}
	return vec, nil
}
