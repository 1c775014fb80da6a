// Package cache provides a Redis-backed cache for synthesized patient
// summaries. Synthesis is deterministic for a given input, so a cached
// summary keyed by the input digest is always as good as recomputing it.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/domain"
)

// SummaryCache wraps a Redis client with summary caching.
type SummaryCache struct {
	redis      *redis.Client
	defaultTTL time.Duration
}

// New creates a summary cache and verifies connectivity.
func New(config domain.CacheConfig) (*SummaryCache, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = config.PoolSize
	opts.PoolTimeout = config.PoolTimeout
	opts.MaxRetries = config.MaxRetries

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &SummaryCache{
		redis:      client,
		defaultTTL: config.DefaultTTL,
	}, nil
}

// cachedSummary wraps a summary with cache metadata.
type cachedSummary struct {
	Summary   *domain.PatientSummary `json:"summary"`
	CachedAt  time.Time              `json:"cached_at"`
	ExpiresAt time.Time              `json:"expires_at"`
}

// Key derives the cache key for a patient input: the SHA-256 digest of the
// canonical JSON encoding, so any change to the labs changes the key.
func Key(data *domain.PatientData) (string, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode patient data for cache key: %w", err)
	}
	digest := sha256.Sum256(encoded)
	return fmt.Sprintf("labsynth:summary:%x", digest), nil
}

// Get retrieves a cached summary. The second return value reports a hit;
// a miss is not an error.
func (c *SummaryCache) Get(ctx context.Context, key string) (*domain.PatientSummary, bool, error) {
	val, err := c.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached summary: %w", err)
	}

	var cached cachedSummary
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		// Corrupted entry; drop it and treat as a miss.
		c.redis.Del(ctx, key)
		return nil, false, nil
	}

	if time.Now().After(cached.ExpiresAt) {
		c.redis.Del(ctx, key)
		return nil, false, nil
	}

	return cached.Summary, true, nil
}

// Set caches a summary under the key. A zero ttl uses the default.
func (c *SummaryCache) Set(ctx context.Context, key string, summary *domain.PatientSummary, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	cached := cachedSummary{
		Summary:   summary,
		CachedAt:  time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}

	jsonData, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to marshal cached summary: %w", err)
	}

	return c.redis.Set(ctx, key, jsonData, ttl).Err()
}

// Invalidate removes all cached summaries. Called when the catalog overlay
// changes, since stale staging labels must not be served.
func (c *SummaryCache) Invalidate(ctx context.Context) error {
	iter := c.redis.Scan(ctx, 0, "labsynth:summary:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.redis.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cache entry: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache entries: %w", err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (c *SummaryCache) Close() error {
	return c.redis.Close()
}
