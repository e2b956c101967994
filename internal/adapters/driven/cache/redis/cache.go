// Package redis provides a Redis-backed recommendation cache, for deployments
// where several processes share computed recommendation lists.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
	"github.com/custodia-labs/verdict-cli/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.RecommendationCache = (*Cache)(nil)

// Default configuration values.
const (
	DefaultAddr = "localhost:6379"
	KeyPrefix   = "verdict:recs:"
)

// Config holds configuration for the Redis cache.
type Config struct {
	// Addr is the Redis server address (default: localhost:6379).
	Addr string

	// DB is the Redis database number.
	DB int

	// TTL bounds how long Redis keeps an entry. Reads also check the
	// stored timestamp against the requested maximum age.
	TTL time.Duration
}

// entry is the stored value.
type entry struct {
	Recommendations []domain.Recommendation `json:"recommendations"`
	CachedAt        time.Time               `json:"cached_at"`
}

// Cache stores recommendation lists in Redis.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// New creates a cache and verifies the server is reachable.
func New(ctx context.Context, cfg Config) (*Cache, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}
	return NewWithClient(client, cfg.TTL), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl, now: time.Now}
}

// SetClock overrides the clock used for entry age.
func (c *Cache) SetClock(now func() time.Time) {
	c.now = now
}

// Get returns the cached list if it was stored less than maxAge ago.
func (c *Cache) Get(ctx context.Context, baseURL string, maxAge time.Duration) ([]domain.Recommendation, error) {
	data, err := c.client.Get(ctx, Key(baseURL)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("reading cached recommendations: %w", err)
	}
	return decodeEntry(data, c.now(), maxAge)
}

// Put stores the list, replacing any previous entry.
func (c *Cache) Put(ctx context.Context, baseURL string, recs []domain.Recommendation) error {
	data, err := encodeEntry(recs, c.now())
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, Key(baseURL), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("caching recommendations: %w", err)
	}
	return nil
}

// Close closes the client connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Key returns the Redis key for a base product URL.
func Key(baseURL string) string {
	return KeyPrefix + baseURL
}

func encodeEntry(recs []domain.Recommendation, now time.Time) ([]byte, error) {
	if recs == nil {
		recs = []domain.Recommendation{}
	}
	data, err := json.Marshal(entry{Recommendations: recs, CachedAt: now.UTC()})
	if err != nil {
		return nil, fmt.Errorf("marshalling recommendations: %w", err)
	}
	return data, nil
}

// decodeEntry returns domain.ErrCacheMiss for entries at least maxAge old.
func decodeEntry(data []byte, now time.Time, maxAge time.Duration) ([]domain.Recommendation, error) {
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshalling cached recommendations: %w", err)
	}
	if now.Sub(e.CachedAt) >= maxAge {
		return nil, domain.ErrCacheMiss
	}
	return e.Recommendations, nil
}
