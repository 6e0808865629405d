// Package cache keeps the latest run report in Redis so the API can serve
// it without touching the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/talgya/psi-verify/internal/engine"
)

// ErrMiss is returned when no report is cached.
var ErrMiss = errors.New("cache miss")

// DefaultTTL bounds how long a cached report is served.
const DefaultTTL = 24 * time.Hour

// Cache stores reports under a key prefix.
type Cache struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Cache)

// WithTTL sets the expiration of cached reports. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

// New connects to Redis at address.
func New(address, password string, db int, opts ...Option) *Cache {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Cache {
	c := &Cache{
		client: client,
		prefix: "psiverify:",
		ttl:    DefaultTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) latestKey() string { return c.prefix + "report:latest" }

func (c *Cache) runKey(id string) string { return c.prefix + "report:" + id }

// Ping checks that Redis is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Put stores rep as the latest report and under its run ID.
func (c *Cache) Put(ctx context.Context, rep *engine.Report) error {
	data, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, c.latestKey(), data, c.ttl)
	pipe.Set(ctx, c.runKey(rep.RunID), data, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache report %s: %w", rep.RunID, err)
	}
	return nil
}

// Latest returns the most recently cached report.
func (c *Cache) Latest(ctx context.Context) (*engine.Report, error) {
	return c.load(ctx, c.latestKey())
}

// Get returns the cached report for a run ID.
func (c *Cache) Get(ctx context.Context, runID string) (*engine.Report, error) {
	return c.load(ctx, c.runKey(runID))
}

func (c *Cache) load(ctx context.Context, key string) (*engine.Report, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	var rep engine.Report
	if err := json.Unmarshal(val, &rep); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return &rep, nil
}

// Invalidate drops the report of runID, and the latest-report key when it
// holds that run.
func (c *Cache) Invalidate(ctx context.Context, runID string) error {
	keys := []string{c.runKey(runID)}
	latest, err := c.Latest(ctx)
	switch {
	case err == nil && latest.RunID == runID:
		keys = append(keys, c.latestKey())
	case err != nil && !errors.Is(err, ErrMiss):
		return err
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate %s: %w", runID, err)
	}
	return nil
}

// Close closes the underlying client.
func (c *Cache) Close() error {
	return c.client.Close()
}
