// Package cache stores build fingerprints, in Redis or in memory.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "gtx:fingerprint:"

// Fingerprints records the input digest of each project's last successful
// build, keyed by project directory.
type Fingerprints interface {
	// Get returns the recorded digest. ok is false if none is recorded.
	Get(ctx context.Context, project string) (digest string, ok bool, err error)
	Set(ctx context.Context, project, digest string) error
}

// Cache wraps a Redis client.
type Cache struct {
	Client *redis.Client
	// TTL bounds how long fingerprints are kept. Zero keeps them forever.
	TTL time.Duration
}

// ParseURL validates a Redis connection URL.
func ParseURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}
	return opts, nil
}

// New creates a new cache client.
func New(ctx context.Context, url string, ttl time.Duration) (*Cache, error) {
	opts, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	c := &Cache{Client: redis.NewClient(opts), TTL: ttl}
	if err := c.HealthCheck(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("pinging cache: %w", err)
	}
	return c, nil
}

// Close shuts down the cache client.
func (c *Cache) Close() error {
	return c.Client.Close()
}

// HealthCheck verifies the cache connection is alive.
func (c *Cache) HealthCheck(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

// Get returns the fingerprint recorded for project.
func (c *Cache) Get(ctx context.Context, project string) (string, bool, error) {
	digest, err := c.Client.Get(ctx, keyPrefix+project).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading fingerprint: %w", err)
	}
	return digest, true, nil
}

// Set records the fingerprint of project.
func (c *Cache) Set(ctx context.Context, project, digest string) error {
	if err := c.Client.Set(ctx, keyPrefix+project, digest, c.TTL).Err(); err != nil {
		return fmt.Errorf("writing fingerprint: %w", err)
	}
	return nil
}

// Memory keeps fingerprints for the lifetime of the process.
type Memory struct {
	mu      sync.RWMutex
	digests map[string]string
}

// NewMemory creates an empty in-memory fingerprint store.
func NewMemory() *Memory {
	return &Memory{digests: make(map[string]string)}
}

// Get returns the fingerprint recorded for project.
func (m *Memory) Get(_ context.Context, project string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	digest, ok := m.digests[project]
	return digest, ok, nil
}

// Set records the fingerprint of project.
func (m *Memory) Set(_ context.Context, project, digest string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.digests[project] = digest
	return nil
}
