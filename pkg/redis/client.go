// Package redis holds the optional process-wide Redis client backing the sync
// rate limiter. Everything here tolerates Redis being absent.
package redis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	mu     sync.RWMutex
	client *redis.Client
)

// Config holds Redis connection configuration
type Config struct {
	URL      string // redis://... or rediss://... (Upstash uses TLS)
	Password string // overrides a password embedded in URL
}

// Client returns the shared client, or nil when Redis is not in use
func Client() *redis.Client {
	mu.RLock()
	defer mu.RUnlock()
	return client
}

// Initialize connects and pings. On failure the shared client stays nil and
// callers fall back to in-memory state.
func Initialize(ctx context.Context, cfg Config) error {
	if cfg.URL == "" {
		return errors.New("redis: UPSTASH_REDIS_URL not configured")
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return fmt.Errorf("redis: invalid URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if opts.TLSConfig != nil {
		opts.TLSConfig.MinVersion = tls.VersionTLS12
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolSize = 10
	opts.MinIdleConns = 2

	c := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx).Err(); err != nil {
		_ = c.Close()
		return fmt.Errorf("redis: connection failed: %w", err)
	}

	mu.Lock()
	client = c
	mu.Unlock()
	return nil
}

// Close closes the Redis connection gracefully.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	return err
}

// HealthCheck pings Redis when it is configured
func HealthCheck(ctx context.Context) error {
	c := Client()
	if c == nil {
		return errors.New("redis: client not initialized")
	}
	return c.Ping(ctx).Err()
}
