package cache

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-monolith/mono"
	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "tasks:"
	defaultTTL    = 5 * time.Minute
)

// Module owns the Redis client and exposes the task-list cache. When
// REDIS_ADDR is unset the module stays disabled and hands out a no-op
// cache, so the service runs without a Redis instance.
type Module struct {
	cache     TaskCache
	client    *redis.Client
	redisAddr string
	prefix    string
	ttl       time.Duration
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new cache module configured from the environment.
func NewModule() *Module {
	return &Module{
		redisAddr: os.Getenv("REDIS_ADDR"),
		prefix:    defaultPrefix,
		ttl:       defaultTTL,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "cache"
}

// Start initializes the Redis client and creates the cache.
func (m *Module) Start(ctx context.Context) error {
	if m.redisAddr == "" {
		m.cache = Noop{}
		log.Println("[cache] REDIS_ADDR not set, caching disabled")
		return nil
	}

	m.client = redis.NewClient(&redis.Options{
		Addr:         m.redisAddr,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	m.cache = New(m.client, m.prefix, m.ttl)
	log.Printf("[cache] Connected to Redis at %s (prefix: %s, TTL: %s)", m.redisAddr, m.prefix, m.ttl)
	return nil
}

// Stop closes the Redis connection.
func (m *Module) Stop(_ context.Context) error {
	if m.client != nil {
		if err := m.client.Close(); err != nil {
			log.Printf("[cache] Error closing Redis connection: %v", err)
			return fmt.Errorf("failed to close Redis connection: %w", err)
		}
	}
	log.Println("[cache] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.client == nil {
		return mono.HealthStatus{
			Healthy: true,
			Message: "caching disabled",
		}
	}

	if err := m.client.Ping(ctx).Err(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("redis ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: m.healthDetails(),
	}
}

// healthDetails reports the Redis address plus a snapshot of the cache
// counters.
func (m *Module) healthDetails() map[string]any {
	details := map[string]any{
		"addr": m.redisAddr,
	}
	if c, ok := m.cache.(*Cache); ok {
		details["stats"] = c.GetStats()
	}
	return details
}

// Cache returns the task-list cache. Valid after Start.
func (m *Module) Cache() TaskCache {
	return m.cache
}
