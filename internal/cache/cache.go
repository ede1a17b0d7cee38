// Package cache stores short-lived provider responses keyed by request.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// Cache stores msgpack-encodable values with a TTL.
type Cache interface {
	// Get decodes the cached value into dst. Returns false on miss or expiry.
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	// Set stores val under key for ttl. Zero ttl means no expiry.
	Set(ctx context.Context, key string, val interface{}, ttl time.Duration) error
	Close() error
}

// SweepInterval bounds how often Memory.Set scans for expired entries.
const SweepInterval = time.Minute

// Memory is an in-process Cache. Expired entries are dropped on read and by a
// periodic sweep in Set, so keys that are never read again do not accumulate.
type Memory struct {
	mu        sync.Mutex
	m         map[string]entry
	now       func() time.Time
	nextSweep time.Time
}

type entry struct {
	b   []byte
	exp time.Time
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{m: make(map[string]entry), now: time.Now}
}

// Get implements Cache.
func (c *Memory) Get(_ context.Context, key string, dst interface{}) (bool, error) {
	c.mu.Lock()
	e, ok := c.m[key]
	if ok && !e.exp.IsZero() && c.now().After(e.exp) {
		delete(c.m, key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := msgpack.Unmarshal(e.b, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

// Set implements Cache.
func (c *Memory) Set(_ context.Context, key string, val interface{}, ttl time.Duration) error {
	b, err := msgpack.Marshal(val)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	e := entry{b: b}
	if ttl > 0 {
		e.exp = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.sweepLocked()
	c.m[key] = e
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (c *Memory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

func (c *Memory) sweepLocked() {
	now := c.now()
	if now.Before(c.nextSweep) {
		return
	}
	for k, e := range c.m {
		if !e.exp.IsZero() && now.After(e.exp) {
			delete(c.m, k)
		}
	}
	c.nextSweep = now.Add(SweepInterval)
}

// Close implements Cache.
func (c *Memory) Close() error {
	return nil
}

// Redis is a Cache backed by a Redis server.
type Redis struct {
	r       *redis.Client
	timeout time.Duration
}

// NewRedis connects to the Redis server at addr.
func NewRedis(ctx context.Context, addr string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return &Redis{r: client, timeout: 500 * time.Millisecond}, nil
}

// Get implements Cache.
func (c *Redis) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	b, err := c.r.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := msgpack.Unmarshal(b, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

// Set implements Cache.
func (c *Redis) Set(ctx context.Context, key string, val interface{}, ttl time.Duration) error {
	b, err := msgpack.Marshal(val)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.r.Set(ctx, key, b, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close implements Cache.
func (c *Redis) Close() error {
	return c.r.Close()
}

// NewAuto returns a Redis cache when addr is set, otherwise memory.
func NewAuto(ctx context.Context, addr string) (Cache, error) {
	if addr == "" {
		return NewMemory(), nil
	}
	return NewRedis(ctx, addr)
}

var (
	_ Cache = (*Memory)(nil)
	_ Cache = (*Redis)(nil)
)
