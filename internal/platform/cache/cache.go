// Package cache stores computed alert responses in Redis. Entries are keyed by
// a generation counter; any successful write bumps the counter, which makes
// every older entry unreachable at once.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Entry is the result of a lookup. Generation is the generation the lookup
// ran against; a value computed after a miss is stored under it, so a view
// read before an invalidation can never be served after it.
type Entry struct {
	Value      []byte
	Hit        bool
	Generation int64
}

// Store is the response cache used by the alerts handlers.
type Store interface {
	Get(ctx context.Context, key string) (Entry, error)
	Set(ctx context.Context, gen int64, key string, value []byte) error
	Invalidate(ctx context.Context) error
}

// Connect opens a Redis client for url and checks it with PING. An empty url
// returns nil: caching is disabled.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

const defaultPrefix = "safetynet:alerts"

type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: defaultPrefix, ttl: ttl}
}

func (s *RedisStore) genKey() string {
	return s.prefix + ":gen"
}

func entryKey(prefix string, gen int64, key string) string {
	return prefix + ":" + strconv.FormatInt(gen, 10) + ":" + key
}

func (s *RedisStore) generation(ctx context.Context) (int64, error) {
	gen, err := s.client.Get(ctx, s.genKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read cache generation: %w", err)
	}
	return gen, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (Entry, error) {
	gen, err := s.generation(ctx)
	if err != nil {
		return Entry{}, err
	}
	val, err := s.client.Get(ctx, entryKey(s.prefix, gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{Generation: gen}, nil
	}
	if err != nil {
		return Entry{}, fmt.Errorf("read cache entry: %w", err)
	}
	return Entry{Value: val, Hit: true, Generation: gen}, nil
}

// Set stores value under gen, the generation returned by the Get that missed.
// If an invalidation happened in between, the entry is written to a
// generation nobody reads any more and simply expires.
func (s *RedisStore) Set(ctx context.Context, gen int64, key string, value []byte) error {
	if err := s.client.Set(ctx, entryKey(s.prefix, gen, key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Invalidate moves to a new generation. Stale entries expire with their TTL.
func (s *RedisStore) Invalidate(ctx context.Context) error {
	if err := s.client.Incr(ctx, s.genKey()).Err(); err != nil {
		return fmt.Errorf("bump cache generation: %w", err)
	}
	return nil
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) (Entry, error)       { return Entry{}, nil }
func (Nop) Set(context.Context, int64, string, []byte) error { return nil }
func (Nop) Invalidate(context.Context) error                 { return nil }
