//go:build integration

package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

// Store is a test-side view of one Redis database, used to inspect what a
// status sink wrote.
type Store struct {
	t      *testing.T
	Addr   string
	DB     int
	client *redis.Client
}

// OpenStore skips the test when no test Redis is reachable, otherwise
// flushes db and returns a handle to it. The handle is closed on cleanup.
func OpenStore(t *testing.T, db int) *Store {
	t.Helper()
	SkipIfNoRedis(t)

	s := &Store{t: t, Addr: RedisAddr(), DB: db}
	s.client = redis.NewClient(&redis.Options{Addr: s.Addr, DB: db})
	t.Cleanup(func() { s.client.Close() })

	if err := s.client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("flushing DB %d: %v", db, err)
	}
	return s
}

// Hash returns every field of the hash at key.
func (s *Store) Hash(key string) map[string]string {
	s.t.Helper()
	vals, err := s.client.HGetAll(context.Background(), key).Result()
	if err != nil {
		s.t.Fatalf("reading %s: %v", key, err)
	}
	return vals
}

// Exists reports whether key is present.
func (s *Store) Exists(key string) bool {
	s.t.Helper()
	n, err := s.client.Exists(context.Background(), key).Result()
	if err != nil {
		s.t.Fatalf("checking %s: %v", key, err)
	}
	return n > 0
}

// TTL returns the remaining lifetime of key. Negative values follow Redis:
// -1 means no expiry, -2 a missing key.
func (s *Store) TTL(key string) time.Duration {
	s.t.Helper()
	d, err := s.client.TTL(context.Background(), key).Result()
	if err != nil {
		s.t.Fatalf("reading TTL of %s: %v", key, err)
	}
	return d
}

// Keys returns the keys matching pattern.
func (s *Store) Keys(pattern string) []string {
	s.t.Helper()
	keys, err := s.client.Keys(context.Background(), pattern).Result()
	if err != nil {
		s.t.Fatalf("listing %s: %v", pattern, err)
	}
	return keys
}
