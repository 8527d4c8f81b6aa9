// Package idempotency rejects replayed client requests using redis SetNX
// with a TTL: the first writer of a key wins, replays within the TTL are
// reported as seen. A key reserved by a request that then fails must be
// released so the client can retry.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is the subset of redis commands the store needs. *redis.Client
// satisfies it.
type Client interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type Store struct {
	rdb Client
	ttl time.Duration
}

func NewStore(rdb Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Key namespaces a client-supplied idempotency key per operation.
func (s *Store) Key(scope, key string) string {
	return fmt.Sprintf("idem:%s:%s", scope, key)
}

// Seen reserves the key and reports whether an earlier request already
// holds it. The reservation is atomic, so concurrent requests with the
// same key resolve to one winner.
func (s *Store) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, "1", s.ttl).Result()
	if err != nil {
		return false, err
	}

	return !ok, nil
}

// Release frees a reserved key after the guarded operation failed, so a
// retry with the same key is not rejected as a duplicate.
func (s *Store) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
