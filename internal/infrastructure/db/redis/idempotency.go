package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adboard/board-api/internal/core/domain"
)

const (
	DefaultIdempotencyTTL = 24 * time.Hour

	// pendingTTL frees a reservation whose holder died before Complete.
	pendingTTL    = time.Minute
	pendingMarker = "pending"
)

// IdempotencyStore remembers which resource an Idempotency-Key produced.
// Key format: idem:<scope>:<key>. The value is "pending" while the first
// request runs, then the resource id.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore wraps client. A non-positive ttl falls back to
// DefaultIdempotencyTTL.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Reserve claims key with SETNX. When the key is taken, the recorded id is
// returned, or domain.ErrIdempotencyInProgress while it is still pending.
func (s *IdempotencyStore) Reserve(ctx context.Context, scope, key string) (int64, bool, error) {
	k := s.key(scope, key)
	// a second round covers a pending marker that expired between SETNX and GET
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.SetNX(ctx, k, pendingMarker, pendingTTL).Result()
		if err != nil {
			return 0, false, fmt.Errorf("idempotency reserve: %w", err)
		}
		if ok {
			return 0, true, nil
		}

		v, err := s.client.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return 0, false, fmt.Errorf("idempotency reserve: %w", err)
		}
		if v == pendingMarker {
			return 0, false, domain.ErrIdempotencyInProgress
		}
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false, fmt.Errorf("idempotency reserve: corrupt value %q", v)
		}
		return id, false, nil
	}
	return 0, false, domain.ErrIdempotencyInProgress
}

// Complete records id for a reserved key for the full TTL.
func (s *IdempotencyStore) Complete(ctx context.Context, scope, key string, id int64) error {
	if err := s.client.Set(ctx, s.key(scope, key), id, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency complete: %w", err)
	}
	return nil
}

// Release drops a reservation so the client can retry with the same key.
func (s *IdempotencyStore) Release(ctx context.Context, scope, key string) error {
	if err := s.client.Del(ctx, s.key(scope, key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(scope, key string) string {
	return fmt.Sprintf("idem:%s:%s", scope, key)
}
