// Package sessioninfra provides the Redis-backed session record store.
package sessioninfra

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gatehouse-dev/gatehouse/pkg/kernel"
	"github.com/gatehouse-dev/gatehouse/pkg/session"
)

// RedisStore implements session.Store on Redis. Records carry their own
// expiry and additionally ride on the key TTL, so an idle session vanishes
// from the store without a sweeper.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore creates a Redis session store. An empty prefix defaults to
// "gatehouse:session".
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "gatehouse:session"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

var _ session.Store = (*RedisStore)(nil)

func (s *RedisStore) key(id kernel.SessionID) string {
	return s.prefix + ":" + id.String()
}

func (s *RedisStore) Save(ctx context.Context, rec *session.Record, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return session.ErrStoreUnavailable().WithCause(err)
	}
	if err := s.rdb.Set(ctx, s.key(rec.ID), data, ttl).Err(); err != nil {
		return session.ErrStoreUnavailable().WithCause(err).WithDetail("session", rec.ID.String())
	}
	return nil
}

func (s *RedisStore) Find(ctx context.Context, id kernel.SessionID) (*session.Record, error) {
	data, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, session.ErrSessionNotFound().WithDetail("session", id.String())
		}
		return nil, session.ErrStoreUnavailable().WithCause(err)
	}

	var rec session.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		// A corrupt record is indistinguishable from a revoked one to the
		// caller; treat it as gone.
		return nil, session.ErrSessionNotFound().WithDetail("session", id.String()).WithCause(err)
	}
	return &rec, nil
}

func (s *RedisStore) Delete(ctx context.Context, id kernel.SessionID) error {
	if err := s.rdb.Del(ctx, s.key(id)).Err(); err != nil {
		return session.ErrStoreUnavailable().WithCause(err)
	}
	return nil
}
