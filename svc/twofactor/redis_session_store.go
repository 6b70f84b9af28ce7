package twofactor

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultSessionKeyPrefix namespaces enrollment keys in Redis.
const DefaultSessionKeyPrefix = "twofactor:enrollment:"

// RedisSessionStore shares enrollment sessions across replicas. Sessions are
// JSON documents whose Redis TTL matches the enrollment expiry.
type RedisSessionStore struct {
	client redis.UniversalClient
	prefix string
}

// RedisSessionOption configures a RedisSessionStore.
type RedisSessionOption func(*RedisSessionStore)

func WithSessionKeyPrefix(prefix string) RedisSessionOption {
	return func(s *RedisSessionStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

func NewRedisSessionStore(client redis.UniversalClient, opts ...RedisSessionOption) *RedisSessionStore {
	s := &RedisSessionStore{client: client, prefix: DefaultSessionKeyPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisSessionStore) Create(ctx context.Context, e *Enrollment, ttl time.Duration) error {
	e.Revision = 1
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	ok, err := s.client.SetNX(ctx, s.key(e.ID), data, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrEnrollmentExists
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*Enrollment, error) {
	return s.get(ctx, s.client, id)
}

// Update relies on WATCH so a session changed between read and write fails
// with ErrRevisionMismatch instead of being overwritten.
func (s *RedisSessionStore) Update(ctx context.Context, e *Enrollment, ttl time.Duration) error {
	key := s.key(e.ID)
	next := *e
	next.Revision++
	data, err := json.Marshal(&next)
	if err != nil {
		return err
	}

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := s.get(ctx, tx, e.ID)
		if err != nil {
			return err
		}
		if current.Revision != e.Revision {
			return ErrRevisionMismatch
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, ttl)
			return nil
		})
		return err
	}, key)

	switch {
	case errors.Is(err, redis.TxFailedErr):
		return ErrRevisionMismatch
	case err != nil:
		return err
	}
	e.Revision = next.Revision
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisSessionStore) get(ctx context.Context, c stringGetter, id string) (*Enrollment, error) {
	data, err := c.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrEnrollmentNotFound
	}
	if err != nil {
		return nil, err
	}
	var e Enrollment
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *RedisSessionStore) key(id string) string {
	return s.prefix + id
}
