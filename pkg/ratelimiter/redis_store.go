package ratelimiter

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucketScript mirrors MemoryStore.Take. Times are unix milliseconds.
var tokenBucketScript = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local tokens = tonumber(ARGV[4])
local now = tonumber(ARGV[5])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'refill')
local current = tonumber(state[1])
local refill = tonumber(state[2])
if current == nil or refill == nil then
	current = capacity
	refill = now
end

local max_intervals = math.floor(capacity / rate) + 1
local intervals = math.floor((now - refill) / interval)
if intervals > max_intervals then
	intervals = max_intervals
end
if intervals > 0 then
	current = math.min(current + intervals * rate, capacity)
	refill = now
end

current = current - tokens
redis.call('HSET', KEYS[1], 'tokens', current, 'refill', refill)
redis.call('PEXPIRE', KEYS[1], interval * (max_intervals + 1))
return {current, refill + interval}
`)

// RedisStore implements Store on Redis so all replicas share buckets.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix namespaces bucket keys. Defaults to "ratelimit:".
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(rs *RedisStore) { rs.prefix = prefix }
}

// NewRedisStore creates a store backed by client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	rs := &RedisStore{
		client: client,
		prefix: "ratelimit:",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

func (rs *RedisStore) Take(ctx context.Context, key string, tokens int, config Config) (int, time.Time, error) {
	res, err := tokenBucketScript.Run(ctx, rs.client, []string{rs.prefix + key},
		config.Capacity,
		config.RefillRate,
		config.RefillInterval.Milliseconds(),
		tokens,
		rs.now().UnixMilli(),
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, ErrStoreUnavailable
	}
	return int(res[0]), time.UnixMilli(res[1]), nil
}

func (rs *RedisStore) Reset(ctx context.Context, key string) error {
	if err := rs.client.Del(ctx, rs.prefix+key).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
