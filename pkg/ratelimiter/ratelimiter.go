package ratelimiter

import (
	"context"
	"fmt"
)

// RateLimiter throttles attempts per key.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
	// Reset forgives a key, typically after a successful attempt.
	Reset(ctx context.Context, key string) error
}

// Bucket is a token bucket shared by every key with the same Config.
type Bucket struct {
	store  Store
	config Config
}

func NewBucket(store Store, config Config) (*Bucket, error) {
	switch {
	case store == nil:
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	case config.Capacity <= 0:
		return nil, fmt.Errorf("%w: capacity %d", ErrInvalidConfig, config.Capacity)
	case config.RefillRate <= 0:
		return nil, fmt.Errorf("%w: refill rate %d", ErrInvalidConfig, config.RefillRate)
	case config.RefillInterval <= 0:
		return nil, fmt.Errorf("%w: refill interval %v", ErrInvalidConfig, config.RefillInterval)
	}
	return &Bucket{store: store, config: config}, nil
}

// Allow takes one token for key.
func (b *Bucket) Allow(ctx context.Context, key string) (*Result, error) {
	return b.take(ctx, key, 1)
}

// AllowN takes n tokens at once, for attempts that cost more than one.
func (b *Bucket) AllowN(ctx context.Context, key string, n int) (*Result, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTokenCount, n)
	}
	return b.take(ctx, key, n)
}

// Status reports the balance without taking a token.
func (b *Bucket) Status(ctx context.Context, key string) (*Result, error) {
	return b.take(ctx, key, 0)
}

func (b *Bucket) Reset(ctx context.Context, key string) error {
	return b.store.Reset(ctx, key)
}

func (b *Bucket) take(ctx context.Context, key string, n int) (*Result, error) {
	balance, resetAt, err := b.store.Take(ctx, key, n, b.config)
	if err != nil {
		return nil, err
	}
	return &Result{Key: key, Limit: b.config.Capacity, Remaining: balance, ResetAt: resetAt}, nil
}
