// Package ratelimiter throttles repeated attempts per key with token buckets.
//
// The two-factor service keys a bucket per account and purpose, so guessing
// codes for one account does not slow down another:
//
//	limiter, err := ratelimiter.NewBucket(ratelimiter.NewRedisStore(rdb), cfg)
//
//	res, err := limiter.Allow(ctx, "twofactor:verify:"+accountID)
//	if err == nil && !res.Allowed() {
//	    return res.Err() // *LimitError carrying RetryAfter
//	}
//	// after a correct code
//	_ = limiter.Reset(ctx, "twofactor:verify:"+accountID)
//
// A bucket holds Capacity tokens and regains RefillRate of them every
// RefillInterval. Taking more than the balance drives it negative, and the key
// stays denied until refills bring it back to zero.
//
// MemoryStore keeps buckets in process memory for a single replica or tests.
// RedisStore runs the same refill-and-take step in one Lua script, so replicas
// share one bucket per key.
package ratelimiter
