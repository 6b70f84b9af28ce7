package ratelimiter

import "time"

// Result is the bucket state after a Take.
type Result struct {
	Key       string
	Limit     int // bucket capacity
	Remaining int // negative once the key is over its limit
	ResetAt   time.Time
}

func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter is zero for allowed results and never negative.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(time.Until(r.ResetAt), 0)
}

// Err returns nil when allowed, otherwise a *LimitError matching ErrLimited.
func (r *Result) Err() error {
	if r.Allowed() {
		return nil
	}
	return &LimitError{Key: r.Key, RetryAfter: r.RetryAfter()}
}

// Config sizes a bucket. Nest it with an envPrefix to load it from the
// environment, e.g. TWOFACTOR_RATE_LIMIT_CAPACITY.
type Config struct {
	Capacity       int           `env:"CAPACITY" envDefault:"5"`
	RefillRate     int           `env:"REFILL_RATE" envDefault:"5"`
	RefillInterval time.Duration `env:"REFILL_INTERVAL" envDefault:"1m"`
}

// maxIntervals caps refill arithmetic so long idle periods cannot overflow.
func (c Config) maxIntervals() int64 {
	return int64(c.Capacity/c.RefillRate + 1)
}
