package ratelimiter

import (
	"context"
	"time"
)

// Store holds one token bucket per key. Implementations must refill and take
// atomically, since replicas share keys such as "twofactor:verify:<account>".
type Store interface {
	// Take refills the bucket for elapsed intervals and removes n tokens.
	// n == 0 only reports the balance. A negative balance means denied;
	// resetAt is when the next refill lands.
	Take(ctx context.Context, key string, n int, config Config) (balance int, resetAt time.Time, err error)

	// Reset forgets key, so its next Take starts from a full bucket.
	Reset(ctx context.Context, key string) error
}
