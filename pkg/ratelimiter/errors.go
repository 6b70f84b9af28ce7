package ratelimiter

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidConfig     = errors.New("ratelimiter: invalid config")
	ErrInvalidTokenCount = errors.New("ratelimiter: token count must be positive")
	// ErrStoreUnavailable wraps backend failures so callers can decide to fail open.
	ErrStoreUnavailable = errors.New("ratelimiter: store unavailable")
	// ErrLimited matches every *LimitError.
	ErrLimited = errors.New("ratelimiter: limit exceeded")
)

// LimitError is returned by Result.Err for a denied key.
type LimitError struct {
	Key        string
	RetryAfter time.Duration
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("ratelimiter: %q limited, retry in %s", e.Key, e.RetryAfter.Round(time.Second))
}

func (e *LimitError) Is(target error) bool {
	return target == ErrLimited
}
