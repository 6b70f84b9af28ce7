package twofactor

import (
	"errors"
	"time"

	"github.com/dmitrymomot/twofactor/pkg/totp"
)

// Verifier checks six-digit TOTP codes (SHA-1, 30s step) against a base32 secret.
type Verifier struct {
	skew int
	now  func() time.Time
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithSkew sets how many steps either side of the current one are accepted.
func WithSkew(steps int) VerifierOption {
	return func(v *Verifier) {
		if steps >= 0 {
			v.skew = steps
		}
	}
}

// WithVerifierClock replaces time.Now.
func WithVerifierClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		if now != nil {
			v.now = now
		}
	}
}

// NewVerifier accepts one step of skew by default.
func NewVerifier(opts ...VerifierOption) *Verifier {
	v := &Verifier{skew: totp.DefaultSkew, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks code at the current time. It returns ErrInvalidCodeFormat or
// ErrVerificationFailed; a malformed secret is a verification failure.
func (v *Verifier) Verify(secret, code string) error {
	return v.VerifyAt(secret, code, v.now())
}

// VerifyAt is Verify with an explicit time.
func (v *Verifier) VerifyAt(secret, code string, at time.Time) error {
	err := totp.Verify(secret, code, at, v.skew)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, totp.ErrInvalidOTP):
		return ErrInvalidCodeFormat
	default:
		return errors.Join(ErrVerificationFailed, err)
	}
}

// Valid reports whether code is accepted at time at.
func (v *Verifier) Valid(secret, code string, at time.Time) bool {
	return v.VerifyAt(secret, code, at) == nil
}

// failureReason names a verification error for logs.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCodeFormat):
		return "invalid_format"
	case errors.Is(err, totp.ErrInvalidSecret):
		return "invalid_secret"
	case errors.Is(err, ErrVerificationFailed):
		return "verification_failed"
	default:
		return "error"
	}
}
