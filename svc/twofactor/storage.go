package twofactor

import (
	"context"
	"time"
)

// Storage persists the two-factor account aggregate. Every method is a
// single atomic write per account.
type Storage interface {
	// GetAccount returns ErrAccountNotFound when two-factor was never set up.
	GetAccount(ctx context.Context, accountID string) (*Account, error)
	// Activate stores the secret, the full recovery code set and the enabled
	// flag together. It returns ErrPersistenceConflict when the account is
	// already enabled or its version differs from ExpectedVersion.
	Activate(ctx context.Context, a Activation) error
	// ReplaceRecoveryCodes swaps the whole code set or changes nothing.
	// Returns ErrNotEnabled when two-factor is off.
	ReplaceRecoveryCodes(ctx context.Context, accountID string, hashes []string) error
	// ConsumeRecoveryCode marks an unused code as used and reports whether it did.
	ConsumeRecoveryCode(ctx context.Context, accountID, hash string) (bool, error)
	// Disable clears the secret and all recovery codes. Returns ErrNotEnabled when already off.
	Disable(ctx context.Context, accountID string) error
}

// SessionStore keeps enrollment sessions until they finish or expire.
type SessionStore interface {
	Create(ctx context.Context, e *Enrollment, ttl time.Duration) error
	// Get returns ErrEnrollmentNotFound for unknown or expired sessions.
	Get(ctx context.Context, id string) (*Enrollment, error)
	// Update stores e only if the stored revision equals e.Revision, then
	// increments e.Revision. Otherwise it returns ErrRevisionMismatch.
	Update(ctx context.Context, e *Enrollment, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// Observer receives outcome counts, typically backed by Prometheus.
type Observer interface {
	EnrollmentFinished(result string)
	CodeVerified(kind, result string)
	RecoveryCodeRedeemed(result string)
}

type noopObserver struct{}

func (noopObserver) EnrollmentFinished(string)   {}
func (noopObserver) CodeVerified(string, string) {}
func (noopObserver) RecoveryCodeRedeemed(string) {}
