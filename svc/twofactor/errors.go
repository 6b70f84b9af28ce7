package twofactor

import "errors"

var (
	// ErrInvalidCode is what callers see for any rejected code.
	ErrInvalidCode = errors.New("invalid code")
	// ErrInvalidCodeFormat means the code is not exactly six ASCII digits.
	ErrInvalidCodeFormat = errors.New("invalid code format")
	// ErrVerificationFailed means a well-formed code did not match the secret.
	ErrVerificationFailed = errors.New("verification failed")

	ErrPersistenceConflict = errors.New("concurrent two-factor enrollment detected")
	ErrIssuanceFailure     = errors.New("recovery code issuance failed")
	ErrProvisioningFailure = errors.New("secret provisioning failed")
	ErrSubmissionPending   = errors.New("code verification already in progress")

	ErrAlreadyEnabled     = errors.New("two-factor authentication already enabled")
	ErrNotEnabled         = errors.New("two-factor authentication not enabled")
	ErrTooManyAttempts    = errors.New("too many attempts")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrEnrollmentExists   = errors.New("enrollment already exists")
	ErrInvalidState       = errors.New("operation not allowed in current enrollment state")
	ErrMissingAccountID   = errors.New("account id is required")

	// ErrAccountNotFound is returned by Storage when no two-factor record exists.
	ErrAccountNotFound = errors.New("two-factor account not found")
	// ErrRevisionMismatch is returned by SessionStore.Update when the session
	// changed since it was read.
	ErrRevisionMismatch = errors.New("enrollment revision mismatch")
)
