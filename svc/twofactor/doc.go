// Package twofactor implements TOTP two-factor enrollment and the checks that
// follow it.
//
// Enrollment is a server-side session driven by an explicit state machine:
//
//	idle -> secret_displayed -> code_submitted -> code_accepted
//	     -> recovery_codes_displayed -> confirmed
//
// A rejected code returns the session to secret_displayed with the same
// secret. Nothing about the account changes until Confirm, which writes the
// encrypted secret, the recovery code hashes and the enabled flag in one
// atomic Storage.Activate call guarded by the account version observed when
// the session was opened. A second session racing to confirm for the same
// account gets ErrPersistenceConflict.
//
// Malformed codes and wrong codes are both reported to callers as
// ErrInvalidCode; the underlying kind (ErrInvalidCodeFormat or
// ErrVerificationFailed) stays in the error chain and in the logs.
//
// Storage holds the account aggregate (see pgstore for PostgreSQL), while
// SessionStore holds enrollment sessions with revision-checked updates
// (memory or Redis).
package twofactor
