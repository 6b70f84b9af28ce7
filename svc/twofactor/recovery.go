package twofactor

import (
	"context"
	"errors"

	"github.com/dmitrymomot/twofactor/pkg/totp"
)

// RecoveryIssuer creates and redeems single-use recovery codes. Only SHA-256
// hashes reach Storage.
type RecoveryIssuer struct {
	storage Storage
}

// NewRecoveryIssuer issues sets of RecoveryCodeCount codes.
func NewRecoveryIssuer(storage Storage) *RecoveryIssuer {
	return &RecoveryIssuer{storage: storage}
}

// Generate returns a new set of distinct plain codes and their hashes.
func (r *RecoveryIssuer) Generate() (codes, hashes []string, err error) {
	codes, err = totp.GenerateRecoveryCodes(RecoveryCodeCount)
	if err != nil {
		return nil, nil, errors.Join(ErrIssuanceFailure, err)
	}
	hashes = make([]string, len(codes))
	for i, c := range codes {
		hashes[i] = totp.HashRecoveryCode(c)
	}
	return codes, hashes, nil
}

// Issue replaces the account's code set. Old codes stop working only if the
// new set was stored.
func (r *RecoveryIssuer) Issue(ctx context.Context, accountID string) ([]string, error) {
	codes, hashes, err := r.Generate()
	if err != nil {
		return nil, err
	}
	if err := r.storage.ReplaceRecoveryCodes(ctx, accountID, hashes); err != nil {
		if errors.Is(err, ErrNotEnabled) {
			return nil, err
		}
		return nil, errors.Join(ErrIssuanceFailure, err)
	}
	return codes, nil
}

// Redeem consumes code. It reports false for unknown, malformed or already
// used codes; the error is reserved for storage failures.
func (r *RecoveryIssuer) Redeem(ctx context.Context, accountID, code string) (bool, error) {
	normalized := totp.NormalizeRecoveryCode(code)
	if normalized == "" {
		return false, nil
	}
	return r.storage.ConsumeRecoveryCode(ctx, accountID, totp.HashRecoveryCode(normalized))
}
