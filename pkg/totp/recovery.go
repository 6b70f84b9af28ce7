package totp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
)

const (
	recoveryCodeBytes = 10 // 80 bits, 16 base32 characters
	recoveryCodeGroup = 4
)

// GenerateRecoveryCodes creates count distinct backup codes formatted as XXXX-XXXX-XXXX-XXXX.
func GenerateRecoveryCodes(count int) ([]string, error) {
	if count < 1 {
		return nil, ErrInvalidRecoveryCodeCount
	}

	codes := make([]string, 0, count)
	seen := make(map[string]struct{}, count)
	for len(codes) < count {
		raw := make([]byte, recoveryCodeBytes)
		if _, err := rand.Read(raw); err != nil {
			return nil, errors.Join(ErrFailedToGenerateRecoveryCode, err)
		}
		code := formatRecoveryCode(b32.EncodeToString(raw))
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes, nil
}

// NormalizeRecoveryCode accepts user input with any case, spaces or missing dashes
// and returns the canonical form produced by GenerateRecoveryCodes.
func NormalizeRecoveryCode(code string) string {
	return formatRecoveryCode(normalizeSecret(code))
}

// HashRecoveryCode creates a SHA-256 hash of the normalized code for storage.
func HashRecoveryCode(code string) string {
	hash := sha256.Sum256([]byte(NormalizeRecoveryCode(code)))
	return hex.EncodeToString(hash[:])
}

// VerifyRecoveryCode performs constant-time comparison to prevent timing attacks.
func VerifyRecoveryCode(code, hashedCode string) bool {
	if code == "" || hashedCode == "" {
		return false
	}
	return subtle.ConstantTimeCompare(
		[]byte(HashRecoveryCode(code)),
		[]byte(hashedCode),
	) == 1
}

func formatRecoveryCode(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if i > 0 && i%recoveryCodeGroup == 0 {
			sb.WriteByte('-')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
