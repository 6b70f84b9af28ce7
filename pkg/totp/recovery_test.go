package totp_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/totp"
)

func TestGenerateRecoveryCodes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		count   int
		wantErr bool
	}{
		{name: "Generate 6 codes", count: 6},
		{name: "Generate 1 code", count: 1},
		{name: "Generate 0 codes", count: 0, wantErr: true},
		{name: "Generate negative codes", count: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			codes, err := totp.GenerateRecoveryCodes(tt.count)
			if tt.wantErr {
				assert.ErrorIs(t, err, totp.ErrInvalidRecoveryCodeCount)
				assert.Nil(t, codes)
				return
			}

			require.NoError(t, err)
			assert.Len(t, codes, tt.count)

			seen := make(map[string]bool)
			for _, code := range codes {
				assert.Regexp(t, `^[A-Z2-7]{4}-[A-Z2-7]{4}-[A-Z2-7]{4}-[A-Z2-7]{4}$`, code)
				assert.False(t, seen[code], "Duplicate code found")
				seen[code] = true
			}
		})
	}
}

func TestNormalizeRecoveryCode(t *testing.T) {
	t.Parallel()

	codes, err := totp.GenerateRecoveryCodes(1)
	require.NoError(t, err)
	code := codes[0]

	variants := []string{
		code,
		strings.ToLower(code),
		strings.ReplaceAll(code, "-", ""),
		strings.ReplaceAll(code, "-", " "),
		"  " + code + "\n",
	}
	for _, v := range variants {
		assert.Equal(t, code, totp.NormalizeRecoveryCode(v), "input %q", v)
	}
}

func TestHashRecoveryCode(t *testing.T) {
	t.Parallel()

	hash := totp.HashRecoveryCode("ABCD-EFGH-IJKL-MNOP")
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, totp.HashRecoveryCode("abcdefghijklmnop"))
	assert.NotEqual(t, hash, totp.HashRecoveryCode("ABCD-EFGH-IJKL-MNOQ"))
}

func TestVerifyRecoveryCode(t *testing.T) {
	t.Parallel()

	code := "ABCD-EFGH-IJKL-MNOP"
	hash := totp.HashRecoveryCode(code)

	tests := []struct {
		name       string
		code       string
		hashedCode string
		want       bool
	}{
		{name: "Valid code", code: code, hashedCode: hash, want: true},
		{name: "Valid code without dashes", code: "abcdefghijklmnop", hashedCode: hash, want: true},
		{name: "Different code", code: "ABCD-EFGH-IJKL-MNOQ", hashedCode: hash},
		{name: "Empty code", code: "", hashedCode: hash},
		{name: "Empty hash", code: code, hashedCode: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, totp.VerifyRecoveryCode(tt.code, tt.hashedCode))
		})
	}
}

func BenchmarkVerifyRecoveryCode(b *testing.B) {
	code := "ABCD-EFGH-IJKL-MNOP"
	hashedCode := totp.HashRecoveryCode(code)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		totp.VerifyRecoveryCode(code, hashedCode)
	}
}
