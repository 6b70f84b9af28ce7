package totp_test

import (
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp"
	pqtotp "github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/totp"
)

// RFC 6238 appendix B seed "12345678901234567890" in base32.
const rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func TestGenerateSecretKey(t *testing.T) {
	t.Parallel()

	secret, err := totp.GenerateSecretKey()
	require.NoError(t, err)
	assert.Regexp(t, totp.ValidateSecretKeyRegex, secret)

	key, err := totp.DecodeSecret(secret)
	require.NoError(t, err)
	assert.Len(t, key, totp.DefaultSecretSize)

	other, err := totp.GenerateSecretKey()
	require.NoError(t, err)
	assert.NotEqual(t, secret, other)
}

func TestGenerateSecretKeyWithSize(t *testing.T) {
	t.Parallel()

	_, err := totp.GenerateSecretKeyWithSize(10)
	assert.ErrorIs(t, err, totp.ErrSecretTooShort)

	secret, err := totp.GenerateSecretKeyWithSize(32)
	require.NoError(t, err)
	key, err := totp.DecodeSecret(secret)
	require.NoError(t, err)
	assert.Len(t, key, 32)
}

func TestManualEntry(t *testing.T) {
	t.Parallel()

	t.Run("stable length for default secret", func(t *testing.T) {
		t.Parallel()
		for range 20 {
			secret, err := totp.GenerateSecretKey()
			require.NoError(t, err)
			entry := totp.ManualEntry(secret)
			assert.Len(t, entry, 39)
			assert.Len(t, strings.Fields(entry), 8)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		entry := totp.ManualEntry(rfcSecret)
		assert.Equal(t, "GEZD GNBV GY3T QOJQ GEZD GNBV GY3T QOJQ", entry)

		parsed, err := totp.ParseManualEntry(strings.ToLower(entry))
		require.NoError(t, err)
		assert.Equal(t, rfcSecret, parsed)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		t.Parallel()
		_, err := totp.ParseManualEntry("not a secret!")
		assert.ErrorIs(t, err, totp.ErrInvalidSecret)
	})
}

func TestGetTOTPURI(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		params  totp.TOTPParams
		want    string
		wantErr error
	}{
		{
			name: "Basic URI",
			params: totp.TOTPParams{
				Secret:      "ABCDEFGHIJKLMNOP",
				AccountName: "test@example.com",
				Issuer:      "TestApp",
			},
			want: "otpauth://totp/TestApp:test@example.com?algorithm=SHA1&digits=6&issuer=TestApp&period=30&secret=ABCDEFGHIJKLMNOP",
		},
		{
			name: "URI with special characters",
			params: totp.TOTPParams{
				Secret:      "ABCDEFGHIJKLMNOP",
				AccountName: "test+user@example.com",
				Issuer:      "Test & App",
			},
			want: "otpauth://totp/Test%20&%20App:test+user@example.com?algorithm=SHA1&digits=6&issuer=Test+%26+App&period=30&secret=ABCDEFGHIJKLMNOP",
		},
		{
			name:    "Missing secret",
			params:  totp.TOTPParams{AccountName: "a", Issuer: "b"},
			wantErr: totp.ErrMissingSecret,
		},
		{
			name:    "Lowercase secret",
			params:  totp.TOTPParams{Secret: "abcd", AccountName: "a", Issuer: "b"},
			wantErr: totp.ErrInvalidSecret,
		},
		{
			name:    "Missing account",
			params:  totp.TOTPParams{Secret: "ABCD", Issuer: "b"},
			wantErr: totp.ErrMissingAccountName,
		},
		{
			name:    "Missing issuer",
			params:  totp.TOTPParams{Secret: "ABCD", AccountName: "a"},
			wantErr: totp.ErrMissingIssuer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := totp.GetTOTPURI(tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTOTPURI(t *testing.T) {
	t.Parallel()

	secret, err := totp.GenerateSecretKey()
	require.NoError(t, err)

	uri, err := totp.GetTOTPURI(totp.TOTPParams{
		Secret:      secret,
		AccountName: "alice@example.com",
		Issuer:      "Acme",
	})
	require.NoError(t, err)

	params, err := totp.ParseTOTPURI(uri)
	require.NoError(t, err)
	assert.Equal(t, secret, params.Secret)
	assert.Equal(t, "alice@example.com", params.AccountName)
	assert.Equal(t, "Acme", params.Issuer)
	assert.Equal(t, totp.DefaultDigits, params.Digits)
	assert.Equal(t, totp.DefaultPeriod, params.Period)

	// manual entry and URI must carry identical secret bytes
	fromEntry, err := totp.ParseManualEntry(totp.ManualEntry(secret))
	require.NoError(t, err)
	a, err := totp.DecodeSecret(fromEntry)
	require.NoError(t, err)
	b, err := totp.DecodeSecret(params.Secret)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = totp.ParseTOTPURI("https://example.com")
	assert.ErrorIs(t, err, totp.ErrInvalidURI)

	_, err = totp.ParseTOTPURI("otpauth://hotp/Acme:alice?secret=ABCD&issuer=Acme&counter=1")
	assert.ErrorIs(t, err, totp.ErrInvalidURI)
}

func TestGenerateHOTP(t *testing.T) {
	t.Parallel()

	// RFC 4226 appendix D
	key := []byte("12345678901234567890")
	want := []int{755224, 287082, 359152, 969429, 338314, 254676, 287922, 162583, 399871, 520489}
	for counter, code := range want {
		assert.Equal(t, code, totp.GenerateHOTP(key, int64(counter), 6), "counter %d", counter)
	}
	assert.Equal(t, 94287082, totp.GenerateHOTP(key, 1, 8))
}

func TestGenerateTOTPWithTime(t *testing.T) {
	t.Parallel()

	// RFC 6238 appendix B, SHA1, truncated to 6 digits
	tests := []struct {
		unix int64
		want string
	}{
		{59, "287082"},
		{1111111109, "081804"},
		{1111111111, "050471"},
		{1234567890, "005924"},
		{2000000000, "279037"},
	}
	for _, tt := range tests {
		got, err := totp.GenerateTOTPWithTime(rfcSecret, time.Unix(tt.unix, 0))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "t=%d", tt.unix)
	}
}

func TestGenerateTOTPMatchesReferenceImplementation(t *testing.T) {
	t.Parallel()

	secret, err := totp.GenerateSecretKey()
	require.NoError(t, err)

	at := time.Now()
	want, err := pqtotp.GenerateCodeCustom(secret, at, pqtotp.ValidateOpts{
		Period:    totp.DefaultPeriod,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)

	got, err := totp.GenerateTOTPWithTime(secret, at)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestVerify(t *testing.T) {
	t.Parallel()

	at := time.Unix(59, 0) // counter 1, code 287082

	tests := []struct {
		name    string
		secret  string
		code    string
		at      time.Time
		wantErr error
	}{
		{name: "current step", secret: rfcSecret, code: "287082", at: at},
		{name: "code one step old", secret: rfcSecret, code: "287082", at: at.Add(30 * time.Second)},
		{name: "previous step", secret: rfcSecret, code: "755224", at: at},
		{name: "next step", secret: rfcSecret, code: "359152", at: at},
		{name: "two steps late", secret: rfcSecret, code: "287082", at: at.Add(90 * time.Second), wantErr: totp.ErrCodeMismatch},
		{name: "wrong code", secret: rfcSecret, code: "123456", at: at, wantErr: totp.ErrCodeMismatch},
		{name: "leading space", secret: rfcSecret, code: " 287082", at: at, wantErr: totp.ErrInvalidOTP},
		{name: "trailing newline", secret: rfcSecret, code: "287082\n", at: at, wantErr: totp.ErrInvalidOTP},
		{name: "tab and space padding", secret: rfcSecret, code: "\t287082 ", at: at, wantErr: totp.ErrInvalidOTP},
		{name: "too short", secret: rfcSecret, code: "28708", at: at, wantErr: totp.ErrInvalidOTP},
		{name: "too long", secret: rfcSecret, code: "2870820", at: at, wantErr: totp.ErrInvalidOTP},
		{name: "letters", secret: rfcSecret, code: "28708a", at: at, wantErr: totp.ErrInvalidOTP},
		{name: "unicode digits", secret: rfcSecret, code: "２８７０８２", at: at, wantErr: totp.ErrInvalidOTP},
		{name: "empty", secret: rfcSecret, code: "", at: at, wantErr: totp.ErrInvalidOTP},
		{name: "malformed secret", secret: "invalid-base32!@#$", code: "123456", at: at, wantErr: totp.ErrInvalidSecret},
		{name: "malformed secret and code", secret: "!!", code: "abc", at: at, wantErr: totp.ErrInvalidOTP},
		{name: "empty secret", secret: "", code: "123456", at: at, wantErr: totp.ErrInvalidSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := totp.Verify(tt.secret, tt.code, tt.at, totp.DefaultSkew)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, totp.ValidateTOTPAt(tt.secret, tt.code, tt.at))
				return
			}
			assert.NoError(t, err)
			assert.True(t, totp.ValidateTOTPAt(tt.secret, tt.code, tt.at))
		})
	}
}

func TestVerifyZeroSkew(t *testing.T) {
	t.Parallel()

	at := time.Unix(59, 0)
	assert.NoError(t, totp.Verify(rfcSecret, "287082", at, 0))
	assert.ErrorIs(t, totp.Verify(rfcSecret, "287082", at.Add(30*time.Second), 0), totp.ErrCodeMismatch)
}

func TestValidateTOTP(t *testing.T) {
	t.Parallel()

	secret, err := totp.GenerateSecretKey()
	require.NoError(t, err)

	now := time.Now()
	for _, offset := range []time.Duration{-30 * time.Second, 0, 30 * time.Second} {
		code, err := totp.GenerateTOTPWithTime(secret, now.Add(offset))
		require.NoError(t, err)
		assert.True(t, totp.ValidateTOTPAt(secret, code, now), "offset %s", offset)
	}

	current, err := totp.GenerateTOTP(secret)
	require.NoError(t, err)
	assert.Len(t, current, totp.DefaultDigits)
}
