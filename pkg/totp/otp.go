package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pquerna/otp"
)

const (
	DefaultDigits     = 6      // Standard 6-digit TOTP codes
	DefaultPeriod     = 30     // 30-second validity window (RFC 6238 standard)
	DefaultAlgorithm  = "SHA1" // HMAC-SHA1 algorithm (RFC 6238 standard)
	DefaultSkew       = 1      // one step either side absorbs clock drift
	DefaultSecretSize = 20     // 160-bit secret (RFC 4226 recommendation)
	MinSecretSize     = 16

	manualEntryGroup = 4
)

var (
	// ValidateSecretKeyRegex ensures Base32 format: uppercase A-Z, digits 2-7, optional padding
	ValidateSecretKeyRegex = regexp.MustCompile("^[A-Z2-7]+=*$")

	// ValidateCodeRegex matches a fixed-width code; leading zeros are significant.
	ValidateCodeRegex = regexp.MustCompile(fmt.Sprintf(`^[0-9]{%d}$`, DefaultDigits))

	b32 = base32.StdEncoding.WithPadding(base32.NoPadding)
)

// TOTPParams contains the parameters for TOTP URI generation
type TOTPParams struct {
	Secret      string // Base32-encoded TOTP secret key (required)
	AccountName string // User identifier like email (required)
	Issuer      string // Service name displayed in authenticator apps (required)
	Algorithm   string // HMAC algorithm (optional, defaults to SHA1)
	Digits      int    // Number of digits in generated codes (optional, defaults to 6)
	Period      int    // Code validity period in seconds (optional, defaults to 30)
}

// Validate ensures all required TOTP parameters are present and valid
func (p TOTPParams) Validate() error {
	if p.Secret == "" {
		return ErrMissingSecret
	}
	if !ValidateSecretKeyRegex.MatchString(p.Secret) {
		return ErrInvalidSecret
	}
	if p.AccountName == "" {
		return ErrMissingAccountName
	}
	if p.Issuer == "" {
		return ErrMissingIssuer
	}
	return nil
}

// GetDefaults returns a copy with RFC 6238 standard defaults applied to zero-valued fields
func (p TOTPParams) GetDefaults() TOTPParams {
	if p.Algorithm == "" {
		p.Algorithm = DefaultAlgorithm
	}
	if p.Digits == 0 {
		p.Digits = DefaultDigits
	}
	if p.Period == 0 {
		p.Period = DefaultPeriod
	}
	return p
}

// GenerateSecretKey generates a new 160-bit Base32-encoded secret key.
func GenerateSecretKey() (string, error) {
	return GenerateSecretKeyWithSize(DefaultSecretSize)
}

// GenerateSecretKeyWithSize generates a Base32-encoded secret of size random bytes.
func GenerateSecretKeyWithSize(size int) (string, error) {
	if size < MinSecretSize {
		return "", ErrSecretTooShort
	}
	secret := make([]byte, size)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecretKey, err)
	}
	return b32.EncodeToString(secret), nil
}

// DecodeSecret normalizes a Base32 secret and returns its raw bytes.
func DecodeSecret(secret string) ([]byte, error) {
	secret = normalizeSecret(secret)
	if !ValidateSecretKeyRegex.MatchString(secret) {
		return nil, ErrInvalidSecret
	}
	key, err := b32.DecodeString(strings.TrimRight(secret, "="))
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	return key, nil
}

// ManualEntry formats the secret for typing into an authenticator app:
// upper-case groups of four characters separated by a single space.
func ManualEntry(secret string) string {
	secret = normalizeSecret(secret)
	var sb strings.Builder
	sb.Grow(len(secret) + len(secret)/manualEntryGroup)
	for i, r := range secret {
		if i > 0 && i%manualEntryGroup == 0 {
			sb.WriteByte(' ')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// ParseManualEntry reverses ManualEntry.
func ParseManualEntry(entry string) (string, error) {
	secret := normalizeSecret(entry)
	if _, err := DecodeSecret(secret); err != nil {
		return "", err
	}
	return secret, nil
}

// GetTOTPURI creates a properly encoded TOTP URI for use with authenticator apps.
// The URI format follows the Key Uri Format specification:
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func GetTOTPURI(params TOTPParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	params = params.GetDefaults()

	label := fmt.Sprintf("%s:%s",
		url.PathEscape(params.Issuer),
		url.PathEscape(params.AccountName),
	)

	query := url.Values{}
	query.Set("secret", params.Secret)
	query.Set("issuer", params.Issuer)
	query.Set("algorithm", params.Algorithm)
	query.Set("digits", strconv.Itoa(params.Digits))
	query.Set("period", strconv.Itoa(params.Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}

// ParseTOTPURI reads a provisioning URI back into its parameters.
func ParseTOTPURI(uri string) (TOTPParams, error) {
	key, err := otp.NewKeyFromURL(uri)
	if err != nil {
		return TOTPParams{}, errors.Join(ErrInvalidURI, err)
	}
	if key.Type() != "totp" {
		return TOTPParams{}, ErrInvalidURI
	}

	params := TOTPParams{
		Secret:      key.Secret(),
		AccountName: key.AccountName(),
		Issuer:      key.Issuer(),
		Algorithm:   strings.ToUpper(key.Algorithm().String()),
		Digits:      key.Digits().Length(),
		Period:      int(key.Period()),
	}
	if err := params.Validate(); err != nil {
		return TOTPParams{}, errors.Join(ErrInvalidURI, err)
	}
	return params.GetDefaults(), nil
}

// Verify checks otp against the step containing at and skew steps either side.
// The code format is checked before the secret is decoded, so malformed input never
// reaches the HMAC. Each candidate is compared in constant time.
func Verify(secret, code string, at time.Time, skew int) error {
	if !ValidateCodeRegex.MatchString(code) {
		return ErrInvalidOTP
	}

	key, err := DecodeSecret(secret)
	if err != nil {
		return err
	}

	if skew < 0 {
		skew = 0
	}

	counter := at.Unix() / DefaultPeriod
	submitted := []byte(code)
	matched := 0
	for i := -skew; i <= skew; i++ {
		expected := []byte(formatCode(GenerateHOTP(key, counter+int64(i), DefaultDigits), DefaultDigits))
		// Every window is checked so timing does not reveal which step matched.
		matched |= subtle.ConstantTimeCompare(expected, submitted)
	}
	if matched != 1 {
		return ErrCodeMismatch
	}
	return nil
}

// ValidateTOTPAt reports whether otp is valid at the given time with the default skew.
// It never returns an error: malformed secrets and codes are simply invalid.
func ValidateTOTPAt(secret, otp string, at time.Time) bool {
	return Verify(secret, otp, at, DefaultSkew) == nil
}

// ValidateTOTP validates the TOTP code provided by the user against the current time.
func ValidateTOTP(secret, otp string) bool {
	return ValidateTOTPAt(secret, otp, time.Now())
}

// GenerateTOTP generates a time-based one-time password for the current 30-second window.
func GenerateTOTP(secret string) (string, error) {
	return GenerateTOTPWithTime(secret, time.Now())
}

// GenerateTOTPWithTime generates a TOTP code for the 30-second window containing t.
func GenerateTOTPWithTime(secret string, t time.Time) (string, error) {
	key, err := DecodeSecret(secret)
	if err != nil {
		return "", err
	}
	counter := t.Unix() / DefaultPeriod
	return formatCode(GenerateHOTP(key, counter, DefaultDigits), DefaultDigits), nil
}

// GenerateHOTP implements RFC 4226 HMAC-based One-Time Password algorithm.
func GenerateHOTP(key []byte, counter int64, digits int) int {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	hash := mac.Sum(nil)

	// Dynamic truncation: last nibble is the offset, MSB cleared for a positive 31-bit value.
	offset := hash[len(hash)-1] & 0x0f
	code := binary.BigEndian.Uint32(hash[offset:offset+4]) & 0x7fffffff

	mod := uint32(1)
	for range digits {
		mod *= 10
	}
	return int(code % mod)
}

func formatCode(code, digits int) string {
	return fmt.Sprintf("%0*d", digits, code)
}

func normalizeSecret(s string) string {
	s = strings.ToUpper(s)
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' || r == '\t' || r == '\n' {
			return -1
		}
		return r
	}, s)
}
