package twofactor

import (
	"time"

	"github.com/dmitrymomot/twofactor/pkg/ratelimiter"
)

// Config holds service tunables. Crypto settings live in totp.Config.
type Config struct {
	EnrollmentTTL time.Duration `env:"TWOFACTOR_ENROLLMENT_TTL" envDefault:"15m"`
	MaxAttempts   int           `env:"TWOFACTOR_MAX_ATTEMPTS" envDefault:"5"`
	QRCodeSize    int           `env:"TWOFACTOR_QR_SIZE" envDefault:"256"`

	// RateLimit applies per account to each of enrollment submits, login
	// checks and recovery redemptions.
	RateLimit ratelimiter.Config `envPrefix:"TWOFACTOR_RATE_LIMIT_"`
}

const (
	DefaultEnrollmentTTL = 15 * time.Minute
	DefaultMaxAttempts   = 5
)

// RecoveryCodeCount is the fixed size of every recovery code set.
const RecoveryCodeCount = 6
