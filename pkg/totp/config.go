package totp

// Config holds the TOTP settings read from the environment.
type Config struct {
	EncryptionKey string `env:"TOTP_ENCRYPTION_KEY,required"`             // base64 encoded 32-byte AES key
	Issuer        string `env:"TOTP_ISSUER" envDefault:"Open Collective"` // shown in authenticator apps
	Skew          int    `env:"TOTP_SKEW" envDefault:"1"`                 // accepted steps either side of now
	SecretSize    int    `env:"TOTP_SECRET_SIZE" envDefault:"20"`         // secret length in bytes
}
