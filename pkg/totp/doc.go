// Package totp implements the primitives behind authenticator-app based two-factor
// authentication: secret generation, provisioning URIs, RFC 4226/6238 code calculation,
// time-windowed verification, single-use recovery codes and encryption of secrets at rest.
//
// # Secrets
//
// A secret is 20 random bytes (160 bits, the RFC 4226 recommendation) encoded as unpadded
// base32. The same bytes are exposed two ways: a grouped manual-entry string for users who
// cannot scan a QR code, and an otpauth:// URI for QR rendering.
//
//	secret, _ := totp.GenerateSecretKey()
//	manual := totp.ManualEntry(secret) // "JBSW Y3DP EHPK 3PXP ..."
//	uri, _ := totp.GetTOTPURI(totp.TOTPParams{
//	    Secret:      secret,
//	    AccountName: "alice@example.com",
//	    Issuer:      "Acme",
//	})
//
// # Verification
//
// Verify checks the submitted code format before touching the secret, then compares the
// code against the previous, current and next 30 second steps using a constant-time
// comparison. Callers that only need a yes/no answer use ValidateTOTPAt.
//
//	if err := totp.Verify(secret, "123456", time.Now(), totp.DefaultSkew); err != nil {
//	    // errors.Is(err, totp.ErrInvalidOTP), totp.ErrCodeMismatch, totp.ErrInvalidSecret
//	}
//
// # Recovery codes
//
// GenerateRecoveryCodes produces distinct high-entropy codes formatted as
// XXXX-XXXX-XXXX-XXXX. Only HashRecoveryCode output should be persisted.
//
// # Secrets at rest
//
// Cipher seals secrets with AES-256-GCM. The account identifier is used as additional
// authenticated data so a ciphertext copied to another account fails to open. The key is
// read from TOTP_ENCRYPTION_KEY (base64, 32 bytes).
package totp
