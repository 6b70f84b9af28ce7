package twofactor

import (
	"errors"

	"github.com/dmitrymomot/twofactor/pkg/qrcode"
	"github.com/dmitrymomot/twofactor/pkg/totp"
)

// Provisioner creates shared secrets and their client encodings.
type Provisioner struct {
	issuer     string
	secretSize int
	qrSize     int
}

// ProvisionerOption configures a Provisioner.
type ProvisionerOption func(*Provisioner)

// WithSecretSize sets the secret length in bytes. Values below
// totp.MinSecretSize make GenerateSecret fail.
func WithSecretSize(n int) ProvisionerOption {
	return func(p *Provisioner) { p.secretSize = n }
}

// WithQRCodeSize sets the QR image width in pixels. Non-positive values keep
// the default.
func WithQRCodeSize(px int) ProvisionerOption {
	return func(p *Provisioner) {
		if px > 0 {
			p.qrSize = px
		}
	}
}

// NewProvisioner returns a provisioner that labels URIs with issuer.
func NewProvisioner(issuer string, opts ...ProvisionerOption) *Provisioner {
	p := &Provisioner{
		issuer:     issuer,
		secretSize: totp.DefaultSecretSize,
		qrSize:     qrcode.DefaultSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GenerateSecret returns a fresh random secret for accountName. Every call
// yields a new secret, including repeated attempts for the same account.
func (p *Provisioner) GenerateSecret(accountName string) (*Secret, error) {
	key, err := totp.GenerateSecretKeyWithSize(p.secretSize)
	if err != nil {
		return nil, errors.Join(ErrProvisioningFailure, err)
	}
	return p.Render(key, accountName)
}

// Render derives the manual entry string, provisioning URI and QR code for an
// existing base32 key.
func (p *Provisioner) Render(key, accountName string) (*Secret, error) {
	uri, err := totp.GetTOTPURI(totp.TOTPParams{
		Secret:      key,
		AccountName: accountName,
		Issuer:      p.issuer,
	})
	if err != nil {
		return nil, errors.Join(ErrProvisioningFailure, err)
	}

	qr, err := qrcode.GenerateDataURI(uri, qrcode.WithSize(p.qrSize))
	if err != nil {
		return nil, errors.Join(ErrProvisioningFailure, err)
	}

	return &Secret{
		Key:         key,
		ManualEntry: totp.ManualEntry(key),
		URI:         uri,
		QRCode:      qr,
	}, nil
}
