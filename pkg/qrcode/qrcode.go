package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrEmptyContent is returned when content is empty or only whitespace.
	ErrEmptyContent = errors.New("content cannot be empty")
	// ErrFailedToGenerateQRCode is returned when the encoder fails, usually because
	// content does not fit the chosen recovery level.
	ErrFailedToGenerateQRCode = errors.New("failed to generate QR code")
)

const (
	DefaultSize   = 256
	dataURIPrefix = "data:image/png;base64,"
)

// RecoveryLevel is the share of the symbol that may be damaged and still decode.
type RecoveryLevel = skipqrcode.RecoveryLevel

const (
	Low     = skipqrcode.Low
	Medium  = skipqrcode.Medium
	High    = skipqrcode.High
	Highest = skipqrcode.Highest
)

type options struct {
	size     int
	level    RecoveryLevel
	noBorder bool
}

// Option configures QR code rendering.
type Option func(*options)

// WithSize sets the image width and height in pixels. Non-positive values keep the default.
func WithSize(px int) Option {
	return func(o *options) {
		if px > 0 {
			o.size = px
		}
	}
}

// WithRecoveryLevel sets the error correction level.
func WithRecoveryLevel(level RecoveryLevel) Option {
	return func(o *options) { o.level = level }
}

// WithoutBorder drops the quiet zone around the symbol.
func WithoutBorder() Option {
	return func(o *options) { o.noBorder = true }
}

// Generate renders content as a PNG image.
func Generate(content string, opts ...Option) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	o := options{size: DefaultSize, level: Medium}
	for _, opt := range opts {
		opt(&o)
	}

	code, err := skipqrcode.New(content, o.level)
	if err != nil {
		return nil, errors.Join(ErrFailedToGenerateQRCode, err)
	}
	code.DisableBorder = o.noBorder

	png, err := code.PNG(o.size)
	if err != nil {
		return nil, errors.Join(ErrFailedToGenerateQRCode, err)
	}
	return png, nil
}

// GenerateDataURI renders content as a base64 PNG data URI.
func GenerateDataURI(content string, opts ...Option) (string, error) {
	png, err := Generate(content, opts...)
	if err != nil {
		return "", err
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(png), nil
}
