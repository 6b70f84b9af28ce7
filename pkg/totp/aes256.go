package totp

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	AESKeySize = 32 // Required key size for AES-256 (256 bits / 8 = 32 bytes)

	// HKDF info label for the sealing key.
	sealingInfo = "twofactor/totp-sealing/v1"
)

// Cipher seals TOTP secrets for storage. The same Cipher is safe for concurrent use.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds an AES-256-GCM cipher from a 32-byte key. The AEAD key is
// derived from key with HKDF-SHA256.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != AESKeySize {
		return nil, ErrInvalidEncryptionKeyLength
	}
	derived := make([]byte, AESKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, key, nil, []byte(sealingInfo)), derived); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt seals plainText bound to owner (typically the account id).
// The nonce is prepended to the returned ciphertext.
func (c *Cipher) Encrypt(plainText, owner string) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Join(ErrFailedToEncryptSecret, err)
	}
	return c.aead.Seal(nonce, nonce, []byte(plainText), []byte(owner)), nil
}

// Decrypt opens a ciphertext produced by Encrypt for the same owner.
func (c *Cipher) Decrypt(cipherText []byte, owner string) (string, error) {
	nonceSize := c.aead.NonceSize()
	if len(cipherText) < nonceSize {
		return "", errors.Join(ErrFailedToDecryptSecret, ErrInvalidCipherTooShort)
	}
	nonce, sealed := cipherText[:nonceSize], cipherText[nonceSize:]

	plainText, err := c.aead.Open(nil, nonce, sealed, []byte(owner))
	if err != nil {
		return "", errors.Join(ErrFailedToDecryptSecret, err)
	}
	return string(plainText), nil
}

// GenerateEncryptionKey creates a new random 32-byte key suitable for AES-256 encryption.
func GenerateEncryptionKey() ([]byte, error) {
	key := make([]byte, AESKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.Join(ErrFailedToGenerateEncryptionKey, err)
	}
	return key, nil
}

// GenerateEncodedEncryptionKey returns a fresh key encoded for TOTP_ENCRYPTION_KEY.
func GenerateEncodedEncryptionKey() (string, error) {
	key, err := GenerateEncryptionKey()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// LoadEncryptionKey decodes the base64 key from the configuration.
func LoadEncryptionKey(cfg Config) ([]byte, error) {
	if cfg.EncryptionKey == "" {
		return nil, errors.Join(ErrFailedToLoadEncryptionKey, ErrEncryptionKeyNotSet)
	}

	key, err := base64.StdEncoding.DecodeString(cfg.EncryptionKey)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadEncryptionKey, err)
	}

	if len(key) != AESKeySize {
		return nil, errors.Join(ErrFailedToLoadEncryptionKey, ErrInvalidEncryptionKeyLength)
	}

	return key, nil
}
