package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"strings"
)

const (
	// Version is the current envelope format version prefix.
	Version = "v1"

	ivSize  = 12 // 96-bit GCM nonce
	tagSize = 16 // 128-bit GCM authentication tag
)

// Codec encrypts and decrypts secrets against keys derived from a single
// piece of master key material.
type Codec struct {
	material []byte
}

// New creates a Codec from decoded master key material. The material must be
// at least 32 bytes; shorter material is rejected rather than stretched.
func New(material []byte) (*Codec, error) {
	if len(material) < MinKeyMaterial {
		return nil, ErrKeyMaterialTooShort
	}
	m := make([]byte, len(material))
	copy(m, material)
	return &Codec{material: m}, nil
}

// NewFromConfig builds a Codec from an environment-sourced Config.
func NewFromConfig(cfg Config) (*Codec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return New(DecodeKeyMaterial(cfg.EncryptionKey))
}

// DeriveKey exposes the purpose-bound key derivation so sibling packages can
// obtain dedicated keys (e.g. the recovery-code HMAC key) from the same
// master material.
func (c *Codec) DeriveKey(purpose string) ([]byte, error) {
	return deriveKey(c.material, purpose)
}

// Encrypt seals a secret into a v1 envelope using AES-256-GCM under the
// totp-secret purpose key. A fresh random IV is generated per call.
func (c *Codec) Encrypt(secret string) (string, error) {
	aead, err := c.aead(PurposeTOTPSecret)
	if err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	sealed := aead.Seal(nil, iv, []byte(secret), nil)
	ciphertext, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	b64 := base64.RawURLEncoding
	return strings.Join([]string{
		Version,
		b64.EncodeToString(iv),
		b64.EncodeToString(tag),
		b64.EncodeToString(ciphertext),
	}, "."), nil
}

// Decrypt opens a v1 envelope. Malformed segments yield ErrInvalidEnvelope;
// an authentication failure (tampered data or wrong key) yields
// ErrDecryptionFailed. No plaintext is returned in either case.
func (c *Codec) Decrypt(enc string) (string, error) {
	iv, tag, ciphertext, err := parseEnvelope(enc)
	if err != nil {
		return "", err
	}

	aead, err := c.aead(PurposeTOTPSecret)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}

	plaintext, err := aead.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}
	return string(plaintext), nil
}

func (c *Codec) aead(purpose string) (cipher.AEAD, error) {
	key, err := deriveKey(c.material, purpose)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithTagSize(block, tagSize)
}

func parseEnvelope(enc string) (iv, tag, ciphertext []byte, err error) {
	parts := strings.Split(enc, ".")
	if len(parts) != 4 || parts[0] != Version {
		return nil, nil, nil, ErrInvalidEnvelope
	}

	b64 := base64.RawURLEncoding
	if iv, err = b64.DecodeString(parts[1]); err != nil {
		return nil, nil, nil, errors.Join(ErrInvalidEnvelope, err)
	}
	if tag, err = b64.DecodeString(parts[2]); err != nil {
		return nil, nil, nil, errors.Join(ErrInvalidEnvelope, err)
	}
	if ciphertext, err = b64.DecodeString(parts[3]); err != nil {
		return nil, nil, nil, errors.Join(ErrInvalidEnvelope, err)
	}

	if len(iv) != ivSize || len(tag) != tagSize || len(ciphertext) == 0 {
		return nil, nil, nil, ErrInvalidEnvelope
	}
	return iv, tag, ciphertext, nil
}
