package envelope

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the derived key length, 256 bits for AES-256-GCM.
	KeySize = 32

	// MinKeyMaterial is the minimum accepted length of decoded master key
	// material.
	MinKeyMaterial = 32
)

// Purpose labels bind derived keys to a single use. A key derived for one
// purpose is useless for any other.
const (
	PurposeTOTPSecret   = "totp-secret"
	PurposeRecoveryCode = "totp-recovery-code"
)

// DecodeKeyMaterial interprets raw key material from the environment. Values
// that round-trip through base64 are treated as base64; anything else is
// taken as raw bytes. This mirrors how deployments typically ship the key.
func DecodeKeyMaterial(raw string) []byte {
	trimmed := strings.TrimSpace(raw)
	normalized := strings.TrimRight(trimmed, "=")

	enc := base64.StdEncoding.WithPadding(base64.NoPadding)
	decoded, err := enc.DecodeString(normalized)
	if err == nil && len(decoded) > 0 && enc.EncodeToString(decoded) == normalized {
		return decoded
	}
	return []byte(trimmed)
}

// deriveKey derives a purpose-bound AES key from the master material through
// HKDF-SHA256. The info string fixes the algorithm label and purpose so the
// same material can safely back multiple key uses.
func deriveKey(material []byte, purpose string) ([]byte, error) {
	info := "twofactor:aes-256-gcm:" + purpose + ":v1"
	r := hkdf.New(sha256.New, material, nil, []byte(info))

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	return key, nil
}

// GenerateKeyMaterial creates fresh random 32-byte master key material.
func GenerateKeyMaterial() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.Join(ErrFailedToGenerateKey, err)
	}
	return key, nil
}

// GenerateEncodedKeyMaterial returns fresh master key material base64-encoded
// for direct use as the TOTP_ENCRYPTION_KEY environment variable.
func GenerateEncodedKeyMaterial() (string, error) {
	key, err := GenerateKeyMaterial()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
