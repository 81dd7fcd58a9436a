package envelope

import "errors"

var (
	ErrKeyMaterialTooShort   = errors.New("master key material must be at least 32 bytes")
	ErrEncryptionKeyRequired = errors.New("TOTP_ENCRYPTION_KEY is required in production")
	ErrInvalidEnvelope       = errors.New("invalid encrypted secret envelope")
	ErrEncryptionFailed      = errors.New("failed to encrypt secret")
	ErrDecryptionFailed      = errors.New("failed to decrypt secret")
	ErrKeyDerivationFailed   = errors.New("failed to derive purpose-bound key")
	ErrFailedToGenerateKey   = errors.New("failed to generate key material")
)
