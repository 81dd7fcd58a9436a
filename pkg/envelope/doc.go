// Package envelope encrypts TOTP secrets for storage at rest using a
// versioned, self-describing AEAD envelope.
//
// The wire format is ASCII text with base64url-encoded (unpadded) segments:
//
//	v1.<iv>.<tag>.<ciphertext>
//
// Encryption is AES-256-GCM with a fresh 96-bit IV per call and a 128-bit
// authentication tag. The version prefix allows a future key rotation or
// algorithm change to coexist with previously stored records.
//
// The AES key is never the raw master key material. A Codec derives
// purpose-bound keys through HKDF-SHA256, binding the algorithm label and a
// purpose context string into the derivation, so keys used for different
// purposes in the same system cannot be confused or reused. The same
// mechanism hands the recovery-code package its dedicated HMAC key via
// Codec.DeriveKey(PurposeRecoveryCode).
//
// # Usage
//
//	cfg, err := envelope.LoadConfig()
//	if err != nil {
//		log.Fatal(err) // missing key material is fatal in production
//	}
//	codec, err := envelope.NewFromConfig(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	enc, err := codec.Encrypt(secret)
//	// store enc ...
//	secret, err = codec.Decrypt(enc)
//
// # Error Handling
//
// Sentinel errors (ErrInvalidEnvelope, ErrDecryptionFailed,
// ErrKeyMaterialTooShort, ErrEncryptionKeyRequired, ...) can be inspected
// with errors.Is; lower-level causes are attached with errors.Join.
// Decryption never returns partial plaintext: any corruption of the IV, tag,
// or ciphertext segments fails outright.
package envelope
