// Package recovery creates, hashes, and single-use-consumes the backup codes
// that let a user authenticate when their TOTP device is unavailable.
//
// Codes are 10 characters from an unambiguous alphabet (no 0/O, 1/I),
// rendered as two hyphenated groups of five for easy transcription:
//
//	H4KQZ-M2R8T
//
// Plaintext codes are shown to the user exactly once at generation time;
// only keyed HMAC-SHA256 hashes are ever persisted. The codes are
// high-entropy random strings, so a fast keyed MAC is sufficient and no slow
// password hash is needed. The HMAC key is the dedicated derived key from
// envelope.Codec.DeriveKey(envelope.PurposeRecoveryCode), never the raw
// master material.
//
// Consume compares a candidate against every stored hash in constant time
// without short-circuiting, so comparison timing leaks nothing about which
// position (if any) matched. On a match it returns the stored set with that
// one hash removed; the caller persists the reduced set so the code can
// never be spent twice.
package recovery
