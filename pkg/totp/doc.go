// Package totp implements the time-based one-time password algorithm used
// for two-factor authentication: secret generation, provisioning-URI
// construction for authenticator apps, and time-windowed code verification
// with replay protection.
//
// Codes are the standard 6-digit, 30-second, HMAC-SHA1 construction of
// RFC 4226 and RFC 6238 for broad authenticator-app compatibility.
//
// # Verification and replay
//
// Verify scans a ±1 time-step window around the current step so codes remain
// valid through modest clock skew. The caller supplies the last accepted
// step for the secret; a code matching at or below that step is rejected
// with ReasonReplay, and on acceptance the caller must persist
// Result.MatchedStep as the new last-used step before treating the
// authentication as complete. That persisted, never-decreasing step is the
// sole replay defense, so the read-verify-write around it has to be
// serialized per user by the caller.
//
//	result, err := totp.Verify(secret, code, lastUsedStep, time.Now())
//	if err != nil { ... }
//	if !result.Valid { ... } // result.Reason says why
//	// persist result.MatchedStep, then grant access
//
// # Usage
//
//	secret, _ := totp.GenerateSecret()
//	uri, _ := totp.ProvisioningURI(totp.Params{
//		Secret:      secret,
//		AccountName: "alice@example.com",
//		Issuer:      "Acme",
//	})
//	// render uri as a QR code for enrollment
package totp
