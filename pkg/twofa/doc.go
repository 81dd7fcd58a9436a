// Package twofa orchestrates TOTP two-factor authentication: enrollment,
// enrollment verification, login challenges, recovery-code fallback, and
// disabling. It is composed from the envelope, totp, and recovery packages
// against a pluggable user-record store.
//
// # State machine
//
// Per user the subsystem moves through three states:
//
//	NoEnrollment → PendingEnrollment → Enabled → (NoEnrollment via Disable)
//
// Enroll creates an unverified secret and stores its encrypted envelope.
// VerifyEnrollment proves possession of the authenticator, flips the record
// to enabled, and mints the recovery-code set, the only moment plaintext
// recovery codes are ever returned. Challenge verifies a login code,
// accepting either a fresh TOTP code or an unused recovery code. Disable
// requires a passing challenge first and then returns the record to its
// initial shape.
//
// # Replay and double-spend protection
//
// A monotonically advancing last-used step is persisted with every accepted
// TOTP code; recovery codes are removed from the stored hash set on
// consumption. Both updates race under concurrent requests, so the service
// serializes every mutating operation per user through a bounded set of
// striped locks. Multi-process deployments sharing one database should add a
// conditional UPDATE in their Store implementation on top of this.
//
// # Store contract
//
// The only persistence dependency is the Store interface: fetch a user's
// two-factor record by ID and apply a partial update. MemoryStore backs
// tests and development; PostgresStore is a pgx-based implementation for a
// relational users table. The service has no other link to any database
// client.
//
// # Errors
//
// Operations fail with a stable taxonomy of sentinel errors (ErrInvalidCode,
// ErrReplayDetected, ErrNotEnabled, ErrAlreadyEnabled, ErrMissingSecret,
// ErrMissingEmail, ErrUserNotFound) so callers can tell "try again" apart
// from "already used, wait for the next code" apart from "set up 2FA first".
// No failure reveals which candidate time step a code would have matched,
// and a failed TOTP attempt is indistinguishable from a failed recovery-code
// attempt until both paths have been tried.
package twofa
