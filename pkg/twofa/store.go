package twofa

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is the per-user two-factor record the subsystem operates on.
//
// Invariants: Enabled implies SecretEnvelope and VerifiedAt are non-nil;
// RecoveryCodeHashes is meaningful only while Enabled; LastUsedStep never
// decreases across successful verifications for the same secret.
type User struct {
	ID    uuid.UUID
	Email string

	Enabled bool
	// SecretEnvelope is the encrypted TOTP secret in envelope wire format,
	// nil when no enrollment exists.
	SecretEnvelope *string
	VerifiedAt     *time.Time
	// RecoveryCodeHashes holds keyed hashes only, never plaintext codes.
	RecoveryCodeHashes []string
	LastUsedStep       *int64
}

// Clone returns a deep copy so store implementations can hand out records
// without aliasing their internal state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.SecretEnvelope != nil {
		v := *u.SecretEnvelope
		c.SecretEnvelope = &v
	}
	if u.VerifiedAt != nil {
		v := *u.VerifiedAt
		c.VerifiedAt = &v
	}
	if u.RecoveryCodeHashes != nil {
		c.RecoveryCodeHashes = append([]string(nil), u.RecoveryCodeHashes...)
	}
	if u.LastUsedStep != nil {
		v := *u.LastUsedStep
		c.LastUsedStep = &v
	}
	return &c
}

// Patch is an optional field change in a partial update: left zero it leaves
// the stored value untouched; built with Set it overwrites the value,
// including overwriting with nil to clear a nullable column.
type Patch[T any] struct {
	value T
	set   bool
}

// Set creates a Patch that assigns v.
func Set[T any](v T) Patch[T] {
	return Patch[T]{value: v, set: true}
}

// Value reports the patched value and whether the field is part of the update.
func (p Patch[T]) Value() (T, bool) {
	return p.value, p.set
}

// UserUpdate describes a partial update of a user's two-factor fields.
type UserUpdate struct {
	Enabled            Patch[bool]
	SecretEnvelope     Patch[*string]
	VerifiedAt         Patch[*time.Time]
	RecoveryCodeHashes Patch[[]string]
	LastUsedStep       Patch[*int64]
}

// Store is the user-record persistence contract, the service's only
// dependency on how or where records are stored.
type Store interface {
	// Get retrieves a user's two-factor record.
	// Returns ErrUserNotFound if the user does not exist.
	Get(ctx context.Context, userID uuid.UUID) (*User, error)

	// Update applies a partial update and returns the updated record.
	// Returns ErrUserNotFound if the user does not exist.
	Update(ctx context.Context, userID uuid.UUID, update UserUpdate) (*User, error)
}
