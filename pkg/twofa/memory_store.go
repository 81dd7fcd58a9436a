package twofa

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore implements Store with an in-memory map. It backs unit tests
// and development setups; production deployments plug in a database-backed
// implementation such as PostgresStore.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*User
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[uuid.UUID]*User)}
}

// Put inserts or replaces a user record. Intended for seeding.
func (m *MemoryStore) Put(user *User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user.Clone()
}

// Get retrieves a copy of a user's record.
func (m *MemoryStore) Get(ctx context.Context, userID uuid.UUID) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user.Clone(), nil
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Update applies a partial update and returns a copy of the updated record.
func (m *MemoryStore) Update(ctx context.Context, userID uuid.UUID, update UserUpdate) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}

	// Pointer and slice values are copied so the stored record never aliases
	// caller memory.
	if v, ok := update.Enabled.Value(); ok {
		user.Enabled = v
	}
	if v, ok := update.SecretEnvelope.Value(); ok {
		user.SecretEnvelope = clonePtr(v)
	}
	if v, ok := update.VerifiedAt.Value(); ok {
		user.VerifiedAt = clonePtr(v)
	}
	if v, ok := update.RecoveryCodeHashes.Value(); ok {
		if v != nil {
			v = append([]string(nil), v...)
		}
		user.RecoveryCodeHashes = v
	}
	if v, ok := update.LastUsedStep.Value(); ok {
		user.LastUsedStep = clonePtr(v)
	}

	return user.Clone(), nil
}
