package twofa_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/twofactor/pkg/twofa"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := twofa.NewMemoryStore()

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		_, err := store.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, twofa.ErrUserNotFound)
	})

	t.Run("returns an independent copy", func(t *testing.T) {
		t.Parallel()
		id := uuid.New()
		env := "v1.a.b.c"
		store.Put(&twofa.User{ID: id, Email: "a@example.com", SecretEnvelope: &env})

		first, err := store.Get(ctx, id)
		require.NoError(t, err)
		*first.SecretEnvelope = "mutated"
		first.RecoveryCodeHashes = append(first.RecoveryCodeHashes, "x")

		second, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "v1.a.b.c", *second.SecretEnvelope)
		assert.Empty(t, second.RecoveryCodeHashes)
	})
}

func TestMemoryStoreUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		store := twofa.NewMemoryStore()
		_, err := store.Update(ctx, uuid.New(), twofa.UserUpdate{Enabled: twofa.Set(true)})
		assert.ErrorIs(t, err, twofa.ErrUserNotFound)
	})

	t.Run("applies only patched fields", func(t *testing.T) {
		t.Parallel()
		store := twofa.NewMemoryStore()
		id := uuid.New()
		env := "v1.a.b.c"
		verifiedAt := time.Now()
		store.Put(&twofa.User{
			ID:                 id,
			Email:              "a@example.com",
			Enabled:            true,
			SecretEnvelope:     &env,
			VerifiedAt:         &verifiedAt,
			RecoveryCodeHashes: []string{"h1", "h2"},
		})

		updated, err := store.Update(ctx, id, twofa.UserUpdate{
			RecoveryCodeHashes: twofa.Set([]string{"h2"}),
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"h2"}, updated.RecoveryCodeHashes)
		// Untouched fields survive.
		assert.True(t, updated.Enabled)
		assert.Equal(t, env, *updated.SecretEnvelope)
		assert.NotNil(t, updated.VerifiedAt)
	})

	t.Run("clears nullable fields", func(t *testing.T) {
		t.Parallel()
		store := twofa.NewMemoryStore()
		id := uuid.New()
		env := "v1.a.b.c"
		step := int64(42)
		store.Put(&twofa.User{
			ID:                 id,
			Enabled:            true,
			SecretEnvelope:     &env,
			RecoveryCodeHashes: []string{"h1"},
			LastUsedStep:       &step,
		})

		updated, err := store.Update(ctx, id, twofa.UserUpdate{
			Enabled:            twofa.Set(false),
			SecretEnvelope:     twofa.Set[*string](nil),
			RecoveryCodeHashes: twofa.Set[[]string](nil),
			LastUsedStep:       twofa.Set[*int64](nil),
		})
		require.NoError(t, err)

		assert.False(t, updated.Enabled)
		assert.Nil(t, updated.SecretEnvelope)
		assert.Nil(t, updated.RecoveryCodeHashes)
		assert.Nil(t, updated.LastUsedStep)
	})

	t.Run("does not alias caller memory", func(t *testing.T) {
		t.Parallel()
		store := twofa.NewMemoryStore()
		id := uuid.New()
		store.Put(&twofa.User{ID: id})

		env := "v1.a.b.c"
		verifiedAt := time.Now()
		step := int64(42)
		_, err := store.Update(ctx, id, twofa.UserUpdate{
			SecretEnvelope: twofa.Set(&env),
			VerifiedAt:     twofa.Set(&verifiedAt),
			LastUsedStep:   twofa.Set(&step),
		})
		require.NoError(t, err)

		// Mutating the caller's values must not leak into the store.
		env = "mutated"
		verifiedAt = verifiedAt.Add(time.Hour)
		step = 99

		got, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "v1.a.b.c", *got.SecretEnvelope)
		assert.Equal(t, int64(42), *got.LastUsedStep)
		assert.True(t, got.VerifiedAt.Before(verifiedAt))
	})
}

func TestPatch(t *testing.T) {
	t.Parallel()

	var zero twofa.Patch[int]
	_, ok := zero.Value()
	assert.False(t, ok, "zero patch must not be part of an update")

	v, ok := twofa.Set(7).Value()
	assert.True(t, ok)
	assert.Equal(t, 7, v)
}
