package twofa_test

import (
	"testing"

	"github.com/dmitrymomot/twofactor/pkg/twofa"

	"github.com/stretchr/testify/assert"
)

func TestWithTable(t *testing.T) {
	t.Parallel()

	t.Run("accepts plain and schema-qualified identifiers", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"users", "app_users", "_users2", "auth.users"} {
			assert.NotPanics(t, func() {
				twofa.WithTable(name)(&twofa.PostgresStore{})
			}, "table name %q", name)
		}
	})

	t.Run("rejects names that cannot be interpolated safely", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{
			"users; DROP TABLE users",
			`users"`,
			"users users",
			"1users",
			"a.b.c",
			"users--",
		} {
			assert.Panics(t, func() {
				twofa.WithTable(name)(&twofa.PostgresStore{})
			}, "table name %q", name)
		}
	})

	t.Run("empty name keeps the default", func(t *testing.T) {
		t.Parallel()
		assert.NotPanics(t, func() {
			twofa.WithTable("")(&twofa.PostgresStore{})
		})
	})
}
