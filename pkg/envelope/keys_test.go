package envelope_test

import (
	"encoding/base64"
	"testing"

	"github.com/dmitrymomot/twofactor/pkg/envelope"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeKeyMaterial(t *testing.T) {
	t.Parallel()

	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i)
	}

	t.Run("base64 with padding", func(t *testing.T) {
		t.Parallel()
		got := envelope.DecodeKeyMaterial(base64.StdEncoding.EncodeToString(raw))
		assert.Equal(t, raw, got)
	})

	t.Run("base64 without padding", func(t *testing.T) {
		t.Parallel()
		got := envelope.DecodeKeyMaterial(base64.RawStdEncoding.EncodeToString(raw))
		assert.Equal(t, raw, got)
	})

	t.Run("surrounding whitespace is trimmed", func(t *testing.T) {
		t.Parallel()
		got := envelope.DecodeKeyMaterial("  " + base64.StdEncoding.EncodeToString(raw) + "\n")
		assert.Equal(t, raw, got)
	})

	t.Run("non-base64 passphrase kept as raw bytes", func(t *testing.T) {
		t.Parallel()
		passphrase := "correct horse battery staple but much longer!"
		got := envelope.DecodeKeyMaterial(passphrase)
		assert.Equal(t, []byte(passphrase), got)
	})
}

func TestGenerateEncodedKeyMaterial(t *testing.T) {
	t.Parallel()

	encoded, err := envelope.GenerateEncodedKeyMaterial()
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Len(t, decoded, envelope.KeySize)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     envelope.Config
		wantErr error
	}{
		{
			name:    "missing key in production",
			cfg:     envelope.Config{AppEnv: "production"},
			wantErr: envelope.ErrEncryptionKeyRequired,
		},
		{
			name:    "missing key in prod alias",
			cfg:     envelope.Config{AppEnv: "prod"},
			wantErr: envelope.ErrEncryptionKeyRequired,
		},
		{
			name: "missing key tolerated in development",
			cfg:  envelope.Config{AppEnv: "development"},
		},
		{
			name: "key present in production",
			cfg:  envelope.Config{AppEnv: "production", EncryptionKey: "c2VjcmV0"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
