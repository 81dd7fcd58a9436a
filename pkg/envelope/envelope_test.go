package envelope_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/dmitrymomot/twofactor/pkg/envelope"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T) *envelope.Codec {
	t.Helper()
	material, err := envelope.GenerateKeyMaterial()
	require.NoError(t, err)
	codec, err := envelope.New(material)
	require.NoError(t, err)
	return codec
}

// mutateSegment decodes the given envelope segment, flips one byte, and
// re-encodes it so the result is still valid base64url.
func mutateSegment(t *testing.T, enc string, idx int) string {
	t.Helper()
	parts := strings.Split(enc, ".")
	require.Len(t, parts, 4)

	raw, err := base64.RawURLEncoding.DecodeString(parts[idx])
	require.NoError(t, err)
	raw[0] ^= 0xff
	parts[idx] = base64.RawURLEncoding.EncodeToString(raw)
	return strings.Join(parts, ".")
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("rejects short key material", func(t *testing.T) {
		t.Parallel()
		_, err := envelope.New([]byte("too-short"))
		assert.ErrorIs(t, err, envelope.ErrKeyMaterialTooShort)
	})

	t.Run("accepts 32 bytes", func(t *testing.T) {
		t.Parallel()
		codec, err := envelope.New(make([]byte, 32))
		require.NoError(t, err)
		assert.NotNil(t, codec)
	})
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	secrets := []string{
		"JBSWY3DPEHPK3PXP",
		"short",
		strings.Repeat("NB2W45DFOIZA", 10),
	}

	for _, secret := range secrets {
		enc, err := codec.Encrypt(secret)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(enc, "v1."))
		assert.Len(t, strings.Split(enc, "."), 4)

		dec, err := codec.Decrypt(enc)
		require.NoError(t, err)
		assert.Equal(t, secret, dec)
	}
}

func TestEncryptProducesFreshIV(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	first, err := codec.Encrypt("JBSWY3DPEHPK3PXP")
	require.NoError(t, err)
	second, err := codec.Encrypt("JBSWY3DPEHPK3PXP")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDecryptRejectsTampering(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	enc, err := codec.Encrypt("JBSWY3DPEHPK3PXP")
	require.NoError(t, err)

	t.Run("mutated iv", func(t *testing.T) {
		t.Parallel()
		_, err := codec.Decrypt(mutateSegment(t, enc, 1))
		assert.ErrorIs(t, err, envelope.ErrDecryptionFailed)
	})

	t.Run("mutated tag", func(t *testing.T) {
		t.Parallel()
		_, err := codec.Decrypt(mutateSegment(t, enc, 2))
		assert.ErrorIs(t, err, envelope.ErrDecryptionFailed)
	})

	t.Run("mutated ciphertext", func(t *testing.T) {
		t.Parallel()
		_, err := codec.Decrypt(mutateSegment(t, enc, 3))
		assert.ErrorIs(t, err, envelope.ErrDecryptionFailed)
	})
}

func TestDecryptRejectsMalformedEnvelope(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	enc, err := codec.Encrypt("JBSWY3DPEHPK3PXP")
	require.NoError(t, err)
	parts := strings.Split(enc, ".")

	tests := []struct {
		name string
		enc  string
	}{
		{"empty", ""},
		{"not an envelope", "hello world"},
		{"wrong version", "v2." + strings.Join(parts[1:], ".")},
		{"missing segment", strings.Join(parts[:3], ".")},
		{"extra segment", enc + ".extra"},
		{"invalid base64", "v1.***." + parts[2] + "." + parts[3]},
		{"short iv", "v1." + base64.RawURLEncoding.EncodeToString([]byte("short")) + "." + parts[2] + "." + parts[3]},
		{"empty ciphertext", strings.Join([]string{parts[0], parts[1], parts[2], ""}, ".")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := codec.Decrypt(tt.enc)
			assert.ErrorIs(t, err, envelope.ErrInvalidEnvelope)
		})
	}
}

func TestDecryptRequiresMatchingKey(t *testing.T) {
	t.Parallel()

	enc, err := newTestCodec(t).Encrypt("JBSWY3DPEHPK3PXP")
	require.NoError(t, err)

	_, err = newTestCodec(t).Decrypt(enc)
	assert.ErrorIs(t, err, envelope.ErrDecryptionFailed)
}

func TestDeriveKeyIsPurposeBound(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	secretKey, err := codec.DeriveKey(envelope.PurposeTOTPSecret)
	require.NoError(t, err)
	recoveryKey, err := codec.DeriveKey(envelope.PurposeRecoveryCode)
	require.NoError(t, err)

	assert.Len(t, secretKey, envelope.KeySize)
	assert.Len(t, recoveryKey, envelope.KeySize)
	assert.NotEqual(t, secretKey, recoveryKey)
}

func TestDeriveKeyIsDeterministic(t *testing.T) {
	t.Parallel()

	material := make([]byte, 32)
	first, err := envelope.New(material)
	require.NoError(t, err)
	second, err := envelope.New(material)
	require.NoError(t, err)

	a, err := first.DeriveKey(envelope.PurposeTOTPSecret)
	require.NoError(t, err)
	b, err := second.DeriveKey(envelope.PurposeTOTPSecret)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
