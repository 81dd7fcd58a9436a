package qrcode_test

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/dmitrymomot/twofactor/pkg/qrcode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty content", func(t *testing.T) {
		t.Parallel()
		_, err := qrcode.Generate("", 256)
		assert.ErrorIs(t, err, qrcode.ErrEmptyContent)

		_, err = qrcode.Generate("   \t\n", 256)
		assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
	})

	t.Run("produces decodable PNG", func(t *testing.T) {
		t.Parallel()
		content := "otpauth://totp/Acme:alice@example.com?secret=ABCDEFGHIJKLMNOP&issuer=Acme"

		data, err := qrcode.Generate(content, 256)
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 256, img.Bounds().Dx())
		assert.Equal(t, 256, img.Bounds().Dy())
	})

	t.Run("falls back to default size", func(t *testing.T) {
		t.Parallel()
		data, err := qrcode.Generate("content", 0)
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, qrcode.DefaultSize, img.Bounds().Dx())
	})
}

func TestDataURI(t *testing.T) {
	t.Parallel()

	uri, err := qrcode.DataURI("otpauth://totp/Acme:alice@example.com?secret=ABCDEFGHIJKLMNOP", 128)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
	require.NoError(t, err)

	_, err = png.Decode(bytes.NewReader(raw))
	assert.NoError(t, err)
}
