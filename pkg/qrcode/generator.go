package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrEmptyContent is returned when the content is empty or whitespace only.
	ErrEmptyContent = errors.New("content cannot be empty")
	// ErrGenerationFailed is returned when the underlying encoder fails.
	ErrGenerationFailed = errors.New("failed to generate QR code")
)

// DefaultSize is the image edge length in pixels used when no size is given.
const DefaultSize = 256

// Generate encodes content as a PNG QR code of size x size pixels.
// Non-positive sizes fall back to DefaultSize.
func Generate(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = DefaultSize
	}
	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrGenerationFailed, err)
	}
	return png, nil
}

// DataURI encodes content as a base64 PNG data URI suitable for direct use
// as an <img> source during enrollment.
func DataURI(content string, size int) (string, error) {
	png, err := Generate(content, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
