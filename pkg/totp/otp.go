package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base32"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	// Digits is the code length, fixed at the RFC 6238 standard 6.
	Digits = 6
	// Period is the time-step length in seconds.
	Period = 30
	// Algorithm is the HMAC algorithm advertised in provisioning URIs.
	Algorithm = "SHA1"

	secretBytes = 20 // 160-bit secret (RFC 4226 recommendation)
)

var (
	// SecretRegex validates the Base32 secret format: uppercase A-Z, digits
	// 2-7, optional trailing padding.
	SecretRegex = regexp.MustCompile("^[A-Z2-7]+=*$")

	codeRegex = regexp.MustCompile(`^\d{6}$`)
)

// Params contains the parameters for provisioning-URI generation.
type Params struct {
	Secret      string // Base32-encoded TOTP secret key (required)
	AccountName string // User identifier like email (required)
	Issuer      string // Service name displayed in authenticator apps (required)
}

// Validate ensures all required parameters are present and valid.
func (p Params) Validate() error {
	if p.Secret == "" {
		return ErrMissingSecret
	}
	if !SecretRegex.MatchString(p.Secret) {
		return ErrInvalidSecret
	}
	if p.AccountName == "" {
		return ErrMissingAccountName
	}
	if p.Issuer == "" {
		return ErrMissingIssuer
	}
	return nil
}

// GenerateSecret generates a new Base32-encoded secret key for TOTP.
func GenerateSecret() (string, error) {
	secret := make([]byte, secretBytes)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecret, err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(secret), nil
}

// ProvisioningURI creates a properly encoded otpauth:// URI for use with
// authenticator apps. The URI format follows the Key Uri Format
// specification:
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func ProvisioningURI(params Params) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	label := fmt.Sprintf("%s:%s",
		url.PathEscape(params.Issuer),
		url.PathEscape(params.AccountName),
	)

	query := url.Values{}
	query.Set("secret", params.Secret)
	query.Set("issuer", params.Issuer)
	query.Set("algorithm", Algorithm)
	query.Set("digits", fmt.Sprintf("%d", Digits))
	query.Set("period", fmt.Sprintf("%d", Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}

// GenerateHOTP implements the RFC 4226 HMAC-based one-time password
// algorithm, converting a counter value into a numeric code via HMAC-SHA1.
func GenerateHOTP(key []byte, counter int64, digits int) int {
	// Convert counter to big-endian 8-byte array (RFC 4226 requirement)
	counterBytes := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		counterBytes[i] = byte(counter & 0xff)
		counter = counter >> 8
	}

	hmacHash := hmac.New(sha1.New, key)
	hmacHash.Write(counterBytes)
	hash := hmacHash.Sum(nil)

	// Dynamic truncation (RFC 4226): last 4 bits select the offset
	offset := hash[len(hash)-1] & 0x0f
	// Extract 31-bit value (clear MSB to ensure positive number)
	code := (int(hash[offset]&0x7f) << 24) |
		(int(hash[offset+1]&0xff) << 16) |
		(int(hash[offset+2]&0xff) << 8) |
		(int(hash[offset+3] & 0xff))

	return code % int(math.Pow10(digits))
}

// GenerateCode derives the zero-padded 6-digit code for the given time-step
// counter. The secret must be a valid Base32-encoded string.
func GenerateCode(secret string, step int64) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", GenerateHOTP(key, step, Digits)), nil
}

// CodeAt generates the code for the 30-second window containing the given
// time. Useful for tests and for generating codes for specific moments.
func CodeAt(secret string, t time.Time) (string, error) {
	return GenerateCode(secret, StepAt(t))
}

// StepAt returns the time-step counter for the given time.
func StepAt(t time.Time) int64 {
	return t.UnixMilli() / (Period * 1000)
}

func decodeSecret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(strings.ToUpper(secret))
	if !SecretRegex.MatchString(secret) {
		return nil, ErrInvalidSecret
	}
	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.TrimRight(secret, "="))
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	return key, nil
}
