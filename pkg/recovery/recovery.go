package recovery

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
)

const (
	// Alphabet excludes visually ambiguous characters (0/O, 1/I/L).
	Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	codeLength = 10
	groupSize  = 5
)

var nonAlphanumericRegex = regexp.MustCompile(`[^A-Z0-9]`)

// Normalize strips formatting from a user-entered code: whitespace, hyphens,
// and case differences all hash identically.
func Normalize(code string) string {
	return nonAlphanumericRegex.ReplaceAllString(strings.ToUpper(strings.TrimSpace(code)), "")
}

// Generate produces n cryptographically random, human-transcribable codes.
func Generate(n int) ([]string, error) {
	if n < 1 {
		return nil, ErrInvalidCodeCount
	}

	codes := make([]string, n)
	for i := 0; i < n; i++ {
		code, err := generateCode()
		if err != nil {
			return nil, err
		}
		codes[i] = code
	}
	return codes, nil
}

func generateCode() (string, error) {
	raw := make([]byte, codeLength)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Join(ErrFailedToGenerate, err)
	}

	var b strings.Builder
	for i := 0; i < codeLength; i++ {
		// len(Alphabet) is 32, which divides 256 evenly, so the modulo
		// introduces no bias.
		b.WriteByte(Alphabet[int(raw[i])%len(Alphabet)])
	}
	code := b.String()
	return code[:groupSize] + "-" + code[groupSize:], nil
}

// Hash computes the keyed hash persisted in place of the plaintext code.
func Hash(key []byte, code string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(Normalize(code)))
	return hex.EncodeToString(mac.Sum(nil))
}

// HashAll hashes each code in order with the same key.
func HashAll(key []byte, codes []string) []string {
	hashes := make([]string, len(codes))
	for i, code := range codes {
		hashes[i] = Hash(key, code)
	}
	return hashes
}

// Consume matches a candidate code against the stored hash set. Every entry
// is compared in constant time without short-circuiting. On a match the
// returned slice is the set with exactly that hash removed and matched is
// true; otherwise the original set comes back unchanged.
func Consume(key []byte, candidate string, hashes []string) (remaining []string, matched bool) {
	candidateHash := Hash(key, candidate)

	matchedIdx := -1
	for i, h := range hashes {
		if hashEquals(h, candidateHash) && matchedIdx == -1 {
			matchedIdx = i
		}
	}

	if matchedIdx == -1 {
		return hashes, false
	}

	remaining = make([]string, 0, len(hashes)-1)
	remaining = append(remaining, hashes[:matchedIdx]...)
	remaining = append(remaining, hashes[matchedIdx+1:]...)
	return remaining, true
}

// hashEquals compares two hex-encoded digests in constant time.
func hashEquals(a, b string) bool {
	left, err := hex.DecodeString(strings.ToLower(strings.TrimSpace(a)))
	if err != nil || len(left) == 0 {
		return false
	}
	right, err := hex.DecodeString(strings.ToLower(strings.TrimSpace(b)))
	if err != nil || len(right) != len(left) {
		return false
	}
	return subtle.ConstantTimeCompare(left, right) == 1
}
