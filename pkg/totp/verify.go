package totp

import (
	"fmt"
	"regexp"
	"time"
)

// Reason classifies why verification failed.
type Reason string

const (
	// ReasonInvalid means the code matched no step in the accepted window.
	ReasonInvalid Reason = "invalid"
	// ReasonReplay means the code matched a step that was already accepted
	// for this secret.
	ReasonReplay Reason = "replay"
)

// Result is the outcome of a Verify call.
type Result struct {
	Valid bool
	// Reason is set when Valid is false.
	Reason Reason
	// MatchedStep is the time-step counter the code matched. On acceptance
	// the caller must persist it as the new last-used step before treating
	// the authentication as complete. It is also populated on replay so the
	// caller can log the collision, but must never be revealed externally.
	MatchedStep int64
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeCode strips whitespace from a user-entered code and rejects
// anything that is not exactly six digits. Returns the normalized code and
// whether it is well-formed.
func NormalizeCode(code string) (string, bool) {
	normalized := whitespaceRegex.ReplaceAllString(code, "")
	return normalized, codeRegex.MatchString(normalized)
}

// Verify checks a user-supplied code against the secret at the given time.
//
// Candidate steps current-1 .. current+1 are scanned (±30s clock-skew
// tolerance). A match at or below lastUsedStep is rejected as a replay
// without revealing that the code would otherwise have matched. lastUsedStep
// may be nil when no code has been accepted yet.
//
// A malformed user code is an invalid verification, not an error; only a
// malformed secret returns an error.
func Verify(secret, code string, lastUsedStep *int64, now time.Time) (Result, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return Result{}, err
	}

	normalized, ok := NormalizeCode(code)
	if !ok {
		return Result{Reason: ReasonInvalid}, nil
	}

	currentStep := StepAt(now)
	for i := int64(-1); i <= 1; i++ {
		candidate := currentStep + i
		if fmt.Sprintf("%06d", GenerateHOTP(key, candidate, Digits)) != normalized {
			continue
		}

		if lastUsedStep != nil && candidate <= *lastUsedStep {
			return Result{Reason: ReasonReplay, MatchedStep: candidate}, nil
		}
		return Result{Valid: true, MatchedStep: candidate}, nil
	}

	return Result{Reason: ReasonInvalid}, nil
}
