package twofa

import "errors"

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrAlreadyEnabled = errors.New("two-factor authentication is already enabled")
	ErrNotEnabled     = errors.New("two-factor authentication is not enabled")
	ErrMissingSecret  = errors.New("no two-factor enrollment in progress")
	ErrMissingEmail   = errors.New("user email is required for enrollment")
	ErrInvalidCode    = errors.New("invalid authentication or recovery code")
	ErrReplayDetected = errors.New("code was already used, wait for the next one")
)
