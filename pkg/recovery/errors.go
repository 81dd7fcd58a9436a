package recovery

import "errors"

var (
	ErrInvalidCodeCount = errors.New("invalid recovery code count, must be greater than 0")
	ErrFailedToGenerate = errors.New("failed to generate recovery code")
)
