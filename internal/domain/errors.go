package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a session or break that violates a temporal or
	// completeness rule.
	ErrValidation = errors.New("validation failed")

	// ErrAuth marks a sign-in or sign-out failure.
	ErrAuth = errors.New("authentication failed")

	// ErrStore marks a write or subscription failure in the session store.
	ErrStore = errors.New("session store failure")

	// ErrEncoding marks a proof image that could not be read or encoded.
	ErrEncoding = errors.New("proof encoding failed")
)

// ValidationError is the single reason a proposed session was rejected.
type ValidationError struct {
	Check   CheckName
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// EncodingError reports which break's proof could not be encoded.
type EncodingError struct {
	Index int
	Path  string
	Err   error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("break %d: reading proof %q: %v", e.Index+1, e.Path, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

func (e *EncodingError) Is(target error) bool {
	return target == ErrEncoding
}
