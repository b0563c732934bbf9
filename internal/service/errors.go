package service

import (
	"errors"
	"strings"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrEmailTaken         = errors.New("Email already in use")
	ErrUsernameTaken      = errors.New("Username already in use")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrInvalidToken       = errors.New("Unauthorized")
	ErrUserNotFound       = errors.New("User not found")
	ErrUpstream           = errors.New("movie catalog unavailable")
)

// ValidationError junta los mensajes por campo; errors.Is(err, ErrValidation) es true.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + strings.Join(e.Messages, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
