package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("Validation Error")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("missing token")
	ErrInvalidToken       = errors.New("invalid token")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound is used for both "the resource does not exist" and "the
// resource exists but belongs to someone else". Collapsing the two means
// a caller probing other users' ids learns nothing about what exists.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// InvalidCredentials covers both "unknown username" and "wrong password"
// during login. The message is deliberately the same for both so the
// login endpoint cannot be used to enumerate usernames.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "invalid username or password",
	}
}

// MissingToken means no bearer token was presented at all.
// HTTP handlers map this to 401 Unauthorized.
func MissingToken() *AppError {
	return &AppError{
		Err:     ErrMissingToken,
		Message: "access denied",
	}
}

// InvalidToken means a token was presented but failed verification
// (bad signature, expired, malformed). HTTP handlers map this to 400,
// matching the wire contract clients already depend on.
func InvalidToken() *AppError {
	return &AppError{
		Err:     ErrInvalidToken,
		Message: "invalid token",
	}
}
