package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation error")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRepoURL = errors.New("invalid repository url")
	ErrUpstream       = errors.New("upstream error")
)

type AppError struct {
	Err     error  // underlying sentinel, checked with errors.Is
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

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

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// InvalidRepoURL returns an AppError for a repository link the project
// service could not parse into owner and repo segments.
func InvalidRepoURL(url string) *AppError {
	return &AppError{
		Err:     ErrInvalidRepoURL,
		Message: fmt.Sprintf("could not parse a GitHub repository from %q", url),
		Field:   "repoUrl",
	}
}

// Upstream returns an AppError for a failed call to an external service
// (the GitHub repository API). HTTP handlers map this to 502 Bad Gateway.
func Upstream(message string) *AppError {
	return &AppError{
		Err:     ErrUpstream,
		Message: message,
	}
}
