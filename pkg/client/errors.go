package client

import (
	"errors"
	"fmt"
)

// ErrorClass represents a classification of request errors.
type ErrorClass string

const (
	// ErrorClassNetwork represents transport failures and timeouts.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassNotFound represents a 404 on a by-ID fetch.
	ErrorClassNotFound ErrorClass = "not_found"

	// ErrorClassValidation represents other 4xx errors carrying a
	// structured message.
	ErrorClassValidation ErrorClass = "validation"

	// ErrorClassServer represents 5xx errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassPrecondition represents caller-side misuse detected before
	// any network I/O.
	ErrorClassPrecondition ErrorClass = "precondition"
)

// Sentinel errors for errors.Is checks.
var (
	// ErrNotFound is wrapped by 404 responses on by-ID fetches.
	ErrNotFound = errors.New("record not found")

	// ErrPrecondition is wrapped by caller-side misuse errors; these never
	// reach the network.
	ErrPrecondition = errors.New("precondition violation")
)

// APIError is a classified admin API error. The client performs zero
// automatic retries; every error surfaces unchanged to the caller.
type APIError struct {
	StatusCode int
	Class      ErrorClass
	Route      string
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("admin API %s error (status %d) on %s: %s",
			e.Class, e.StatusCode, e.Route, e.Message)
	}
	return fmt.Sprintf("admin API %s error on %s: %s", e.Class, e.Route, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Classify returns the error class of err, or an empty class for non-API
// errors.
func Classify(err error) ErrorClass {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Class
	}
	return ""
}

// IsNotFound reports whether err is a by-ID fetch miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// PreconditionViolation builds a caller-misuse error. It is raised before
// any request is made.
func PreconditionViolation(route, message string) error {
	return &APIError{
		Class:   ErrorClassPrecondition,
		Route:   route,
		Message: message,
		Err:     ErrPrecondition,
	}
}

// classifyStatus maps an HTTP status code to an error class.
func classifyStatus(status int) ErrorClass {
	switch {
	case status == 404:
		return ErrorClassNotFound
	case status >= 400 && status < 500:
		return ErrorClassValidation
	case status >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}
