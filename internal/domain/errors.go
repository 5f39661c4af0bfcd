package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrSessionNotFound    = errors.New("session not found")
)

// APIError is a non-2xx response from the remote API, with the
// human-readable message extracted from the error body when one exists.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// MissingKeyError reports a required key absent from an overview document.
// One missing key voids all four extracts; callers fall back to empty tables.
type MissingKeyError struct {
	Path string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("overview document: required key %q is missing or malformed", e.Path)
}
