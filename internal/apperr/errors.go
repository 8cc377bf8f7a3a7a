// Package apperr holds the sentinel errors shared by the services and the
// HTTP boundary. Callers wrap them with fmt.Errorf("...: %w") and match
// with errors.Is.
package apperr

import "errors"

var (
	// ErrConflict is returned when a unique resource already exists.
	ErrConflict = errors.New("already exists")
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password.
	ErrInvalidCredentials = errors.New("invalid username/password")
	// ErrUnauthenticated means the request carries no identity.
	ErrUnauthenticated = errors.New("unauthorized")
	// ErrVerification means a bearer token could not be verified.
	ErrVerification = errors.New("invalid token")
	// ErrForbidden means the identity may not access the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound means the resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput means the request payload failed validation.
	ErrInvalidInput = errors.New("invalid input")
)
