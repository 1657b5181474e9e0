package orbitshare

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken indicates a registration attempt with an email that is
	// already in use.
	ErrEmailTaken = errors.New("user already exists")

	// ErrInvalidCredentials covers both unknown email and wrong password so
	// a login failure never reveals which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrResourceNotFound covers both "no such resource" and "not owned by
	// the caller" for mutations. Collapsing the two keeps existence from
	// leaking to non-owners.
	ErrResourceNotFound = errors.New("resource not found or unauthorized")

	// ErrValidation indicates malformed or missing input, detected before
	// any storage call.
	ErrValidation = errors.New("validation failed")
)

// invalidf wraps ErrValidation with a human-readable reason.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// StorageError represents a failure talking to the blob store.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
