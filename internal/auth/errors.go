package auth

import (
	"errors"
	"fmt"
)

var (
	ErrNoRefreshToken = errors.New("no refresh token available")
	ErrNotConfigured  = errors.New("auth store has no server endpoint configured")
)

// AuthenticationError means the refresh-and-retry cycle could not recover the
// request: either the refresh itself failed or the retried request was still
// unauthorized. The store has already been logged out when one is returned.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }
