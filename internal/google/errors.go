package google

import (
	"errors"
	"fmt"
)

// AuthError indicates that a bearer token could not be obtained: the
// key file is malformed, the assertion could not be signed, or the
// token endpoint rejected the exchange. Auth failures are fatal to the
// calling operation but never to the process.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("google auth: %s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is (or wraps) an AuthError.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
