package gate

import "errors"

// Sentinel errors returned by Gate.Authorize.
var (
	// ErrUnauthenticated means there is no subject at all.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the subject is known but not allowed.
	ErrForbidden = errors.New("forbidden")
)
