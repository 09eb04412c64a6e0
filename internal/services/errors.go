package services

import "errors"

// Domain error taxonomy. Services wrap these with context via fmt.Errorf and
// the HTTP layer maps them to status codes with errors.Is. Anything that is
// not one of these surfaces as a generic server error.
var (
	// ErrNotFound signals that a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden signals an authenticated caller acting on another user's
	// resource or lacking the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict signals a uniqueness violation: email or page path already
	// in use, or a social identity mismatch.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized signals bad credentials, a missing or invalid token, or
	// an inactive account.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrBadRequest signals a request that is well-formed but semantically
	// invalid, such as a password change without the current password.
	ErrBadRequest = errors.New("bad request")
)
