package shared

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness constraint was violated.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials indicates login failure. It is deliberately the
	// same for an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates a missing, malformed or invalid token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates a valid token without the required permission.
	ErrForbidden = errors.New("forbidden")
	// ErrExternalProvider indicates the identity mirror rejected or failed.
	ErrExternalProvider = errors.New("external identity provider error")
)
