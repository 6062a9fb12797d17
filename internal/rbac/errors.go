package rbac

import "errors"

var (
	// ErrUnauthorized is returned when no authenticated identity is present.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when a valid identity lacks the required role or capability.
	ErrForbidden = errors.New("forbidden")
)
