package authz

import "errors"

var (
	// ErrUnauthenticated indicates the route requires a principal and none is attached.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden indicates the principal is known but not permitted.
	ErrForbidden = errors.New("insufficient permissions")

	// ErrInvalidRule indicates a route policy rule that cannot be compiled.
	ErrInvalidRule = errors.New("invalid route policy rule")
)
