package service

import "errors"

var (
	// ErrSelfModification indicates an administrator tried to deactivate
	// their own account or drop their own ADMIN role.
	// API layer should map this to HTTP 409 Conflict.
	ErrSelfModification = errors.New("administrators cannot revoke their own access")
)
