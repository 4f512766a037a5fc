package auth

import "errors"

// Token validation errors. None of these may be shown to a client verbatim.
var (
	// ErrTokenExpired indicates the token's exp claim is not in the future.
	ErrTokenExpired = errors.New("authentication token has expired")

	// ErrTokenMalformed indicates the token could not be decoded or its
	// signature does not match, i.e. it is malformed or was tampered with.
	ErrTokenMalformed = errors.New("authentication token is malformed or tampered")

	// ErrTokenUnsupported indicates the token uses a signing algorithm or
	// format this service does not accept.
	ErrTokenUnsupported = errors.New("authentication token format is not supported")
)

// Credential and identity errors.
var (
	// ErrInvalidCredentials is returned for every failed login, whatever the cause.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrIdentityNotFound indicates the token subject has no account.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrIdentityInactive indicates the account exists but may not act,
	// either because it was deactivated or because it holds no roles.
	ErrIdentityInactive = errors.New("identity is inactive")
)

// ErrSigningKey indicates unusable signing key material. It is fatal at startup.
var ErrSigningKey = errors.New("invalid token signing key")
