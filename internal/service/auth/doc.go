// Package auth implements authentication: verifying login credentials,
// issuing and validating signed bearer tokens, resolving the current identity
// behind a token, and carrying the resulting Principal through a request's
// context.
//
// Validation and resolution failures are reported as distinct errors so they
// can be logged precisely, but callers serving clients must collapse all of
// them into a single anonymous outcome.
package auth
