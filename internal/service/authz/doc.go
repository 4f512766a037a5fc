// Package authz decides whether the principal attached to a request may
// proceed. It has two parts: a declarative route policy table evaluated
// once per request before any handler runs, and an ownership policy that
// services consult after loading a resource and before mutating it.
//
// Decisions are expressed as errors. ErrUnauthenticated means the caller
// must authenticate; ErrForbidden means the caller is known but not allowed.
package authz
