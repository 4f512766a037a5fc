// Package service holds the application services behind the HTTP handlers:
// account registration and administration, and listing management. Listing
// mutations consult the ownership policy inside the same transaction that
// applies them.
package service
