// Package testutils provides shared helpers for tests across the module:
// in-memory store fakes, token helpers, and PostgreSQL setup for
// integration tests that run only when DATABASE_URL is set.
//
//	users := testutils.NewInMemoryUserStore()
//	seller := testutils.MustCreateUser(t, users, "seller@example.com")
//	tokens := testutils.NewTestTokenService(t)
//	req.Header.Set("Authorization", testutils.AuthHeader(t, tokens, seller))
package testutils
