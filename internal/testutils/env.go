package testutils

import (
	"os"
	"testing"
)

// IsIntegrationTestEnvironment reports whether a test database is configured.
func IsIntegrationTestEnvironment() bool {
	return os.Getenv("DATABASE_URL") != ""
}

// SkipIfNoDatabase skips t unless DATABASE_URL is set, and returns it.
func SkipIfNoDatabase(t *testing.T) string {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	return dbURL
}
