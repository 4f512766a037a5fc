package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/bazaar-api/internal/platform/postgres"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds test database operations.
const TestTimeout = 5 * time.Second

var (
	migrateOnce sync.Once
	migrateErr  error
)

// testGooseLogger routes goose output through t.Log.
type testGooseLogger struct {
	t *testing.T
}

func (l *testGooseLogger) Printf(format string, v ...interface{}) {
	l.t.Logf("goose: "+format, v...)
}

func (l *testGooseLogger) Fatalf(format string, v ...interface{}) {
	l.t.Fatalf("goose: "+format, v...)
}

// OpenTestDB connects to DATABASE_URL, applies the embedded migrations once
// per test binary, and closes the pool when t ends. It skips t when no
// database is configured.
func OpenTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbURL := SkipIfNoDatabase(t)

	db, err := sql.Open("pgx", dbURL)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "failed to ping test database")

	migrateOnce.Do(func() {
		goose.SetBaseFS(postgres.Migrations)
		goose.SetLogger(&testGooseLogger{t: t})
		if err := goose.SetDialect("postgres"); err != nil {
			migrateErr = err
			return
		}
		migrateErr = goose.Up(db, postgres.MigrationsDir)
	})
	require.NoError(t, migrateErr, "failed to apply migrations")

	return db
}

// ResetTestData removes every user and, by cascade, their roles and listings.
func ResetTestData(t *testing.T, db *sql.DB) {
	t.Helper()
	if _, err := db.Exec("TRUNCATE TABLE users CASCADE"); err != nil {
		require.NoError(t, fmt.Errorf("failed to truncate users table: %w", err))
	}
}
