package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bazaar-api/internal/config"
	"github.com/phrazzld/bazaar-api/internal/platform/postgres"
	"github.com/pressly/goose/v3"
)

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf implements goose.Logger.
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf implements goose.Logger. It does not exit; main decides.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// migrationCommands lists the goose commands the -migrate flag accepts.
var migrationCommands = map[string]func(db *sql.DB) error{
	"up":      func(db *sql.DB) error { return goose.Up(db, postgres.MigrationsDir) },
	"down":    func(db *sql.DB) error { return goose.Down(db, postgres.MigrationsDir) },
	"status":  func(db *sql.DB) error { return goose.Status(db, postgres.MigrationsDir) },
	"version": func(db *sql.DB) error { return goose.Version(db, postgres.MigrationsDir) },
}

// runMigrations executes a goose command against the embedded migrations.
func runMigrations(cfg *config.Config, command string, logger *slog.Logger) error {
	run, ok := migrationCommands[command]
	if !ok {
		return fmt.Errorf("unknown migration command %q: use up, down, status, or version", command)
	}

	migrationLogger := logger.With(
		"correlation_id", uuid.New().String(),
		"component", "migrations",
		"command", command,
	)
	start := time.Now()

	db, err := openDatabase(context.Background(), cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			migrationLogger.Error("failed to close database connection", "error", err)
		}
	}()

	goose.SetBaseFS(postgres.Migrations)
	goose.SetLogger(&slogGooseLogger{logger: migrationLogger})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := run(db); err != nil {
		migrationLogger.Error("migration failed", "error", err)
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	migrationLogger.Info("migration completed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}
