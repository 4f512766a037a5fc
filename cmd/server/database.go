package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/bazaar-api/internal/config"
	"github.com/phrazzld/bazaar-api/internal/redact"
)

const pingTimeout = 5 * time.Second

// openDatabase opens a pgx-backed pool and verifies it with a ping.
func openDatabase(ctx context.Context, dbURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// setupAppDatabase opens the application database.
func setupAppDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	db, err := openDatabase(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("database connection failed", "error", redact.Error(err))
		return nil, err
	}

	logger.Info("database connection established")
	return db, nil
}
