package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/bazaar-api/internal/config"
	"github.com/phrazzld/bazaar-api/internal/platform/postgres"
	"github.com/phrazzld/bazaar-api/internal/service"
	"github.com/phrazzld/bazaar-api/internal/service/auth"
	"github.com/phrazzld/bazaar-api/internal/service/authz"
	"github.com/phrazzld/bazaar-api/internal/store"
)

// application holds the wired dependencies of the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore    store.UserStore
	listingStore store.ListingStore

	tokenService       auth.TokenService
	credentialVerifier auth.CredentialVerifier
	identityResolver   auth.IdentityResolver

	userService    service.UserService
	listingService service.ListingService
}

// newApplication wires the server against db. It fails, before anything
// listens, when the signing key or hashing configuration is unusable.
func newApplication(cfg *config.Config, db *sql.DB, logger *slog.Logger) (*application, error) {
	return newApplicationWithStores(
		cfg,
		postgres.NewPostgresUserStore(db, logger),
		postgres.NewPostgresListingStore(db, logger),
		db,
		logger,
	)
}

// newApplicationWithStores wires the server against the given stores. db
// may be nil when the stores do not need it.
func newApplicationWithStores(
	cfg *config.Config,
	users store.UserStore,
	listings store.ListingStore,
	db *sql.DB,
	logger *slog.Logger,
) (*application, error) {
	tokens, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	hasher, err := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to create password hasher: %w", err)
	}

	credentials, err := auth.NewCredentialVerifier(users, auth.NewBcryptVerifier(), hasher)
	if err != nil {
		return nil, fmt.Errorf("failed to create credential verifier: %w", err)
	}

	return &application{
		config:             cfg,
		logger:             logger,
		db:                 db,
		userStore:          users,
		listingStore:       listings,
		tokenService:       tokens,
		credentialVerifier: credentials,
		identityResolver:   auth.NewIdentityResolver(users),
		userService:        service.NewUserService(users, hasher, logger),
		listingService:     service.NewListingService(listings, authz.DefaultOwnershipPolicy(), logger),
	}, nil
}

// cleanup releases the application's resources.
func (app *application) cleanup() {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database connection", "error", err)
		return
	}
	app.logger.Info("database connection closed")
}
