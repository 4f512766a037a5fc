package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/bazaar-api/internal/domain"
	"github.com/phrazzld/bazaar-api/internal/platform/logger"
	"github.com/phrazzld/bazaar-api/internal/store"
)

const listingColumns = `id, seller_id, title, description, price_cents, created_at, updated_at`

// PostgresListingStore implements store.ListingStore on PostgreSQL.
type PostgresListingStore struct {
	db     store.DBTX
	sqlDB  *sql.DB // nil when the store is bound to a transaction
	logger *slog.Logger
}

var _ store.ListingStore = (*PostgresListingStore)(nil)

// NewPostgresListingStore creates a PostgresListingStore. If logger is nil,
// slog.Default() is used.
func NewPostgresListingStore(db *sql.DB, logger *slog.Logger) *PostgresListingStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresListingStore{
		db:     db,
		sqlDB:  db,
		logger: logger.With(slog.String("component", "listing_store")),
	}
}

// WithTx returns a store whose queries run inside tx.
func (s *PostgresListingStore) WithTx(tx *sql.Tx) *PostgresListingStore {
	return &PostgresListingStore{
		db:     tx,
		logger: s.logger,
	}
}

// RunInTx implements store.ListingStore.RunInTx. A store already bound to a
// transaction runs fn in that transaction.
func (s *PostgresListingStore) RunInTx(
	ctx context.Context,
	fn func(ctx context.Context, txStore store.ListingStore) error,
) error {
	if s.sqlDB == nil {
		return fn(ctx, s)
	}
	return store.RunInTransaction(ctx, s.sqlDB, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, s.WithTx(tx))
	})
}

// Create implements store.ListingStore.Create.
func (s *PostgresListingStore) Create(ctx context.Context, listing *domain.Listing) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := listing.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO listings (`+listingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		listing.ID,
		listing.SellerID,
		listing.Title,
		listing.Description,
		listing.PriceCents,
		listing.CreatedAt,
		listing.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("listing seller does not exist",
				slog.String("listing_id", listing.ID.String()),
				slog.String("seller_id", listing.SellerID.String()))
			return fmt.Errorf("%w: seller %s not found", store.ErrInvalidEntity, listing.SellerID)
		}
		log.Error("failed to create listing",
			slog.String("error", err.Error()),
			slog.String("listing_id", listing.ID.String()))
		return MapError(err)
	}

	log.Info("listing created",
		slog.String("listing_id", listing.ID.String()),
		slog.String("seller_id", listing.SellerID.String()))
	return nil
}

// GetByID implements store.ListingStore.GetByID.
func (s *PostgresListingStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	return s.get(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
}

// GetByIDForUpdate implements store.ListingStore.GetByIDForUpdate.
func (s *PostgresListingStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	return s.get(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1 FOR UPDATE`, id)
}

func (s *PostgresListingStore) get(ctx context.Context, query string, id uuid.UUID) (*domain.Listing, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	listing, err := scanListing(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("listing not found", slog.String("listing_id", id.String()))
			return nil, store.ErrListingNotFound
		}
		log.Error("failed to get listing",
			slog.String("error", err.Error()),
			slog.String("listing_id", id.String()))
		return nil, MapError(err)
	}
	return listing, nil
}

// List implements store.ListingStore.List.
func (s *PostgresListingStore) List(ctx context.Context, filter store.ListingFilter) ([]*domain.Listing, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + listingColumns + ` FROM listings
		WHERE ($1::uuid IS NULL OR seller_id = $1)
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`

	var seller any
	if filter.SellerID != uuid.Nil {
		seller = filter.SellerID
	}

	rows, err := s.db.QueryContext(ctx, query, seller, filter.Limit, filter.Offset)
	if err != nil {
		log.Error("failed to list listings", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	listings := make([]*domain.Listing, 0, filter.Limit)
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, MapError(err)
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return listings, nil
}

// Update implements store.ListingStore.Update.
func (s *PostgresListingStore) Update(ctx context.Context, listing *domain.Listing) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := listing.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE listings
		SET title = $1, description = $2, price_cents = $3, updated_at = $4
		WHERE id = $5`,
		listing.Title,
		listing.Description,
		listing.PriceCents,
		listing.UpdatedAt,
		listing.ID,
	)
	if err != nil {
		log.Error("failed to update listing",
			slog.String("error", err.Error()),
			slog.String("listing_id", listing.ID.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrListingNotFound); err != nil {
		return err
	}

	log.Info("listing updated", slog.String("listing_id", listing.ID.String()))
	return nil
}

// Delete implements store.ListingStore.Delete.
func (s *PostgresListingStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete listing",
			slog.String("error", err.Error()),
			slog.String("listing_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrListingNotFound); err != nil {
		return err
	}

	log.Info("listing deleted", slog.String("listing_id", id.String()))
	return nil
}

func scanListing(row rowScanner) (*domain.Listing, error) {
	var l domain.Listing
	if err := row.Scan(
		&l.ID,
		&l.SellerID,
		&l.Title,
		&l.Description,
		&l.PriceCents,
		&l.CreatedAt,
		&l.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &l, nil
}
