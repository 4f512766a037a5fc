package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/bazaar-api/internal/domain"
)

// ListingFilter narrows a listing query.
type ListingFilter struct {
	// SellerID restricts results to one seller unless it is uuid.Nil.
	SellerID uuid.UUID
	Limit    int
	Offset   int
}

// ListingStore defines the interface for listing data persistence.
type ListingStore interface {
	// Create saves a new listing.
	Create(ctx context.Context, listing *domain.Listing) error

	// GetByID retrieves a listing.
	// Returns ErrListingNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)

	// GetByIDForUpdate is GetByID that also locks the row until the enclosing
	// transaction ends. Outside a transaction it behaves like GetByID.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Listing, error)

	// List returns listings newest first.
	List(ctx context.Context, filter ListingFilter) ([]*domain.Listing, error)

	// Update persists the editable fields of an existing listing.
	// Returns ErrListingNotFound if it does not exist.
	Update(ctx context.Context, listing *domain.Listing) error

	// Delete removes a listing.
	// Returns ErrListingNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// RunInTx runs fn with a ListingStore bound to a single transaction.
	// fn's error rolls the transaction back.
	RunInTx(ctx context.Context, fn func(ctx context.Context, txStore ListingStore) error) error
}
