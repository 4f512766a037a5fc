package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/bazaar-api/internal/domain"
	"github.com/phrazzld/bazaar-api/internal/platform/logger"
	"github.com/phrazzld/bazaar-api/internal/service/auth"
	"github.com/phrazzld/bazaar-api/internal/service/authz"
	"github.com/phrazzld/bazaar-api/internal/store"
)

// ListingInput carries the editable fields of a listing.
type ListingInput struct {
	Title       string
	Description string
	PriceCents  int64
}

// ListingService manages listings. Update and Delete are restricted to the
// listing's seller, subject to the configured ownership policy.
type ListingService interface {
	// Create stores a new listing sold by seller.
	Create(ctx context.Context, seller auth.Principal, input ListingInput) (*domain.Listing, error)

	// Get retrieves a listing.
	Get(ctx context.Context, id uuid.UUID) (*domain.Listing, error)

	// List returns a page of listings, optionally for one seller.
	List(ctx context.Context, filter store.ListingFilter) ([]*domain.Listing, error)

	// Update changes a listing. Returns authz.ErrForbidden, with the store
	// unchanged, when actor may not modify it.
	Update(ctx context.Context, actor auth.Principal, id uuid.UUID, input ListingInput) (*domain.Listing, error)

	// Delete removes a listing. Returns authz.ErrForbidden, with the store
	// unchanged, when actor may not remove it.
	Delete(ctx context.Context, actor auth.Principal, id uuid.UUID) error

	// CheckModifiable reports whether actor may change the listing, without
	// locking it. Update and Delete repeat the check under the row lock.
	CheckModifiable(ctx context.Context, actor auth.Principal, id uuid.UUID) error
}

type listingServiceImpl struct {
	listings  store.ListingStore
	ownership authz.OwnershipPolicy
	logger    *slog.Logger
}

// NewListingService creates a ListingService.
func NewListingService(
	listings store.ListingStore,
	ownership authz.OwnershipPolicy,
	logger *slog.Logger,
) ListingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &listingServiceImpl{
		listings:  listings,
		ownership: ownership,
		logger:    logger.With("component", "listing_service"),
	}
}

// Create implements ListingService.
func (s *listingServiceImpl) Create(
	ctx context.Context,
	seller auth.Principal,
	input ListingInput,
) (*domain.Listing, error) {
	listing, err := domain.NewListing(seller.UserID, input.Title, input.Description, input.PriceCents)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Get implements ListingService.
func (s *listingServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	return s.listings.GetByID(ctx, id)
}

// List implements ListingService.
func (s *listingServiceImpl) List(ctx context.Context, filter store.ListingFilter) ([]*domain.Listing, error) {
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)
	return s.listings.List(ctx, filter)
}

// Update implements ListingService.
func (s *listingServiceImpl) Update(
	ctx context.Context,
	actor auth.Principal,
	id uuid.UUID,
	input ListingInput,
) (*domain.Listing, error) {
	var updated *domain.Listing
	err := s.listings.RunInTx(ctx, func(ctx context.Context, tx store.ListingStore) error {
		listing, err := s.loadOwned(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if err := listing.Apply(input.Title, input.Description, input.PriceCents); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
		if err := tx.Update(ctx, listing); err != nil {
			return err
		}
		updated = listing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete implements ListingService.
func (s *listingServiceImpl) Delete(ctx context.Context, actor auth.Principal, id uuid.UUID) error {
	return s.listings.RunInTx(ctx, func(ctx context.Context, tx store.ListingStore) error {
		if _, err := s.loadOwned(ctx, tx, actor, id); err != nil {
			return err
		}
		return tx.Delete(ctx, id)
	})
}

// CheckModifiable implements ListingService.
func (s *listingServiceImpl) CheckModifiable(ctx context.Context, actor auth.Principal, id uuid.UUID) error {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.checkOwner(ctx, actor, listing)
}

// loadOwned locks the listing and checks that actor may modify it.
func (s *listingServiceImpl) loadOwned(
	ctx context.Context,
	tx store.ListingStore,
	actor auth.Principal,
	id uuid.UUID,
) (*domain.Listing, error) {
	listing, err := tx.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, actor, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *listingServiceImpl) checkOwner(ctx context.Context, actor auth.Principal, listing *domain.Listing) error {
	if err := s.ownership.CheckOwner(actor, listing.SellerID); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("listing mutation denied",
			"actor", actor.UserID,
			"listing_id", listing.ID,
			"seller_id", listing.SellerID)
		return err
	}
	return nil
}
