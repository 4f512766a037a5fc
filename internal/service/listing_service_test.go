package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/bazaar-api/internal/domain"
	"github.com/phrazzld/bazaar-api/internal/service"
	"github.com/phrazzld/bazaar-api/internal/service/authz"
	"github.com/phrazzld/bazaar-api/internal/store"
	"github.com/phrazzld/bazaar-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listingFixture struct {
	svc      service.ListingService
	listings *testutils.InMemoryListingStore
	seller   *domain.User
	other    *domain.User
	admin    *domain.User
}

func newListingFixture(t *testing.T, ownership authz.OwnershipPolicy) *listingFixture {
	t.Helper()
	users := testutils.NewInMemoryUserStore()
	listings := testutils.NewInMemoryListingStore()
	return &listingFixture{
		svc:      service.NewListingService(listings, ownership, nil),
		listings: listings,
		seller:   testutils.MustCreateUser(t, users, "seller@example.com"),
		other:    testutils.MustCreateUser(t, users, "other@example.com"),
		admin:    testutils.MustCreateUser(t, users, "admin@example.com", domain.RoleUser, domain.RoleAdmin),
	}
}

var bikeInput = service.ListingInput{
	Title:       "Road bike",
	Description: "Lightly used",
	PriceCents:  45000,
}

func TestListingService_Create(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newListingFixture(t, authz.DefaultOwnershipPolicy())

	listing, err := f.svc.Create(ctx, principalFor(f.seller), bikeInput)

	require.NoError(t, err)
	assert.Equal(t, f.seller.ID, listing.SellerID)
	assert.Equal(t, "Road bike", listing.Title)

	got, err := f.svc.Get(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.ID, got.ID)

	_, err = f.svc.Create(ctx, principalFor(f.seller), service.ListingInput{Title: "", PriceCents: 1})
	require.ErrorIs(t, err, domain.ErrValidation)
	require.ErrorIs(t, err, domain.ErrEmptyTitle)
}

func TestListingService_List(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newListingFixture(t, authz.DefaultOwnershipPolicy())

	_, err := f.svc.Create(ctx, principalFor(f.seller), bikeInput)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, principalFor(f.other), bikeInput)
	require.NoError(t, err)

	all, err := f.svc.List(ctx, store.ListingFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := f.svc.List(ctx, store.ListingFilter{SellerID: f.seller.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, f.seller.ID, mine[0].SellerID)
}

func TestListingService_UpdateByOwner(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newListingFixture(t, authz.DefaultOwnershipPolicy())
	listing, err := f.svc.Create(ctx, principalFor(f.seller), bikeInput)
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, principalFor(f.seller), listing.ID, service.ListingInput{
		Title:      "Road bike, reduced",
		PriceCents: 40000,
	})

	require.NoError(t, err)
	assert.Equal(t, "Road bike, reduced", updated.Title)
	assert.Equal(t, int64(40000), updated.PriceCents)

	stored, err := f.svc.Get(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Road bike, reduced", stored.Title)
}

func TestListingService_NonOwnerCannotMutate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	testCases := []struct {
		name   string
		mutate func(f *listingFixture, id uuid.UUID) error
	}{
		{
			name: "update",
			mutate: func(f *listingFixture, id uuid.UUID) error {
				_, err := f.svc.Update(ctx, principalFor(f.other), id, service.ListingInput{
					Title:      "Stolen",
					PriceCents: 1,
				})
				return err
			},
		},
		{
			name: "delete",
			mutate: func(f *listingFixture, id uuid.UUID) error {
				return f.svc.Delete(ctx, principalFor(f.other), id)
			},
		},
		{
			name: "admin without override",
			mutate: func(f *listingFixture, id uuid.UUID) error {
				return f.svc.Delete(ctx, principalFor(f.admin), id)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newListingFixture(t, authz.DefaultOwnershipPolicy())
			listing, err := f.svc.Create(ctx, principalFor(f.seller), bikeInput)
			require.NoError(t, err)
			mutationsBefore := f.listings.Mutations

			err = tc.mutate(f, listing.ID)

			require.ErrorIs(t, err, authz.ErrForbidden)
			assert.Equal(t, mutationsBefore, f.listings.Mutations)
			stored, err := f.svc.Get(ctx, listing.ID)
			require.NoError(t, err)
			assert.Equal(t, *listing, *stored, "listing must be unchanged")
		})
	}
}

func TestListingService_OverrideRoleMayMutate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newListingFixture(t, authz.OwnershipPolicy{
		OverrideRoles: domain.NewRoleSet(domain.RoleAdmin),
	})
	listing, err := f.svc.Create(ctx, principalFor(f.seller), bikeInput)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, principalFor(f.admin), listing.ID))

	_, err = f.svc.Get(ctx, listing.ID)
	require.ErrorIs(t, err, store.ErrListingNotFound)
}

func TestListingService_InvalidUpdateRollsBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newListingFixture(t, authz.DefaultOwnershipPolicy())
	listing, err := f.svc.Create(ctx, principalFor(f.seller), bikeInput)
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, principalFor(f.seller), listing.ID, service.ListingInput{
		Title:      "Road bike",
		PriceCents: -1,
	})

	require.ErrorIs(t, err, domain.ErrValidation)
	require.ErrorIs(t, err, domain.ErrNegativePrice)
	stored, err := f.svc.Get(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(45000), stored.PriceCents)
}

func TestListingService_MissingListing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newListingFixture(t, authz.DefaultOwnershipPolicy())

	_, err := f.svc.Update(ctx, principalFor(f.seller), uuid.New(), bikeInput)
	require.ErrorIs(t, err, store.ErrListingNotFound)

	err = f.svc.Delete(ctx, principalFor(f.seller), uuid.New())
	require.ErrorIs(t, err, store.ErrListingNotFound)
}

func TestListingService_CheckModifiable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newListingFixture(t, authz.DefaultOwnershipPolicy())
	listing, err := f.svc.Create(ctx, principalFor(f.seller), bikeInput)
	require.NoError(t, err)

	assert.NoError(t, f.svc.CheckModifiable(ctx, principalFor(f.seller), listing.ID))
	assert.ErrorIs(t, f.svc.CheckModifiable(ctx, principalFor(f.other), listing.ID), authz.ErrForbidden)
	assert.ErrorIs(t, f.svc.CheckModifiable(ctx, principalFor(f.admin), listing.ID), authz.ErrForbidden)
	assert.ErrorIs(t, f.svc.CheckModifiable(ctx, principalFor(f.seller), uuid.New()), store.ErrListingNotFound)
}
