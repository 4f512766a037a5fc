package testutils

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/bazaar-api/internal/domain"
	"github.com/phrazzld/bazaar-api/internal/store"
	"github.com/stretchr/testify/require"
)

// InMemoryUserStore is a goroutine-safe store.UserStore for tests.
type InMemoryUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]domain.User

	// IdentityLoads counts LoadIdentity calls.
	IdentityLoads int
}

var _ store.UserStore = (*InMemoryUserStore)(nil)

// NewInMemoryUserStore creates an empty InMemoryUserStore.
func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[uuid.UUID]domain.User)}
}

// Create implements store.UserStore.
func (s *InMemoryUserStore) Create(_ context.Context, user *domain.User) error {
	if user.HashedPassword == "" {
		return store.ErrInvalidEntity
	}
	if err := user.Validate(); err != nil {
		return store.ErrInvalidEntity
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	stored := *user
	stored.Password = ""
	s.users[user.ID] = stored
	return nil
}

// GetByID implements store.UserStore.
func (s *InMemoryUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &u, nil
}

// GetByEmail implements store.UserStore.
func (s *InMemoryUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(email)
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// List implements store.UserStore.
func (s *InMemoryUserStore) List(_ context.Context, limit, offset int) ([]*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := slices.SortedFunc(maps.Values(s.users), func(a, b domain.User) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})

	out := make([]*domain.User, 0, limit)
	for i := offset; i < len(all) && len(out) < limit; i++ {
		u := all[i]
		out = append(out, &u)
	}
	return out, nil
}

// SetActive implements store.UserStore.
func (s *InMemoryUserStore) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	u.Active = active
	s.users[id] = u
	return nil
}

// SetRoles implements store.UserStore.
func (s *InMemoryUserStore) SetRoles(_ context.Context, id uuid.UUID, roles domain.RoleSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	u.Roles = roles
	s.users[id] = u
	return nil
}

// LoadIdentity implements store.UserStore.
func (s *InMemoryUserStore) LoadIdentity(_ context.Context, id uuid.UUID) (*store.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.IdentityLoads++
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &store.Identity{
		UserID: u.ID,
		Email:  u.Email,
		Roles:  u.Roles,
		Active: u.Active,
	}, nil
}

// MustCreateUser registers an active user with TestPassword, hashed at the
// minimum bcrypt cost, holding roles (RoleUser when none are given).
func MustCreateUser(t *testing.T, users store.UserStore, email string, roles ...domain.Role) *domain.User {
	t.Helper()
	user, err := domain.NewUser(email, TestPassword)
	require.NoError(t, err)

	hash, err := NewTestHasher(t).Hash(TestPassword)
	require.NoError(t, err)
	user.HashedPassword = hash
	user.Password = ""
	if len(roles) > 0 {
		user.Roles = domain.NewRoleSet(roles...)
	}

	require.NoError(t, users.Create(context.Background(), user))
	return user
}

// InMemoryListingStore is a goroutine-safe store.ListingStore for tests.
// RunInTx works on a copy that replaces the live data only when fn
// succeeds, so a failed transaction leaves the store untouched.
type InMemoryListingStore struct {
	mu       sync.Mutex
	listings map[uuid.UUID]domain.Listing
	inTx     bool

	// Mutations counts successful Create, Update and Delete calls.
	Mutations int
}

var _ store.ListingStore = (*InMemoryListingStore)(nil)

// NewInMemoryListingStore creates an empty InMemoryListingStore.
func NewInMemoryListingStore() *InMemoryListingStore {
	return &InMemoryListingStore{listings: make(map[uuid.UUID]domain.Listing)}
}

// RunInTx implements store.ListingStore.
func (s *InMemoryListingStore) RunInTx(
	ctx context.Context,
	fn func(ctx context.Context, txStore store.ListingStore) error,
) error {
	if s.inTx {
		return fn(ctx, s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	view := &InMemoryListingStore{listings: maps.Clone(s.listings), inTx: true}
	if err := fn(ctx, view); err != nil {
		return err
	}
	s.listings = view.listings
	s.Mutations += view.Mutations
	return nil
}

func (s *InMemoryListingStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Create implements store.ListingStore.
func (s *InMemoryListingStore) Create(_ context.Context, listing *domain.Listing) error {
	if err := listing.Validate(); err != nil {
		return store.ErrInvalidEntity
	}
	defer s.lock()()
	if _, exists := s.listings[listing.ID]; exists {
		return store.ErrDuplicate
	}
	s.listings[listing.ID] = *listing
	s.Mutations++
	return nil
}

// GetByID implements store.ListingStore.
func (s *InMemoryListingStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Listing, error) {
	defer s.lock()()
	l, ok := s.listings[id]
	if !ok {
		return nil, store.ErrListingNotFound
	}
	return &l, nil
}

// GetByIDForUpdate implements store.ListingStore.
func (s *InMemoryListingStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	return s.GetByID(ctx, id)
}

// List implements store.ListingStore.
func (s *InMemoryListingStore) List(_ context.Context, filter store.ListingFilter) ([]*domain.Listing, error) {
	defer s.lock()()

	all := slices.SortedFunc(maps.Values(s.listings), func(a, b domain.Listing) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})

	out := make([]*domain.Listing, 0, filter.Limit)
	skipped := 0
	for _, l := range all {
		if filter.SellerID != uuid.Nil && l.SellerID != filter.SellerID {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		if len(out) == filter.Limit {
			break
		}
		out = append(out, &l)
	}
	return out, nil
}

// Update implements store.ListingStore.
func (s *InMemoryListingStore) Update(_ context.Context, listing *domain.Listing) error {
	if err := listing.Validate(); err != nil {
		return store.ErrInvalidEntity
	}
	defer s.lock()()
	if _, ok := s.listings[listing.ID]; !ok {
		return store.ErrListingNotFound
	}
	s.listings[listing.ID] = *listing
	s.Mutations++
	return nil
}

// Delete implements store.ListingStore.
func (s *InMemoryListingStore) Delete(_ context.Context, id uuid.UUID) error {
	defer s.lock()()
	if _, ok := s.listings[id]; !ok {
		return store.ErrListingNotFound
	}
	delete(s.listings, id)
	s.Mutations++
	return nil
}
