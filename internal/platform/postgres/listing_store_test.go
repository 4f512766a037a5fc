package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/bazaar-api/internal/domain"
	"github.com/phrazzld/bazaar-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var listingRowColumns = []string{"id", "seller_id", "title", "description", "price_cents", "created_at", "updated_at"}

func newMockListingStore(t *testing.T) (*PostgresListingStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgresListingStore(db, nil), mock
}

func listingRow(l *domain.Listing) *sqlmock.Rows {
	return sqlmock.NewRows(listingRowColumns).
		AddRow(l.ID.String(), l.SellerID.String(), l.Title, l.Description, l.PriceCents, l.CreatedAt, l.UpdatedAt)
}

func TestPostgresListingStoreCreate(t *testing.T) {
	t.Parallel()

	t.Run("inserts", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockListingStore(t)
		l, err := domain.NewListing(uuid.New(), "Bike", "Red", 5000)
		require.NoError(t, err)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO listings")).
			WithArgs(l.ID, l.SellerID, "Bike", "Red", int64(5000), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.Create(context.Background(), l))
	})

	t.Run("unknown seller", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockListingStore(t)
		l, err := domain.NewListing(uuid.New(), "Bike", "", 0)
		require.NoError(t, err)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO listings")).
			WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode})

		assert.ErrorIs(t, s.Create(context.Background(), l), store.ErrInvalidEntity)
	})

	t.Run("invalid listing", func(t *testing.T) {
		t.Parallel()
		s, _ := newMockListingStore(t)
		l := &domain.Listing{ID: uuid.New(), SellerID: uuid.New()}

		assert.ErrorIs(t, s.Create(context.Background(), l), store.ErrInvalidEntity)
	})
}

func TestPostgresListingStoreGetByID(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockListingStore(t)
		l, err := domain.NewListing(uuid.New(), "Lamp", "", 1200)
		require.NoError(t, err)

		mock.ExpectQuery(regexp.QuoteMeta("FROM listings WHERE id = $1")).
			WithArgs(l.ID).
			WillReturnRows(listingRow(l))

		got, err := s.GetByID(context.Background(), l.ID)
		require.NoError(t, err)
		assert.Equal(t, l.SellerID, got.SellerID)
		assert.Equal(t, int64(1200), got.PriceCents)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockListingStore(t)
		id := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta("FROM listings WHERE id = $1")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(listingRowColumns))

		_, err := s.GetByID(context.Background(), id)
		assert.ErrorIs(t, err, store.ErrListingNotFound)
	})
}

func TestPostgresListingStoreList(t *testing.T) {
	t.Parallel()

	t.Run("all sellers", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockListingStore(t)
		l, err := domain.NewListing(uuid.New(), "Lamp", "", 1200)
		require.NoError(t, err)

		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
			WithArgs(nil, 20, 0).
			WillReturnRows(listingRow(l))

		got, err := s.List(context.Background(), store.ListingFilter{Limit: 20})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("one seller", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockListingStore(t)
		seller := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
			WithArgs(seller, 5, 10).
			WillReturnRows(sqlmock.NewRows(listingRowColumns))

		got, err := s.List(context.Background(), store.ListingFilter{SellerID: seller, Limit: 5, Offset: 10})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestPostgresListingStoreDelete(t *testing.T) {
	t.Parallel()

	s, mock := newMockListingStore(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM listings WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.Delete(context.Background(), id), store.ErrListingNotFound)
}

func TestPostgresListingStoreRunInTx(t *testing.T) {
	t.Parallel()

	t.Run("commits on success", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockListingStore(t)
		l, err := domain.NewListing(uuid.New(), "Lamp", "", 1200)
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
			WithArgs(l.ID).
			WillReturnRows(listingRow(l))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE listings")).
			WithArgs("Desk lamp", "", int64(1500), sqlmock.AnyArg(), l.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = s.RunInTx(context.Background(), func(ctx context.Context, tx store.ListingStore) error {
			got, err := tx.GetByIDForUpdate(ctx, l.ID)
			if err != nil {
				return err
			}
			if err := got.Apply("Desk lamp", "", 1500); err != nil {
				return err
			}
			return tx.Update(ctx, got)
		})
		assert.NoError(t, err)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockListingStore(t)
		stop := errors.New("stop")

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := s.RunInTx(context.Background(), func(ctx context.Context, tx store.ListingStore) error {
			return stop
		})
		assert.ErrorIs(t, err, stop)
	})

	t.Run("nested call reuses the transaction", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockListingStore(t)

		mock.ExpectBegin()
		mock.ExpectCommit()

		calls := 0
		err := s.RunInTx(context.Background(), func(ctx context.Context, tx store.ListingStore) error {
			return tx.RunInTx(ctx, func(ctx context.Context, inner store.ListingStore) error {
				calls++
				return nil
			})
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestScanListingKeepsTimes(t *testing.T) {
	t.Parallel()
	s, mock := newMockListingStore(t)
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	l := &domain.Listing{ID: uuid.New(), SellerID: uuid.New(), Title: "x", CreatedAt: created, UpdatedAt: created}

	mock.ExpectQuery(regexp.QuoteMeta("FROM listings WHERE id = $1")).
		WithArgs(l.ID).
		WillReturnRows(listingRow(l))

	got, err := s.GetByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.True(t, created.Equal(got.CreatedAt))
}
