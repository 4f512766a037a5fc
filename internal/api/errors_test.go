package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/phrazzld/bazaar-api/internal/api/shared"
	"github.com/phrazzld/bazaar-api/internal/domain"
	"github.com/phrazzld/bazaar-api/internal/service"
	"github.com/phrazzld/bazaar-api/internal/service/authz"
	"github.com/phrazzld/bazaar-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		err  error
		want int
	}{
		{"unauthenticated", authz.ErrUnauthenticated, http.StatusUnauthorized},
		{"forbidden", authz.ErrForbidden, http.StatusForbidden},
		{"wrapped forbidden", fmt.Errorf("update listing: %w", authz.ErrForbidden), http.StatusForbidden},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound},
		{"listing not found", store.ErrListingNotFound, http.StatusNotFound},
		{"email exists", store.ErrEmailExists, http.StatusConflict},
		{"self modification", service.ErrSelfModification, http.StatusConflict},
		{"domain validation", fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrEmptyTitle), http.StatusBadRequest},
		{"invalid id", domain.ErrInvalidID, http.StatusBadRequest},
		{"unknown role", domain.ErrUnknownRole, http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"empty body", shared.ErrEmptyBody, http.StatusBadRequest},
		{"bad json", fmt.Errorf("%w: eof", errInvalidJSON), http.StatusBadRequest},
		{"unknown", errors.New("pq: connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, shared.MsgInsufficientPermission, GetSafeErrorMessage(authz.ErrForbidden))
	assert.Equal(t, shared.MsgAuthenticationRequired, GetSafeErrorMessage(authz.ErrUnauthenticated))
	assert.Equal(t, "Listing not found", GetSafeErrorMessage(store.ErrListingNotFound))
	assert.Equal(t, "validation failed: title cannot be empty",
		GetSafeErrorMessage(fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrEmptyTitle)))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))

	leaky := errors.New(`failed to query: SELECT * FROM users WHERE email = 'a@b.com' password=hunter2`)
	msg := GetSafeErrorMessage(leaky)
	assert.Equal(t, "An unexpected error occurred", msg)
	assert.NotContains(t, msg, "hunter2")
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	err := shared.ValidateRequest(&RegisterRequest{Email: "not-an-email", Password: "correct-horse-battery"})
	require.Error(t, err)

	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid email: invalid email format", msg)
	assert.NotContains(t, msg, "not-an-email")
}
