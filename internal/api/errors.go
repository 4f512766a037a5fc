package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/bazaar-api/internal/api/shared"
	"github.com/phrazzld/bazaar-api/internal/domain"
	"github.com/phrazzld/bazaar-api/internal/service"
	"github.com/phrazzld/bazaar-api/internal/service/authz"
	"github.com/phrazzld/bazaar-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes so that
// internal error types never decide the response on their own.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		return http.StatusUnauthorized

	case errors.Is(err, authz.ErrForbidden):
		return http.StatusForbidden

	case store.IsNotFoundError(err):
		return http.StatusNotFound

	case store.IsDuplicateError(err),
		errors.Is(err, service.ErrSelfModification):
		return http.StatusConflict

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrUnknownRole),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrEmptyBody),
		errors.Is(err, errInvalidJSON),
		errors.As(err, &validationErrs):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-safe message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		return shared.MsgAuthenticationRequired

	case errors.Is(err, authz.ErrForbidden):
		return shared.MsgInsufficientPermission

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrListingNotFound):
		return "Listing not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, service.ErrSelfModification):
		return "Administrators cannot revoke their own access"

	case errors.As(err, &validationErrs):
		return SanitizeValidationError(validationErrs)

	case errors.Is(err, domain.ErrUnknownRole):
		return "Unknown role"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"

	// Domain validation errors are built only from domain sentinels.
	case errors.Is(err, domain.ErrValidation):
		return err.Error()

	case errors.Is(err, shared.ErrEmptyBody),
		errors.Is(err, errInvalidJSON):
		return "Invalid request format"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError reports the first failing field and rule without
// echoing the submitted value.
func SanitizeValidationError(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return "Validation error"
	}
	fe := errs[0]
	return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "gte":
		return "too small"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the mapped status and safe message for err.
// 401 and 403 go through the shared responders so they are audited the
// same way as policy failures.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)

	switch status {
	case http.StatusUnauthorized:
		shared.RespondUnauthenticated(w, r, shared.MsgAuthenticationRequired)
	case http.StatusForbidden:
		shared.RespondForbidden(w, r)
	default:
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
	}
}
