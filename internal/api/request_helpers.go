package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/bazaar-api/internal/api/shared"
	"github.com/phrazzld/bazaar-api/internal/domain"
	"github.com/phrazzld/bazaar-api/internal/service/auth"
)

var errInvalidJSON = errors.New("invalid request body")

// decodeAndValidate decodes the JSON body into v and validates its tags.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if err := shared.DecodeJSON(w, r, v); err != nil {
		if errors.Is(err, shared.ErrEmptyBody) {
			return err
		}
		return fmt.Errorf("%w: %w", errInvalidJSON, err)
	}
	return shared.ValidateRequest(v)
}

// requirePrincipal returns the caller's principal. When there is none it
// writes a 401 and reports false; the route policy normally prevents that.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		shared.RespondUnauthenticated(w, r, shared.MsgAuthenticationRequired)
		return auth.Principal{}, false
	}
	return principal, true
}

// getPathUUID parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, paramName))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: %s", domain.ErrInvalidID, paramName)
	}
	return id, nil
}

// getPage reads the limit and offset query parameters. Missing values are
// zero and are defaulted by the services.
func getPage(r *http.Request) (limit, offset int, err error) {
	q := r.URL.Query()
	if limit, err = queryInt(q.Get("limit")); err != nil {
		return 0, 0, err
	}
	if offset, err = queryInt(q.Get("offset")); err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

func queryInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid pagination parameter", domain.ErrValidation)
	}
	return n, nil
}
