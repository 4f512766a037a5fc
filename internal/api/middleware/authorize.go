package middleware

import (
	"errors"
	"net/http"

	"github.com/phrazzld/bazaar-api/internal/api/shared"
	"github.com/phrazzld/bazaar-api/internal/service/authz"
)

// Authorize enforces policy on every request. It must run after Authenticate.
func Authorize(policy *authz.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := policy.Authorize(r.Context(), r.Method, r.URL.Path)
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, authz.ErrUnauthenticated):
				shared.RespondUnauthenticated(w, r, shared.MsgAuthenticationRequired)
			default:
				shared.RespondForbidden(w, r)
			}
		})
	}
}
