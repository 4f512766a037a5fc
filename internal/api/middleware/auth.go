package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/bazaar-api/internal/platform/logger"
	"github.com/phrazzld/bazaar-api/internal/redact"
	"github.com/phrazzld/bazaar-api/internal/service/auth"
)

// AuthMiddleware attaches the caller's principal to the request context.
type AuthMiddleware struct {
	tokens     auth.TokenService
	identities auth.IdentityResolver
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(tokens auth.TokenService, identities auth.IdentityResolver) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:     tokens,
		identities: identities,
	}
}

// Authenticate never rejects a request. When the Authorization header
// carries a valid bearer token whose subject resolves to an active account,
// the principal is attached; in every other case the request continues
// anonymously and the route policy decides.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(m.authenticate(r)))
	})
}

func (m *AuthMiddleware) authenticate(r *http.Request) (ctx context.Context) {
	ctx = r.Context()
	log := logger.FromContext(ctx)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("panic during authentication, continuing anonymously",
				"panic", redact.String(fmt.Sprint(rec)))
			ctx = r.Context()
		}
	}()

	header := r.Header.Get("Authorization")
	if header == "" {
		return ctx
	}

	token, ok := bearerToken(header)
	if !ok {
		log.Debug("ignoring malformed authorization header")
		return ctx
	}

	claims, err := m.tokens.Validate(ctx, token)
	if err != nil {
		log.Debug("bearer token rejected", "reason", err.Error())
		return ctx
	}

	identity, err := m.identities.Resolve(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, auth.ErrIdentityNotFound) || errors.Is(err, auth.ErrIdentityInactive) {
			log.Debug("token subject cannot act", "subject", claims.Subject, "reason", err.Error())
		} else {
			log.Warn("identity resolution failed, continuing anonymously",
				"subject", claims.Subject,
				"error", redact.Error(err))
		}
		return ctx
	}

	return auth.WithPrincipal(ctx, auth.NewPrincipal(identity))
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. The scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
