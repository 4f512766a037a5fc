package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/bazaar-api/internal/api/shared"
	"github.com/phrazzld/bazaar-api/internal/platform/logger"
	"github.com/phrazzld/bazaar-api/internal/service"
	"github.com/phrazzld/bazaar-api/internal/service/auth"
)

// AuthHandler handles registration, login, and the current-user endpoint.
type AuthHandler struct {
	users       service.UserService
	credentials auth.CredentialVerifier
	tokens      auth.TokenService
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	users service.UserService,
	credentials auth.CredentialVerifier,
	tokens auth.TokenService,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		users:       users,
		credentials: credentials,
		tokens:      tokens,
		logger:      logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	user, err := h.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, newUserResponse(user))
}

// Login handles POST /api/auth/login. Every credential failure gets the
// same 401 body.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req LoginRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	user, err := h.credentials.Verify(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			shared.RespondUnauthenticated(w, r, shared.MsgInvalidCredentials)
			return
		}
		HandleAPIError(w, r, err)
		return
	}

	issued, err := h.tokens.Issue(r.Context(), user.ID.String(), user.Roles)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	log.Info("user logged in", slog.String("user_id", user.ID.String()))

	shared.RespondWithJSON(w, r, http.StatusOK, LoginResponse{
		Token:             issued.Token,
		TokenType:         TokenType,
		SubjectID:         user.ID,
		SubjectIdentifier: user.Email,
		Roles:             user.Roles.Strings(),
		ExpiresAt:         issued.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Me handles GET /api/auth/me, returning the principal as resolved for
// this request.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, principalResponse(principal))
}
