package api

import (
	"net/http"

	"github.com/phrazzld/bazaar-api/internal/api/shared"
	"github.com/phrazzld/bazaar-api/internal/domain"
	"github.com/phrazzld/bazaar-api/internal/service"
)

// AdminHandler handles account administration. Every route it serves
// requires the ADMIN role.
type AdminHandler struct {
	users service.UserService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(users service.UserService) *AdminHandler {
	return &AdminHandler{users: users}
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := getPage(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	users, err := h.users.ListUsers(r.Context(), limit, offset)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResponse(u))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// SetActive handles PUT /api/admin/users/{id}/active.
func (h *AdminHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	var req SetActiveRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	if err := h.users.SetActive(r.Context(), actor, id, *req.Active); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetRoles handles PUT /api/admin/users/{id}/roles.
func (h *AdminHandler) SetRoles(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	var req SetRolesRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	roles, err := domain.ParseRoles(req.Roles)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	if err := h.users.SetRoles(r.Context(), actor, id, roles); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
