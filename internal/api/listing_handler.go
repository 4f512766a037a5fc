package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/bazaar-api/internal/api/shared"
	"github.com/phrazzld/bazaar-api/internal/domain"
	"github.com/phrazzld/bazaar-api/internal/service"
	"github.com/phrazzld/bazaar-api/internal/store"
)

// ListingHandler handles listing HTTP requests.
type ListingHandler struct {
	listings service.ListingService
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(listings service.ListingService) *ListingHandler {
	return &ListingHandler{listings: listings}
}

// List handles GET /api/listings. An optional seller_id query parameter
// restricts results to one seller.
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := getPage(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	filter := store.ListingFilter{Limit: limit, Offset: offset}
	if raw := r.URL.Query().Get("seller_id"); raw != "" {
		sellerID, err := uuid.Parse(raw)
		if err != nil {
			HandleAPIError(w, r, domain.ErrInvalidID)
			return
		}
		filter.SellerID = sellerID
	}

	listings, err := h.listings.List(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	out := make([]ListingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, newListingResponse(l))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// Get handles GET /api/listings/{id}.
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	listing, err := h.listings.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newListingResponse(listing))
}

// Create handles POST /api/listings. The caller becomes the seller.
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req ListingRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	listing, err := h.listings.Create(r.Context(), principal, listingInput(req))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, newListingResponse(listing))
}

// Update handles PUT /api/listings/{id}. Only the seller may update.
func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	// Ownership is checked before the body is read.
	if err := h.listings.CheckModifiable(r.Context(), principal, id); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	var req ListingRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	listing, err := h.listings.Update(r.Context(), principal, id, listingInput(req))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newListingResponse(listing))
}

// Delete handles DELETE /api/listings/{id}. Only the seller may delete.
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	if err := h.listings.Delete(r.Context(), principal, id); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func listingInput(req ListingRequest) service.ListingInput {
	return service.ListingInput{
		Title:       req.Title,
		Description: req.Description,
		PriceCents:  *req.PriceCents,
	}
}
