package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bazaar-api/internal/domain"
	"github.com/phrazzld/bazaar-api/internal/service/auth"
)

// TokenType is the token_type of every login response.
const TokenType = "Bearer"

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token             string    `json:"token"`
	TokenType         string    `json:"token_type"`
	SubjectID         uuid.UUID `json:"subject_id"`
	SubjectIdentifier string    `json:"subject_identifier"`
	Roles             []string  `json:"roles"`

	// ExpiresAt is the RFC 3339 time after which the token is rejected.
	ExpiresAt string `json:"expires_at"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Roles     []string   `json:"roles"`
	Active    bool       `json:"active"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func newUserResponse(u *domain.User) UserResponse {
	createdAt := u.CreatedAt
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Roles:     u.Roles.Strings(),
		Active:    u.Active,
		CreatedAt: &createdAt,
	}
}

func principalResponse(p auth.Principal) UserResponse {
	return UserResponse{
		ID:     p.UserID,
		Email:  p.Email,
		Roles:  p.Roles.Strings(),
		Active: p.Active,
	}
}

// ListingRequest is the payload for creating or replacing a listing.
type ListingRequest struct {
	Title       string `json:"title"       validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	PriceCents  *int64 `json:"price_cents" validate:"required,gte=0"`
}

// ListingResponse is the public view of a listing.
type ListingResponse struct {
	ID          uuid.UUID `json:"id"`
	SellerID    uuid.UUID `json:"seller_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newListingResponse(l *domain.Listing) ListingResponse {
	return ListingResponse{
		ID:          l.ID,
		SellerID:    l.SellerID,
		Title:       l.Title,
		Description: l.Description,
		PriceCents:  l.PriceCents,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

// SetActiveRequest is the payload for PUT /api/admin/users/{id}/active.
type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// SetRolesRequest is the payload for PUT /api/admin/users/{id}/roles.
type SetRolesRequest struct {
	Roles []string `json:"roles" validate:"required,min=1,dive,required"`
}
