package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Listing validation errors
var (
	ErrEmptyListingID     = errors.New("listing ID cannot be empty")
	ErrEmptySellerID      = errors.New("seller ID cannot be empty")
	ErrEmptyTitle         = errors.New("title cannot be empty")
	ErrTitleTooLong       = errors.New("title must be at most 200 characters long")
	ErrDescriptionTooLong = errors.New("description must be at most 5000 characters long")
	ErrNegativePrice      = errors.New("price cannot be negative")
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
)

// Listing is a classified ad. SellerID records the account that created it
// and is the only identity allowed to change or remove it.
type Listing struct {
	ID          uuid.UUID `json:"id"`
	SellerID    uuid.UUID `json:"seller_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewListing creates a listing owned by sellerID.
func NewListing(sellerID uuid.UUID, title, description string, priceCents int64) (*Listing, error) {
	now := time.Now().UTC()
	l := &Listing{
		ID:          uuid.New(),
		SellerID:    sellerID,
		Title:       strings.TrimSpace(title),
		Description: description,
		PriceCents:  priceCents,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Validate checks if the Listing has valid data.
func (l *Listing) Validate() error {
	switch {
	case l.ID == uuid.Nil:
		return ErrEmptyListingID
	case l.SellerID == uuid.Nil:
		return ErrEmptySellerID
	case strings.TrimSpace(l.Title) == "":
		return ErrEmptyTitle
	case len([]rune(l.Title)) > maxTitleLength:
		return ErrTitleTooLong
	case len([]rune(l.Description)) > maxDescriptionLength:
		return ErrDescriptionTooLong
	case l.PriceCents < 0:
		return ErrNegativePrice
	}
	return nil
}

// IsOwnedBy reports whether userID created the listing.
func (l *Listing) IsOwnedBy(userID uuid.UUID) bool {
	return userID != uuid.Nil && l.SellerID == userID
}

// Apply overwrites the editable fields and bumps UpdatedAt, then validates.
func (l *Listing) Apply(title, description string, priceCents int64) error {
	l.Title = strings.TrimSpace(title)
	l.Description = description
	l.PriceCents = priceCents
	l.UpdatedAt = time.Now().UTC()
	return l.Validate()
}
