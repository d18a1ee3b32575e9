package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidOffer is returned when creating an offer with invalid fields.
var ErrInvalidOffer = errors.New("invalid offer")

// OfferStatus represents the state of an offer.
type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "pending"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusDeclined OfferStatus = "declined"
)

// Offer is a direct "I have this" response to a want, submitted by another
// user rather than discovered on an external marketplace.
type Offer struct {
	ID           string      `db:"id"            json:"id"`
	WantID       string      `db:"want_id"       json:"want_id"`
	OffererName  string      `db:"offerer_name"  json:"offerer_name"`
	OffererEmail string      `db:"offerer_email" json:"offerer_email"`
	OffererPhone string      `db:"offerer_phone" json:"offerer_phone,omitempty"`
	Message      string      `db:"message"       json:"message,omitempty"`
	Status       OfferStatus `db:"status"        json:"status"`
	CreatedAt    time.Time   `db:"created_at"    json:"created_at"`
}

// NewOffer creates a pending offer with validation.
func NewOffer(wantID, offererName, offererEmail string) (*Offer, error) {
	if wantID == "" {
		return nil, fmt.Errorf("%w: want_id is required", ErrInvalidOffer)
	}
	if strings.TrimSpace(offererName) == "" {
		return nil, fmt.Errorf("%w: offerer_name is required", ErrInvalidOffer)
	}
	if strings.TrimSpace(offererEmail) == "" {
		return nil, fmt.Errorf("%w: offerer_email is required", ErrInvalidOffer)
	}

	return &Offer{
		WantID:       wantID,
		OffererName:  strings.TrimSpace(offererName),
		OffererEmail: strings.TrimSpace(offererEmail),
		Status:       OfferStatusPending,
		CreatedAt:    time.Now(),
	}, nil
}
