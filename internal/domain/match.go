package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidMatch is returned when creating a match with invalid fields.
var ErrInvalidMatch = errors.New("invalid match")

// SourceTradeMe tags matches discovered via the Trade Me search provider.
const SourceTradeMe = "trademe"

// Match is one externally discovered listing believed relevant to a want.
// The pair (want_id, url) is the dedup key: a match is created at most once
// per distinct listing per want, even across repeated pipeline runs. Once
// notified flips true it is never re-included in a notification batch.
type Match struct {
	ID        string    `db:"id"         json:"id"`
	WantID    string    `db:"want_id"    json:"want_id"`
	Source    string    `db:"source"     json:"source"`
	Title     string    `db:"title"      json:"title"`
	Price     float64   `db:"price"      json:"price"`
	URL       string    `db:"url"        json:"url"`
	Location  string    `db:"location"   json:"location,omitempty"`
	ImageURL  string    `db:"image_url"  json:"image_url,omitempty"`
	Notified  bool      `db:"notified"   json:"notified"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// HasDedupKey reports whether the match carries a stable identity key.
// A match without a URL cannot be deduplicated and is always treated as
// distinct.
func (m *Match) HasDedupKey() bool {
	return m.URL != ""
}

// NewMatch creates a match from a candidate listing, in the initial
// unnotified state.
func NewMatch(wantID, source string, l Listing) (*Match, error) {
	if wantID == "" {
		return nil, fmt.Errorf("%w: want_id is required", ErrInvalidMatch)
	}
	if source == "" {
		return nil, fmt.Errorf("%w: source is required", ErrInvalidMatch)
	}
	if l.Price < 0 {
		return nil, fmt.Errorf("%w: price must be non-negative, got %v", ErrInvalidMatch, l.Price)
	}

	return &Match{
		WantID:    wantID,
		Source:    source,
		Title:     l.Title,
		Price:     l.Price,
		URL:       l.URL,
		Location:  l.Location,
		ImageURL:  l.ImageURL,
		Notified:  false,
		CreatedAt: time.Now(),
	}, nil
}

// Listing is a candidate search result awaiting dedup. It exists only
// transiently within one pipeline iteration and is never persisted as-is.
type Listing struct {
	ListingID string  `json:"listing_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	URL       string  `json:"url"`
	Location  string  `json:"location"`
	ImageURL  string  `json:"image_url"`
}
