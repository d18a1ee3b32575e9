// Package domain contains the core domain models for the matcher service.
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when an entity is not found in the database.
var ErrNotFound = errors.New("entity not found")

// ErrInvalidWant is returned when creating a want with invalid fields.
var ErrInvalidWant = errors.New("invalid want")

// WantStatus represents the lifecycle state of a want.
type WantStatus string

const (
	WantStatusActive    WantStatus = "active"
	WantStatusFulfilled WantStatus = "fulfilled"
	WantStatusExpired   WantStatus = "expired"
)

// Want is a standing search request: an item a user is looking for,
// with an optional budget ceiling.
type Want struct {
	ID           string     `db:"id"            json:"id"`
	UserID       *string    `db:"user_id"       json:"user_id,omitempty"`
	Title        string     `db:"title"         json:"title"`
	Description  string     `db:"description"   json:"description,omitempty"`
	Category     string     `db:"category"      json:"category,omitempty"`
	MaxBudget    *float64   `db:"max_budget"    json:"max_budget,omitempty"`
	Location     string     `db:"location"      json:"location"`
	ContactEmail string     `db:"contact_email" json:"contact_email"`
	ContactName  string     `db:"contact_name"  json:"contact_name,omitempty"`
	IsFree       bool       `db:"is_free"       json:"is_free"`
	AutoSearch   bool       `db:"auto_search"   json:"auto_search"`
	Status       WantStatus `db:"status"        json:"status"`
	CreatedAt    time.Time  `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"    json:"updated_at"`
}

// SearchQuery builds the free-text query sent to the search provider:
// title plus description, whitespace-trimmed.
func (w *Want) SearchQuery() string {
	return strings.TrimSpace(w.Title + " " + w.Description)
}

// Eligible reports whether the pipeline should process this want.
// Only active wants with auto-search enabled are ever searched.
func (w *Want) Eligible() bool {
	return w.Status == WantStatusActive && w.AutoSearch
}

// NewWant creates a new want with validation. The budget ceiling, when
// present, must be non-negative; free wants typically carry no budget.
func NewWant(title, location, contactEmail string) (*Want, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidWant)
	}
	if strings.TrimSpace(contactEmail) == "" {
		return nil, fmt.Errorf("%w: contact_email is required", ErrInvalidWant)
	}

	now := time.Now()
	return &Want{
		Title:        strings.TrimSpace(title),
		Location:     location,
		ContactEmail: contactEmail,
		AutoSearch:   true,
		Status:       WantStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// SetMaxBudget sets the budget ceiling with validation.
func (w *Want) SetMaxBudget(budget float64) error {
	if budget < 0 {
		return fmt.Errorf("%w: max_budget must be non-negative, got %v", ErrInvalidWant, budget)
	}
	w.MaxBudget = &budget
	return nil
}

// WantUpdate describes a partial update to a want. Nil fields are left
// unchanged. Status is mutated by user actions only, never by the pipeline.
type WantUpdate struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Category    *string     `json:"category,omitempty"`
	MaxBudget   *float64    `json:"max_budget,omitempty"`
	Location    *string     `json:"location,omitempty"`
	AutoSearch  *bool       `json:"auto_search,omitempty"`
	Status      *WantStatus `json:"status,omitempty"`
}

// RunSummary aggregates the counters for one pipeline run. It is the
// run's only externally observable success payload.
type RunSummary struct {
	WantsSearched int `json:"wants_searched"`
	NewMatches    int `json:"new_matches"`
	EmailsSent    int `json:"emails_sent"`
}
