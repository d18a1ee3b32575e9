package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/neticnz/matcher/internal/domain"
)

const offerSelectList = `id, want_id, offerer_name, offerer_email,
			COALESCE(offerer_phone, '') AS offerer_phone, COALESCE(message, '') AS message,
			status, created_at`

// OfferRepository manages offers in PostgreSQL.
type OfferRepository struct {
	db *sqlx.DB
}

// NewOfferRepository creates a new repository.
func NewOfferRepository(db *sqlx.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

// Create inserts a new offer. An empty ID is assigned a fresh UUID.
func (r *OfferRepository) Create(ctx context.Context, o *domain.Offer) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}

	query := `
		INSERT INTO offers (id, want_id, offerer_name, offerer_email, offerer_phone,
			message, status, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, NOW())
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		o.ID, o.WantID, o.OffererName, o.OffererEmail, o.OffererPhone,
		o.Message, o.Status,
	).Scan(&o.CreatedAt)
	if err != nil {
		return fmt.Errorf("create offer: %w", err)
	}
	return nil
}

// ListByWant returns all offers for a want, newest first.
func (r *OfferRepository) ListByWant(ctx context.Context, wantID string) ([]domain.Offer, error) {
	query := `SELECT ` + offerSelectList + `
		FROM offers
		WHERE want_id = $1
		ORDER BY created_at DESC`

	var offers []domain.Offer
	if err := r.db.SelectContext(ctx, &offers, query, wantID); err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	return offers, nil
}
