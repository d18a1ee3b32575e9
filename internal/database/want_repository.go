package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/neticnz/matcher/internal/domain"
)

// wantSelectList is the column list for SELECT/RETURNING on wants (single
// source for schema changes).
const wantSelectList = `id, user_id, title, COALESCE(description, '') AS description,
			COALESCE(category, '') AS category, max_budget, location, contact_email,
			COALESCE(contact_name, '') AS contact_name, is_free, auto_search, status,
			created_at, updated_at`

// WantRepository manages wants in PostgreSQL.
type WantRepository struct {
	db *sqlx.DB
}

// NewWantRepository creates a new repository.
func NewWantRepository(db *sqlx.DB) *WantRepository {
	return &WantRepository{db: db}
}

// ListAutoSearch returns the wants the pipeline is allowed to process:
// status=active AND auto_search=true, oldest first.
func (r *WantRepository) ListAutoSearch(ctx context.Context) ([]domain.Want, error) {
	query := `SELECT ` + wantSelectList + `
		FROM wants
		WHERE status = 'active' AND auto_search = TRUE
		ORDER BY created_at ASC`

	var wants []domain.Want
	if err := r.db.SelectContext(ctx, &wants, query); err != nil {
		return nil, fmt.Errorf("list auto-search wants: %w", err)
	}
	return wants, nil
}

// List returns wants filtered by status and, optionally, contact email
// (case-insensitive), newest first.
func (r *WantRepository) List(ctx context.Context, status domain.WantStatus, email string) ([]domain.Want, error) {
	query := `SELECT ` + wantSelectList + `
		FROM wants
		WHERE status = $1`
	args := []any{status}

	if email != "" {
		query += ` AND contact_email ILIKE $2`
		args = append(args, email)
	}
	query += ` ORDER BY created_at DESC`

	var wants []domain.Want
	if err := r.db.SelectContext(ctx, &wants, query, args...); err != nil {
		return nil, fmt.Errorf("list wants: %w", err)
	}
	return wants, nil
}

// GetByID retrieves a single want.
func (r *WantRepository) GetByID(ctx context.Context, id string) (*domain.Want, error) {
	query := `SELECT ` + wantSelectList + ` FROM wants WHERE id = $1`

	var w domain.Want
	err := r.db.GetContext(ctx, &w, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get want: %w", err)
	}
	return &w, nil
}

// Create inserts a new want. An empty ID is assigned a fresh UUID.
func (r *WantRepository) Create(ctx context.Context, w *domain.Want) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}

	query := `
		INSERT INTO wants (id, user_id, title, description, category, max_budget,
			location, contact_email, contact_name, is_free, auto_search, status,
			created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8,
			NULLIF($9, ''), $10, $11, $12, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		w.ID, w.UserID, w.Title, w.Description, w.Category, w.MaxBudget,
		w.Location, w.ContactEmail, w.ContactName, w.IsFree, w.AutoSearch, w.Status,
	).Scan(&w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create want: %w", err)
	}
	return nil
}

// Update applies a partial update. Nil fields in upd are left unchanged.
// Returns the updated want, or domain.ErrNotFound.
func (r *WantRepository) Update(ctx context.Context, id string, upd domain.WantUpdate) (*domain.Want, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if upd.Title != nil {
		sets = append(sets, "title = "+arg(*upd.Title))
	}
	if upd.Description != nil {
		sets = append(sets, "description = NULLIF("+arg(*upd.Description)+", '')")
	}
	if upd.Category != nil {
		sets = append(sets, "category = NULLIF("+arg(*upd.Category)+", '')")
	}
	if upd.MaxBudget != nil {
		sets = append(sets, "max_budget = "+arg(*upd.MaxBudget))
	}
	if upd.Location != nil {
		sets = append(sets, "location = "+arg(*upd.Location))
	}
	if upd.AutoSearch != nil {
		sets = append(sets, "auto_search = "+arg(*upd.AutoSearch))
	}
	if upd.Status != nil {
		sets = append(sets, "status = "+arg(string(*upd.Status)))
	}

	query := `UPDATE wants SET ` + strings.Join(sets, ", ") +
		` WHERE id = ` + arg(id) +
		` RETURNING ` + wantSelectList

	var w domain.Want
	err := r.db.GetContext(ctx, &w, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update want: %w", err)
	}
	return &w, nil
}

// Ping verifies database connectivity.
func (r *WantRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
