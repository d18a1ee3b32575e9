package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/neticnz/matcher/internal/domain"
)

// matchSelectList is the column list for SELECT/RETURNING on matches
// (single source for schema changes).
const matchSelectList = `id, want_id, source, title, COALESCE(price, 0) AS price,
			COALESCE(url, '') AS url, COALESCE(location, '') AS location,
			COALESCE(image_url, '') AS image_url, notified, created_at`

// MatchRepository manages discovered matches in PostgreSQL. The unique
// index on (want_id, url) makes the check-then-insert sequence safe under
// overlapping pipeline runs: a losing racer's insert conflicts and is
// treated as "already exists", not as a failure.
type MatchRepository struct {
	db *sqlx.DB
}

// NewMatchRepository creates a new repository.
func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// CreateIfNew inserts the match unless one already exists for the same
// (want_id, url) pair. Returns true when a row was created. Matches
// without a URL have no dedup key and are always inserted.
//
// The conflict target must repeat the partial index predicate
// (WHERE url IS NOT NULL): Postgres only infers a partial unique index as
// the arbiter when the predicate is spelled out, and rejects the statement
// outright otherwise.
func (r *MatchRepository) CreateIfNew(ctx context.Context, m *domain.Match) (bool, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	query := `
		INSERT INTO matches (id, want_id, source, title, price, url, location,
			image_url, notified, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''),
			NULLIF($8, ''), FALSE, NOW())
		ON CONFLICT (want_id, url) WHERE url IS NOT NULL DO NOTHING`

	result, err := r.db.ExecContext(ctx, query,
		m.ID, m.WantID, m.Source, m.Title, m.Price, m.URL, m.Location, m.ImageURL,
	)
	if err != nil {
		return false, fmt.Errorf("insert match: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get affected rows: %w", err)
	}
	return rows == 1, nil
}

// MarkNotified flips notified=true for the given match ids in one update.
func (r *MatchRepository) MarkNotified(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := r.db.ExecContext(ctx,
		`UPDATE matches SET notified = TRUE WHERE id = ANY($1)`,
		pq.Array(ids))
	if err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	return nil
}

// ListByWant returns all matches for a want, newest first.
func (r *MatchRepository) ListByWant(ctx context.Context, wantID string) ([]domain.Match, error) {
	query := `SELECT ` + matchSelectList + `
		FROM matches
		WHERE want_id = $1
		ORDER BY created_at DESC`

	var matches []domain.Match
	if err := r.db.SelectContext(ctx, &matches, query, wantID); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return matches, nil
}

// ListUnnotified returns a want's unnotified matches in discovery order.
// Used by the operator resend sweep for matches whose original batch send
// (or the mark-notified update after it) failed.
func (r *MatchRepository) ListUnnotified(ctx context.Context, wantID string) ([]domain.Match, error) {
	query := `SELECT ` + matchSelectList + `
		FROM matches
		WHERE want_id = $1 AND notified = FALSE
		ORDER BY created_at ASC`

	var matches []domain.Match
	if err := r.db.SelectContext(ctx, &matches, query, wantID); err != nil {
		return nil, fmt.Errorf("list unnotified matches: %w", err)
	}
	return matches, nil
}
