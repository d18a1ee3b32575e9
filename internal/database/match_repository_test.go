package database_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/neticnz/matcher/internal/database"
	"github.com/neticnz/matcher/internal/domain"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestMatchRepository_CreateIfNew(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewMatchRepository(db)
	ctx := context.Background()

	match := func() *domain.Match {
		return &domain.Match{
			WantID:   "want-1",
			Source:   domain.SourceTradeMe,
			Title:    "TaylorMade driver",
			Price:    250,
			URL:      "https://tm.example/listing/1",
			Location: "Wellington",
		}
	}

	testCases := []struct {
		name        string
		setupMock   func()
		wantCreated bool
		wantErr     bool
	}{
		{
			name: "new match is inserted",
			setupMock: func() {
				mock.ExpectExec("INSERT INTO matches").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			wantCreated: true,
		},
		{
			name: "conflicting dedup key is skipped, not an error",
			setupMock: func() {
				mock.ExpectExec("INSERT INTO matches").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantCreated: false,
		},
		{
			name: "database error returns error",
			setupMock: func() {
				mock.ExpectExec("INSERT INTO matches").
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMock()

			created, err := repo.CreateIfNew(ctx, match())
			if (err != nil) != tc.wantErr {
				t.Errorf("CreateIfNew() error = %v, wantErr %v", err, tc.wantErr)
			}
			if created != tc.wantCreated {
				t.Errorf("CreateIfNew() created = %v, want %v", created, tc.wantCreated)
			}

			if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
				t.Errorf("unfulfilled expectations: %v", expectErr)
			}
		})
	}
}

// The unique index behind the dedup key is partial (url IS NOT NULL), and
// Postgres only accepts it as the conflict arbiter when the INSERT repeats
// that predicate. sqlmock cannot reject the statement the way the server
// would, so this pins the exact conflict clause instead.
func TestMatchRepository_CreateIfNew_ConflictClauseNamesIndexPredicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewMatchRepository(db)

	mock.ExpectExec(`INSERT INTO matches .* ON CONFLICT \(want_id, url\) WHERE url IS NOT NULL DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	m := &domain.Match{WantID: "want-1", Source: domain.SourceTradeMe, Title: "x",
		URL: "https://tm.example/listing/1"}
	if _, err := repo.CreateIfNew(context.Background(), m); err != nil {
		t.Fatalf("CreateIfNew() error = %v", err)
	}
	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("conflict clause does not repeat the partial index predicate: %v", expectErr)
	}
}

func TestMatchRepository_CreateIfNew_AssignsID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewMatchRepository(db)

	mock.ExpectExec("INSERT INTO matches").
		WillReturnResult(sqlmock.NewResult(0, 1))

	m := &domain.Match{WantID: "want-1", Source: domain.SourceTradeMe, Title: "x"}
	if _, err := repo.CreateIfNew(context.Background(), m); err != nil {
		t.Fatalf("CreateIfNew() error = %v", err)
	}
	if m.ID == "" {
		t.Error("CreateIfNew() should assign an ID to a match without one")
	}
}

func TestMatchRepository_MarkNotified(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewMatchRepository(db)
	ctx := context.Background()

	ids := []string{"m1", "m2"}

	mock.ExpectExec("UPDATE matches SET notified = TRUE").
		WithArgs(pq.Array(ids)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := repo.MarkNotified(ctx, ids); err != nil {
		t.Errorf("MarkNotified() error = %v", err)
	}
	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("unfulfilled expectations: %v", expectErr)
	}

	// Empty slice is a no-op with no query.
	if err := repo.MarkNotified(ctx, nil); err != nil {
		t.Errorf("MarkNotified(nil) error = %v", err)
	}
}

func TestMatchRepository_ListUnnotified(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewMatchRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "want_id", "source", "title", "price", "url", "location",
		"image_url", "notified", "created_at",
	}).
		AddRow("m1", "want-1", "trademe", "Driver A", 250.0, "https://tm.example/1", "Wellington", "", false, now).
		AddRow("m2", "want-1", "trademe", "Driver B", 199.0, "https://tm.example/2", "", "", false, now)

	mock.ExpectQuery("SELECT (.+) FROM matches").
		WithArgs("want-1").
		WillReturnRows(rows)

	matches, err := repo.ListUnnotified(context.Background(), "want-1")
	if err != nil {
		t.Fatalf("ListUnnotified() error = %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("ListUnnotified() returned %d matches, want 2", len(matches))
	}
	if matches[0].Title != "Driver A" {
		t.Errorf("first match = %q, want discovery order preserved", matches[0].Title)
	}
}
