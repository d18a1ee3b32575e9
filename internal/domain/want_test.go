package domain_test

import (
	"errors"
	"testing"

	"github.com/neticnz/matcher/internal/domain"
)

func TestWant_SearchQuery(t *testing.T) {
	testCases := []struct {
		name        string
		title       string
		description string
		want        string
	}{
		{"title only", "golf driver", "", "golf driver"},
		{"title and description", "golf driver", "left handed", "golf driver left handed"},
		{"surrounding whitespace trimmed", "  golf driver  ", "", "golf driver"},
		{"empty want", "", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := domain.Want{Title: tc.title, Description: tc.description}
			if got := w.SearchQuery(); got != tc.want {
				t.Errorf("SearchQuery() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestWant_Eligible(t *testing.T) {
	testCases := []struct {
		name       string
		status     domain.WantStatus
		autoSearch bool
		want       bool
	}{
		{"active with auto-search", domain.WantStatusActive, true, true},
		{"active without auto-search", domain.WantStatusActive, false, false},
		{"fulfilled", domain.WantStatusFulfilled, true, false},
		{"expired", domain.WantStatusExpired, true, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := domain.Want{Status: tc.status, AutoSearch: tc.autoSearch}
			if got := w.Eligible(); got != tc.want {
				t.Errorf("Eligible() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNewWant(t *testing.T) {
	w, err := domain.NewWant("Golf driver", "Wellington", "buyer@example.com")
	if err != nil {
		t.Fatalf("NewWant() error = %v", err)
	}
	if w.Status != domain.WantStatusActive {
		t.Errorf("Status = %v, want %v", w.Status, domain.WantStatusActive)
	}
	if !w.AutoSearch {
		t.Error("AutoSearch should default to true")
	}

	if _, err := domain.NewWant("", "Wellington", "buyer@example.com"); !errors.Is(err, domain.ErrInvalidWant) {
		t.Errorf("NewWant with empty title error = %v, want ErrInvalidWant", err)
	}
	if _, err := domain.NewWant("Golf driver", "Wellington", ""); !errors.Is(err, domain.ErrInvalidWant) {
		t.Errorf("NewWant with empty email error = %v, want ErrInvalidWant", err)
	}
}

func TestWant_SetMaxBudget(t *testing.T) {
	w := domain.Want{}
	if err := w.SetMaxBudget(350.50); err != nil {
		t.Fatalf("SetMaxBudget() error = %v", err)
	}
	if w.MaxBudget == nil || *w.MaxBudget != 350.50 {
		t.Errorf("MaxBudget = %v, want 350.50", w.MaxBudget)
	}

	if err := w.SetMaxBudget(-1); !errors.Is(err, domain.ErrInvalidWant) {
		t.Errorf("SetMaxBudget(-1) error = %v, want ErrInvalidWant", err)
	}
}

func TestNewMatch(t *testing.T) {
	m, err := domain.NewMatch("want-1", domain.SourceTradeMe, domain.Listing{
		Title: "TaylorMade driver",
		Price: 250,
		URL:   "https://example.com/listing/1",
	})
	if err != nil {
		t.Fatalf("NewMatch() error = %v", err)
	}
	if m.Notified {
		t.Error("new match should start unnotified")
	}
	if !m.HasDedupKey() {
		t.Error("match with URL should have a dedup key")
	}

	urlless, err := domain.NewMatch("want-1", domain.SourceTradeMe, domain.Listing{Title: "No link"})
	if err != nil {
		t.Fatalf("NewMatch() error = %v", err)
	}
	if urlless.HasDedupKey() {
		t.Error("match without URL must not have a dedup key")
	}

	if _, err := domain.NewMatch("", domain.SourceTradeMe, domain.Listing{}); !errors.Is(err, domain.ErrInvalidMatch) {
		t.Errorf("NewMatch without want_id error = %v, want ErrInvalidMatch", err)
	}
	if _, err := domain.NewMatch("want-1", "", domain.Listing{}); !errors.Is(err, domain.ErrInvalidMatch) {
		t.Errorf("NewMatch without source error = %v, want ErrInvalidMatch", err)
	}
	if _, err := domain.NewMatch("want-1", domain.SourceTradeMe, domain.Listing{Price: -5}); !errors.Is(err, domain.ErrInvalidMatch) {
		t.Errorf("NewMatch with negative price error = %v, want ErrInvalidMatch", err)
	}
}

func TestNewOffer(t *testing.T) {
	o, err := domain.NewOffer("want-1", "Sam", "sam@example.com")
	if err != nil {
		t.Fatalf("NewOffer() error = %v", err)
	}
	if o.Status != domain.OfferStatusPending {
		t.Errorf("Status = %v, want %v", o.Status, domain.OfferStatusPending)
	}

	if _, err := domain.NewOffer("", "Sam", "sam@example.com"); err == nil {
		t.Error("NewOffer without want_id should fail")
	}
}
