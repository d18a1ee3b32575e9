package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neticnz/matcher/internal/api"
	"github.com/neticnz/matcher/internal/config"
	"github.com/neticnz/matcher/internal/domain"
	"github.com/neticnz/matcher/internal/logger"
)

type fakePipeline struct {
	runCalls    int
	runSummary  domain.RunSummary
	runErr      error
	runWantErr  error
	resendCount int
}

func (f *fakePipeline) Run(_ context.Context) (domain.RunSummary, error) {
	f.runCalls++
	return f.runSummary, f.runErr
}

func (f *fakePipeline) RunWant(_ context.Context, _ string) (int, int, error) {
	if f.runWantErr != nil {
		return 0, 0, f.runWantErr
	}
	return 1, 5, nil
}

func (f *fakePipeline) ResendUnnotified(_ context.Context, _ string) (int, error) {
	return f.resendCount, nil
}

type fakeWantStore struct {
	wants map[string]*domain.Want
}

func (f *fakeWantStore) Create(_ context.Context, w *domain.Want) error {
	w.ID = "w-created"
	return nil
}

func (f *fakeWantStore) GetByID(_ context.Context, id string) (*domain.Want, error) {
	if w, ok := f.wants[id]; ok {
		return w, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeWantStore) List(_ context.Context, _ domain.WantStatus, _ string) ([]domain.Want, error) {
	return nil, nil
}

func (f *fakeWantStore) Update(_ context.Context, id string, _ domain.WantUpdate) (*domain.Want, error) {
	if w, ok := f.wants[id]; ok {
		return w, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeWantStore) Ping(_ context.Context) error { return nil }

type fakeMatchStore struct {
	created bool
}

func (f *fakeMatchStore) CreateIfNew(_ context.Context, _ *domain.Match) (bool, error) {
	return f.created, nil
}

func (f *fakeMatchStore) ListByWant(_ context.Context, _ string) ([]domain.Match, error) {
	return nil, nil
}

type fakeOfferStore struct{}

func (f *fakeOfferStore) Create(_ context.Context, o *domain.Offer) error {
	o.ID = "o-created"
	return nil
}

func (f *fakeOfferStore) ListByWant(_ context.Context, _ string) ([]domain.Offer, error) {
	return nil, nil
}

const testSecret = "s3cret-token"

func newTestRouter(t *testing.T, pipeline *fakePipeline) http.Handler {
	t.Helper()

	r := api.NewRouter(api.RouterOptions{
		Pipeline: pipeline,
		Wants: &fakeWantStore{wants: map[string]*domain.Want{
			"w1": {ID: "w1", Title: "golf driver", ContactEmail: "u1@example.com"},
		}},
		Matches: &fakeMatchStore{created: true},
		Offers:  &fakeOfferStore{},
		Config: &config.Config{
			Matcher: config.MatcherConfig{CronSecret: testSecret},
		},
		Logger: logger.NewNopLogger(),
	})
	return r.SetupRoutes()
}

func doRequest(handler http.Handler, method, path, auth string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAutoMatch_RejectsWithoutValidSecret(t *testing.T) {
	testCases := []struct {
		name string
		auth string
	}{
		{"missing header", ""},
		{"wrong token", "Bearer wrong-token"},
		{"not bearer", testSecret},
		{"token with extra suffix", "Bearer " + testSecret + "x"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pipeline := &fakePipeline{}
			handler := newTestRouter(t, pipeline)

			rec := doRequest(handler, http.MethodGet, "/api/cron/auto-match", tc.auth, nil)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, 0, pipeline.runCalls, "rejected request must trigger no pipeline work")
			assert.JSONEq(t, `{"error": "Unauthorized"}`, rec.Body.String())
		})
	}
}

func TestAutoMatch_RunsWithValidSecret(t *testing.T) {
	pipeline := &fakePipeline{
		runSummary: domain.RunSummary{WantsSearched: 3, NewMatches: 5, EmailsSent: 2},
	}
	handler := newTestRouter(t, pipeline)

	rec := doRequest(handler, http.MethodGet, "/api/cron/auto-match", "Bearer "+testSecret, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, pipeline.runCalls)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(3), resp["wants_searched"])
	assert.Equal(t, float64(5), resp["new_matches"])
	assert.Equal(t, float64(2), resp["emails_sent"])
}

func TestAutoMatch_RunFailure(t *testing.T) {
	pipeline := &fakePipeline{runErr: errors.New("load wants: connection refused")}
	handler := newTestRouter(t, pipeline)

	rec := doRequest(handler, http.MethodGet, "/api/cron/auto-match", "Bearer "+testSecret, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "auto-match run failed")
}

func TestCreateWant(t *testing.T) {
	handler := newTestRouter(t, &fakePipeline{})

	t.Run("valid", func(t *testing.T) {
		body := []byte(`{
			"title": "golf driver",
			"location": "Wellington",
			"contact_email": "u1@example.com",
			"max_budget": 350.50
		}`)
		rec := doRequest(handler, http.MethodPost, "/api/v1/wants", "", body)

		require.Equal(t, http.StatusCreated, rec.Code)

		var w domain.Want
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &w))
		assert.Equal(t, "w-created", w.ID)
		assert.True(t, w.AutoSearch)
		assert.Equal(t, domain.WantStatusActive, w.Status)
	})

	t.Run("missing contact email", func(t *testing.T) {
		body := []byte(`{"title": "golf driver", "location": "Wellington"}`)
		rec := doRequest(handler, http.MethodPost, "/api/v1/wants", "", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("negative budget", func(t *testing.T) {
		body := []byte(`{
			"title": "golf driver",
			"location": "Wellington",
			"contact_email": "u1@example.com",
			"max_budget": -1
		}`)
		rec := doRequest(handler, http.MethodPost, "/api/v1/wants", "", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetWant_NotFound(t *testing.T) {
	handler := newTestRouter(t, &fakePipeline{})

	rec := doRequest(handler, http.MethodGet, "/api/v1/wants/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchWant(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		handler := newTestRouter(t, &fakePipeline{})

		rec := doRequest(handler, http.MethodPost, "/api/v1/search/w1", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, float64(1), resp["new_matches"])
		assert.Equal(t, float64(5), resp["total_searched"])
	})

	t.Run("unknown want", func(t *testing.T) {
		handler := newTestRouter(t, &fakePipeline{runWantErr: domain.ErrNotFound})

		rec := doRequest(handler, http.MethodPost, "/api/v1/search/missing", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestListMatches_RequiresWantID(t *testing.T) {
	handler := newTestRouter(t, &fakePipeline{})

	rec := doRequest(handler, http.MethodGet, "/api/v1/matches", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOffer(t *testing.T) {
	handler := newTestRouter(t, &fakePipeline{})

	t.Run("valid", func(t *testing.T) {
		body := []byte(`{
			"want_id": "w1",
			"offerer_name": "Sam",
			"offerer_email": "sam@example.com",
			"message": "Still in its wrapper"
		}`)
		rec := doRequest(handler, http.MethodPost, "/api/v1/offers", "", body)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("unknown want", func(t *testing.T) {
		body := []byte(`{
			"want_id": "missing",
			"offerer_name": "Sam",
			"offerer_email": "sam@example.com"
		}`)
		rec := doRequest(handler, http.MethodPost, "/api/v1/offers", "", body)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestResendEndpoint(t *testing.T) {
	handler := newTestRouter(t, &fakePipeline{resendCount: 4})

	rec := doRequest(handler, http.MethodPost, "/api/v1/wants/w1/resend", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(4), resp["resent"])
}

func TestHealthCheck(t *testing.T) {
	handler := newTestRouter(t, &fakePipeline{})

	rec := doRequest(handler, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "matcher", resp["service"])
}
