// Package matcher implements the match-discovery and notification pipeline.
//
// One run loads every active, auto-search want, queries the search provider
// per want, persists genuinely new matches, and sends one consolidated
// notification per want. Failures are isolated per want and per batch; only
// the initial want load can fail a run. Dedup is keyed on durable state
// (the matches table), so overlapping or repeated runs are safe.
package matcher

import (
	"context"
	"fmt"

	"github.com/neticnz/matcher/internal/domain"
	"github.com/neticnz/matcher/internal/logger"
	"github.com/neticnz/matcher/internal/metrics"
)

// Searcher queries one external marketplace for candidate listings.
type Searcher interface {
	Search(ctx context.Context, query string, maxPrice *float64, maxResults int) ([]domain.Listing, error)
}

// Mailer delivers consolidated match notifications.
type Mailer interface {
	SendMatchNotification(ctx context.Context, to, wantTitle string, matches []domain.Match) error
}

// WantStore is the read side of the wants table the pipeline needs.
type WantStore interface {
	ListAutoSearch(ctx context.Context) ([]domain.Want, error)
	GetByID(ctx context.Context, id string) (*domain.Want, error)
}

// MatchStore persists and updates match rows.
type MatchStore interface {
	CreateIfNew(ctx context.Context, m *domain.Match) (bool, error)
	MarkNotified(ctx context.Context, ids []string) error
	ListUnnotified(ctx context.Context, wantID string) ([]domain.Match, error)
}

// SeenCache short-circuits existence checks for already-known listings.
// Implementations must fail open: a cache error means "not seen".
type SeenCache interface {
	Seen(ctx context.Context, wantID, url string) bool
	MarkSeen(ctx context.Context, wantID, url string) error
}

// batch is the set of newly created matches for one want in one run, sent
// as a single notification. Ephemeral; discarded after the send attempt.
type batch struct {
	email     string
	wantTitle string
	matches   []domain.Match
}

// Pipeline orchestrates discovery and notification. All collaborators are
// injected; there is no shared process state.
type Pipeline struct {
	wants      WantStore
	matches    MatchStore
	searcher   Searcher
	mailer     Mailer // nil disables sending; matches still persist unnotified
	seen       SeenCache
	metrics    *metrics.Collector
	logger     logger.Logger
	maxResults int
}

// Options configures a Pipeline.
type Options struct {
	Wants      WantStore
	Matches    MatchStore
	Searcher   Searcher
	Mailer     Mailer
	Seen       SeenCache
	Metrics    *metrics.Collector
	Logger     logger.Logger
	MaxResults int
}

// New creates a pipeline.
func New(opts Options) *Pipeline {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 20
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewNopCollector()
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger()
	}
	return &Pipeline{
		wants:      opts.Wants,
		matches:    opts.Matches,
		searcher:   opts.Searcher,
		mailer:     opts.Mailer,
		seen:       opts.Seen,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
		maxResults: opts.MaxResults,
	}
}

// Run executes one full pipeline pass. It returns an error only when the
// initial want load fails; every other failure is absorbed into reduced
// counts. Wants are processed sequentially.
func (p *Pipeline) Run(ctx context.Context) (domain.RunSummary, error) {
	wants, err := p.wants.ListAutoSearch(ctx)
	if err != nil {
		p.metrics.RunsTotal.WithLabelValues("failed").Inc()
		return domain.RunSummary{}, fmt.Errorf("load wants: %w", err)
	}

	if len(wants) == 0 {
		p.logger.Info("no active wants to search")
		p.metrics.RunsTotal.WithLabelValues("success").Inc()
		return domain.RunSummary{}, nil
	}

	p.logger.Info("pipeline run started", logger.Int("wants", len(wants)))

	summary := domain.RunSummary{WantsSearched: len(wants)}
	var batches []batch

	for i := range wants {
		w := &wants[i]
		created, _ := p.searchWant(ctx, w)
		summary.NewMatches += len(created)

		if len(created) == 0 {
			continue
		}
		if w.ContactEmail == "" {
			// Matches stay persisted and unnotified; there is nowhere
			// to send them.
			p.logger.Warn("want has no contact email, skipping notification",
				logger.String("want_id", w.ID),
				logger.Int("new_matches", len(created)),
			)
			continue
		}
		batches = append(batches, batch{
			email:     w.ContactEmail,
			wantTitle: w.Title,
			matches:   created,
		})
	}

	for _, b := range batches {
		if p.deliver(ctx, b) {
			summary.EmailsSent++
		}
	}

	p.metrics.RunsTotal.WithLabelValues("success").Inc()
	p.metrics.WantsSearched.Add(float64(summary.WantsSearched))
	p.metrics.NewMatches.Add(float64(summary.NewMatches))

	p.logger.Info("pipeline run complete",
		logger.Int("wants_searched", summary.WantsSearched),
		logger.Int("new_matches", summary.NewMatches),
		logger.Int("emails_sent", summary.EmailsSent),
	)
	return summary, nil
}

// RunWant executes the search and notification steps for a single want,
// regardless of its auto-search flag. Used by the manual search endpoint.
// Returns the number of new matches and the number of candidates searched.
func (p *Pipeline) RunWant(ctx context.Context, wantID string) (newMatches, totalSearched int, err error) {
	w, err := p.wants.GetByID(ctx, wantID)
	if err != nil {
		return 0, 0, err
	}

	created, searched := p.searchWant(ctx, w)

	if len(created) > 0 && w.ContactEmail != "" {
		p.deliver(ctx, batch{
			email:     w.ContactEmail,
			wantTitle: w.Title,
			matches:   created,
		})
	}

	return len(created), searched, nil
}

// ResendUnnotified sends one batch containing every unnotified match for a
// want, then marks them notified. This is an operator action for matches
// whose original send (or the mark-notified update after it) failed; the
// automated run never picks them up again because the dedup key already
// exists.
func (p *Pipeline) ResendUnnotified(ctx context.Context, wantID string) (int, error) {
	w, err := p.wants.GetByID(ctx, wantID)
	if err != nil {
		return 0, err
	}
	if w.ContactEmail == "" {
		return 0, fmt.Errorf("want %s has no contact email", wantID)
	}

	matches, err := p.matches.ListUnnotified(ctx, wantID)
	if err != nil {
		return 0, fmt.Errorf("list unnotified: %w", err)
	}
	if len(matches) == 0 {
		return 0, nil
	}
	if p.mailer == nil {
		return 0, fmt.Errorf("email delivery is disabled")
	}

	if err := p.mailer.SendMatchNotification(ctx, w.ContactEmail, w.Title, matches); err != nil {
		return 0, fmt.Errorf("send notification: %w", err)
	}

	ids := matchIDs(matches)
	if err := p.matches.MarkNotified(ctx, ids); err != nil {
		p.metrics.MarkNotifyFailures.Inc()
		return len(matches), fmt.Errorf("sent but failed to mark notified: %w", err)
	}
	return len(matches), nil
}

// searchWant queries the provider for one want and persists new matches.
// All failures are absorbed: a search failure yields zero candidates, a
// per-candidate insert failure skips just that candidate.
func (p *Pipeline) searchWant(ctx context.Context, w *domain.Want) (created []domain.Match, searched int) {
	query := w.SearchQuery()

	listings, err := p.searcher.Search(ctx, query, w.MaxBudget, p.maxResults)
	if err != nil {
		p.metrics.SearchFailures.Inc()
		p.logger.Warn("search failed, want contributes no matches this run",
			logger.String("want_id", w.ID),
			logger.String("query", query),
			logger.Error(err),
		)
		return nil, 0
	}

	p.logger.Debug("search complete",
		logger.String("want_id", w.ID),
		logger.Int("results", len(listings)),
	)

	for _, l := range listings {
		m, err := domain.NewMatch(w.ID, domain.SourceTradeMe, l)
		if err != nil {
			p.logger.Warn("skipping invalid candidate",
				logger.String("want_id", w.ID),
				logger.Error(err),
			)
			continue
		}

		if m.HasDedupKey() && p.seen != nil && p.seen.Seen(ctx, w.ID, m.URL) {
			continue
		}

		wasCreated, err := p.matches.CreateIfNew(ctx, m)
		if err != nil {
			p.logger.Warn("failed to persist candidate, skipping",
				logger.String("want_id", w.ID),
				logger.String("url", m.URL),
				logger.Error(err),
			)
			continue
		}

		if m.HasDedupKey() && p.seen != nil {
			_ = p.seen.MarkSeen(ctx, w.ID, m.URL)
		}

		if wasCreated {
			created = append(created, *m)
		}
	}

	return created, len(listings)
}

// deliver sends one batch and, only after a successful send, marks its
// matches notified. Reports whether the email went out.
func (p *Pipeline) deliver(ctx context.Context, b batch) bool {
	if p.mailer == nil {
		p.logger.Debug("email delivery disabled, matches remain unnotified",
			logger.Int("matches", len(b.matches)),
		)
		return false
	}

	if err := p.mailer.SendMatchNotification(ctx, b.email, b.wantTitle, b.matches); err != nil {
		p.metrics.NotifyFailures.Inc()
		p.logger.Error("notification send failed, matches remain unnotified",
			logger.String("want_title", b.wantTitle),
			logger.Int("matches", len(b.matches)),
			logger.Error(err),
		)
		return false
	}

	p.metrics.NotificationsSent.Inc()

	if err := p.matches.MarkNotified(ctx, matchIDs(b.matches)); err != nil {
		// The email went out but the flag update failed. These matches
		// will not be rediscovered (their dedup keys exist), so they can
		// only be re-sent via the operator resend sweep. Logged distinctly
		// for reconciliation.
		p.metrics.MarkNotifyFailures.Inc()
		p.logger.Error("sent notification but failed to mark matches notified",
			logger.String("want_title", b.wantTitle),
			logger.Int("matches", len(b.matches)),
			logger.Error(err),
		)
	}
	return true
}

func matchIDs(matches []domain.Match) []string {
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	return ids
}
