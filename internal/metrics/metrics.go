// Package metrics exposes prometheus counters for the match pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the pipeline's prometheus metrics.
type Collector struct {
	RunsTotal          *prometheus.CounterVec
	WantsSearched      prometheus.Counter
	NewMatches         prometheus.Counter
	NotificationsSent  prometheus.Counter
	SearchFailures     prometheus.Counter
	NotifyFailures     prometheus.Counter
	MarkNotifyFailures prometheus.Counter
}

// NewCollector creates and registers the pipeline metrics on the given
// registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matcher_runs_total",
			Help: "Pipeline runs by outcome.",
		}, []string{"status"}),
		WantsSearched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matcher_wants_searched_total",
			Help: "Wants processed across all runs.",
		}),
		NewMatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matcher_new_matches_total",
			Help: "New match rows created across all runs.",
		}),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matcher_notifications_sent_total",
			Help: "Consolidated notification emails sent.",
		}),
		SearchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matcher_search_failures_total",
			Help: "Per-want search provider failures (absorbed).",
		}),
		NotifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matcher_notify_failures_total",
			Help: "Per-batch notification send failures (absorbed).",
		}),
		MarkNotifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matcher_mark_notified_failures_total",
			Help: "Failures marking matches notified after a successful send.",
		}),
	}

	reg.MustRegister(
		c.RunsTotal,
		c.WantsSearched,
		c.NewMatches,
		c.NotificationsSent,
		c.SearchFailures,
		c.NotifyFailures,
		c.MarkNotifyFailures,
	)
	return c
}

// NewNopCollector returns a collector registered on a throwaway registry,
// for tests.
func NewNopCollector() *Collector {
	return NewCollector(prometheus.NewRegistry())
}
