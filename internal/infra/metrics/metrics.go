package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Dispatch outcomes, one increment per due-date group.
	DispatchGroupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_dispatch_groups_total",
			Help: "Total number of reminder groups processed, by outcome",
		},
		[]string{"status"},
	)
	// Subscriptions covered by those outcomes.
	DispatchSubscriptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_dispatch_subscriptions_total",
			Help: "Total number of subscriptions covered by dispatch outcomes",
		},
		[]string{"status"},
	)
	DroppedEntriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reminder_dropped_entries_total",
			Help: "Schedule entries dropped because their subscription no longer exists",
		},
	)
	PendingEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reminder_pending_entries",
			Help: "Schedule entries not yet notified, as seen by the last sweep",
		},
	)
	SweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reminder_sweep_duration_seconds",
			Help:    "Duration of dispatch sweeps in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
	ScheduledEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reminder_scheduled_entries",
			Help: "Entries produced by the last schedule refresh",
		},
	)
)

var registerOnce sync.Once

// Register adds all collectors to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			DispatchGroupsTotal,
			DispatchSubscriptionsTotal,
			DroppedEntriesTotal,
			PendingEntries,
			SweepDuration,
			ScheduledEntries,
		)
	})
}
