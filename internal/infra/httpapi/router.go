// Package httpapi exposes manual triggers, read-only views, health and metrics over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"payment_reminder/internal/app"
	"payment_reminder/internal/domain/notification"
	"payment_reminder/internal/domain/schedule"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Dispatcher runs sweeps on demand.
type Dispatcher interface {
	SyncNotificationPermissions(ctx context.Context) (bool, error)
	CheckAndDispatchNotifications(ctx context.Context) (*app.SweepResult, error)
}

// Scheduler exposes the stored schedule.
type Scheduler interface {
	RefreshSchedule(ctx context.Context) ([]*schedule.Entry, error)
	Upcoming(ctx context.Context) ([]app.UpcomingReminder, error)
}

type Deps struct {
	Dispatcher  Dispatcher
	Scheduler   Scheduler
	Reliability notification.ReliabilityLog
	Logger      *logrus.Entry
	// TriggerRate bounds POST /sweep and POST /schedule/refresh, per second. Zero means 1.
	TriggerRate rate.Limit
}

// NewRouter builds the HTTP API.
//
//	POST /sweep             run a dispatch sweep now (the "app regained focus" trigger)
//	POST /schedule/refresh  recompute the schedule
//	GET  /schedule          pending reminders in firing order
//	GET  /reliability       dispatch audit trail, oldest first
//	GET  /healthz
//	GET  /metrics           Prometheus
func NewRouter(d Deps) http.Handler {
	if d.TriggerRate <= 0 {
		d.TriggerRate = 1
	}
	if d.Logger == nil {
		d.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	h := &handler{
		dispatcher:  d.Dispatcher,
		scheduler:   d.Scheduler,
		reliability: d.Reliability,
		logger:      d.Logger,
	}
	limiter := rate.NewLimiter(d.TriggerRate, 1)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))

	r.Get("/healthz", h.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(rateLimit(limiter))
		r.Post("/sweep", h.sweep)
		r.Post("/schedule/refresh", h.refresh)
	})
	r.Get("/schedule", h.schedule)
	r.Get("/reliability", h.reliabilityLog)
	return r
}

func rateLimit(l *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				writeError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
