package httpapi

import (
	"net/http"
	"time"

	"payment_reminder/internal/app"
	"payment_reminder/internal/domain/notification"

	"github.com/sirupsen/logrus"
)

type handler struct {
	dispatcher  Dispatcher
	scheduler   Scheduler
	reliability notification.ReliabilityLog
	logger      *logrus.Entry
}

type scheduledReminder struct {
	SubscriptionID string    `json:"subscriptionId"`
	Name           string    `json:"name"`
	Amount         float64   `json:"amount"`
	Currency       string    `json:"currency"`
	ScheduledFor   time.Time `json:"scheduledFor"`
	PaymentDueAt   string    `json:"paymentDueAt"`
}

type refreshResult struct {
	Entries int `json:"entries"`
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "ok"})
}

func (h *handler) sweep(w http.ResponseWriter, r *http.Request) {
	if _, err := h.dispatcher.SyncNotificationPermissions(r.Context()); err != nil {
		h.logger.WithError(err).Warn("Permission sync failed before manual sweep")
	}
	res, err := h.dispatcher.CheckAndDispatchNotifications(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Manual sweep failed")
		writeError(w, http.StatusInternalServerError, "sweep failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	entries, err := h.scheduler.RefreshSchedule(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Manual schedule refresh failed")
		writeError(w, http.StatusInternalServerError, "refresh failed")
		return
	}
	writeJSON(w, http.StatusOK, refreshResult{Entries: len(entries)})
}

func (h *handler) schedule(w http.ResponseWriter, r *http.Request) {
	items, err := h.scheduler.Upcoming(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list schedule")
		writeError(w, http.StatusInternalServerError, "could not load schedule")
		return
	}
	writeJSON(w, http.StatusOK, toScheduled(items))
}

func (h *handler) reliabilityLog(w http.ResponseWriter, r *http.Request) {
	if h.reliability == nil {
		writeJSON(w, http.StatusOK, []notification.ReliabilityEntry{})
		return
	}
	entries, err := h.reliability.Entries(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to read reliability log")
		writeError(w, http.StatusInternalServerError, "could not load reliability log")
		return
	}
	if entries == nil {
		entries = []notification.ReliabilityEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func toScheduled(items []app.UpcomingReminder) []scheduledReminder {
	out := make([]scheduledReminder, 0, len(items))
	for _, it := range items {
		out = append(out, scheduledReminder{
			SubscriptionID: it.Entry.SubscriptionID,
			Name:           it.Subscription.Name,
			Amount:         it.Subscription.Amount,
			Currency:       it.Subscription.Currency,
			ScheduledFor:   it.Entry.ScheduledFor,
			PaymentDueAt:   it.Entry.PaymentDueAt.Format("2006-01-02"),
		})
	}
	return out
}
