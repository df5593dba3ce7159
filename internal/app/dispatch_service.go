// internal/app/dispatch_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"payment_reminder/internal/domain/notification"
	"payment_reminder/internal/domain/schedule"
	"payment_reminder/internal/domain/settings"
	"payment_reminder/internal/domain/subscription"
	"payment_reminder/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

// DefaultMissedThreshold is how late a reminder may fire before it counts as a missed-recovery.
const DefaultMissedThreshold = time.Hour

// PermissionSource reports the live platform permission.
type PermissionSource interface {
	Permission() settings.Permission
}

type DispatchDeps struct {
	ScheduleRepo     schedule.Repository
	SubscriptionRepo subscription.Repository
	SettingsProvider settings.Provider
	Renderer         Renderer
	Permissions      PermissionSource
	Reliability      notification.ReliabilityLog
	Events           notification.EventSink
	Location         *time.Location
	Clock            func() time.Time
	MissedThreshold  time.Duration
	UserAgent        string
	// Lock serializes sweeps with schedule refreshes. Share it with ScheduleService.
	Lock   sync.Locker
	Logger *logrus.Entry
}

// SweepResult summarizes one dispatch sweep.
type SweepResult struct {
	Pending    int      `json:"pending"`
	Ready      int      `json:"ready"`
	Groups     int      `json:"groups"`
	Dispatched int      `json:"dispatched"`
	Blocked    int      `json:"blocked"`
	Failed     int      `json:"failed"`
	Skipped    int      `json:"skipped"`
	Notified   []string `json:"notified"`
}

// DispatchService finds due reminders, renders them and stamps them as notified.
type DispatchService struct {
	scheduleRepo     schedule.Repository
	subscriptionRepo subscription.Repository
	settingsProvider settings.Provider
	renderer         Renderer
	permissions      PermissionSource
	reliability      notification.ReliabilityLog
	events           notification.EventSink
	loc              *time.Location
	clock            func() time.Time
	missedThreshold  time.Duration
	userAgent        string
	lock             sync.Locker
	logger           *logrus.Entry
}

func NewDispatchService(d DispatchDeps) *DispatchService {
	s := &DispatchService{
		scheduleRepo:     d.ScheduleRepo,
		subscriptionRepo: d.SubscriptionRepo,
		settingsProvider: d.SettingsProvider,
		renderer:         d.Renderer,
		permissions:      d.Permissions,
		reliability:      d.Reliability,
		events:           d.Events,
		loc:              locOrLocal(d.Location),
		clock:            d.Clock,
		missedThreshold:  d.MissedThreshold,
		userAgent:        d.UserAgent,
		lock:             d.Lock,
		logger:           d.Logger,
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.missedThreshold <= 0 {
		s.missedThreshold = DefaultMissedThreshold
	}
	if s.lock == nil {
		s.lock = &sync.Mutex{}
	}
	if s.logger == nil {
		s.logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return s
}

type dueGroup struct {
	day     string
	entries []*schedule.Entry
}

type groupOutcome struct {
	status notification.DeliveryStatus // empty when the group was skipped
	ids    []string
}

type resolvedEntry struct {
	entry *schedule.Entry
	sub   *subscription.Subscription
}

// CheckAndDispatchNotifications runs one dispatch sweep.
//
// Ready entries (pending, ScheduledFor before now) are bucketed by the calendar date of
// PaymentDueAt. Each bucket is re-read from the store right before rendering so an entry
// stamped by a concurrent sweep is never shown twice. A failure in one bucket is logged
// and the sweep moves on to the next one. Only loading the pending entries can fail the
// whole sweep.
func (s *DispatchService) CheckAndDispatchNotifications(ctx context.Context) (*SweepResult, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	started := time.Now()
	defer func() { metrics.SweepDuration.Observe(time.Since(started).Seconds()) }()

	now := s.clock()
	pending, err := s.scheduleRepo.GetPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending notifications: %w", err)
	}
	metrics.PendingEntries.Set(float64(len(pending)))

	ready := make([]*schedule.Entry, 0, len(pending))
	for _, e := range pending {
		if e.IsNotified() || !e.ScheduledFor.Before(now) {
			continue
		}
		ready = append(ready, e)
	}

	res := &SweepResult{Pending: len(pending), Ready: len(ready), Notified: []string{}}
	if len(ready) == 0 {
		return res, nil
	}

	groups := groupByDueDate(ready)
	res.Groups = len(groups)
	for _, g := range groups {
		out := s.dispatchGroup(ctx, g, now)
		switch out.status {
		case notification.StatusSuccess, notification.StatusMissedRecovery:
			res.Dispatched++
			res.Notified = append(res.Notified, out.ids...)
		case notification.StatusBlocked:
			res.Blocked++
		case notification.StatusError:
			res.Failed++
		default:
			res.Skipped++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"ready":      res.Ready,
		"groups":     res.Groups,
		"dispatched": res.Dispatched,
		"blocked":    res.Blocked,
		"failed":     res.Failed,
	}).Info("Dispatch sweep finished")
	return res, nil
}

func (s *DispatchService) dispatchGroup(ctx context.Context, g dueGroup, now time.Time) groupOutcome {
	log := s.logger.WithFields(logrus.Fields{"group_date": g.day, "entries": len(g.entries)})

	out, err := s.deliverGroup(ctx, g, now, log)
	if err != nil {
		ids := entryIDs(g.entries)
		log.WithError(err).Error("Failed to dispatch reminder group")
		s.recordOutcome(ctx, notification.StatusError, ids, now)
		return groupOutcome{status: notification.StatusError, ids: ids}
	}
	return out
}

func (s *DispatchService) deliverGroup(ctx context.Context, g dueGroup, now time.Time, log *logrus.Entry) (out groupOutcome, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic while dispatching group %s: %v", g.day, p)
		}
	}()

	live, err := s.revalidate(ctx, g, now)
	if err != nil {
		return groupOutcome{}, err
	}
	if len(live) == 0 {
		log.Debug("Group already notified by another sweep")
		return groupOutcome{}, nil
	}

	resolved, err := s.resolve(ctx, live, log)
	if err != nil {
		return groupOutcome{}, err
	}
	if len(resolved) == 0 {
		return groupOutcome{}, nil
	}

	ids := make([]string, len(resolved))
	for i, r := range resolved {
		ids[i] = r.entry.SubscriptionID
	}

	var shown *notification.Notification
	if len(resolved) == 1 {
		shown, err = s.renderer.DisplayNotification(ctx, SingleNotificationRequest{
			Subscription: resolved[0].sub,
			PaymentDueAt: resolved[0].entry.PaymentDueAt,
		})
	} else {
		subs := make([]*subscription.Subscription, len(resolved))
		for i, r := range resolved {
			subs[i] = r.sub
		}
		shown, err = s.renderer.DisplayGroupedNotification(ctx, GroupedNotificationRequest{
			Subscriptions: subs,
			PaymentDueAt:  resolved[0].entry.PaymentDueAt,
		})
	}
	if err != nil {
		return groupOutcome{}, err
	}

	if shown == nil {
		log.WithField("count", len(ids)).Warn("Notification blocked, group stays pending")
		s.recordOutcome(ctx, notification.StatusBlocked, ids, now)
		return groupOutcome{status: notification.StatusBlocked, ids: ids}, nil
	}

	if err := s.scheduleRepo.MarkBatchAsNotified(ctx, ids, now); err != nil {
		return groupOutcome{}, fmt.Errorf("failed to mark group as notified: %w", err)
	}

	status := notification.StatusSuccess
	if now.Sub(oldestScheduled(live)) > s.missedThreshold {
		status = notification.StatusMissedRecovery
	}
	log.WithFields(logrus.Fields{"count": len(ids), "status": status, "tag": shown.Options.Tag}).Info("Reminder dispatched")
	s.recordOutcome(ctx, status, ids, now)
	return groupOutcome{status: status, ids: ids}, nil
}

// revalidate re-reads each entry of g from the live store and keeps only those still
// pending, still ready at now and still due on the group's day.
func (s *DispatchService) revalidate(ctx context.Context, g dueGroup, now time.Time) ([]*schedule.Entry, error) {
	live := make([]*schedule.Entry, 0, len(g.entries))
	for _, e := range g.entries {
		cur, err := s.scheduleRepo.GetBySubscriptionID(ctx, e.SubscriptionID)
		if err != nil {
			if errors.Is(err, schedule.ErrEntryNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to re-read schedule entry %s: %w", e.SubscriptionID, err)
		}
		if cur.IsNotified() || !cur.ScheduledFor.Before(now) || dateKey(cur.PaymentDueAt) != g.day {
			continue
		}
		live = append(live, cur)
	}
	return live, nil
}

// resolve loads the subscription behind each entry. Entries whose subscription was deleted are dropped.
func (s *DispatchService) resolve(ctx context.Context, entries []*schedule.Entry, log *logrus.Entry) ([]resolvedEntry, error) {
	out := make([]resolvedEntry, 0, len(entries))
	for _, e := range entries {
		sub, err := s.subscriptionRepo.GetByID(ctx, e.SubscriptionID)
		if err != nil {
			if errors.Is(err, subscription.ErrNotFound) {
				log.WithField("subscription_id", e.SubscriptionID).Warn("Subscription not found for scheduled reminder, dropping entry")
				metrics.DroppedEntriesTotal.Inc()
				continue
			}
			return nil, fmt.Errorf("failed to load subscription %s: %w", e.SubscriptionID, err)
		}
		out = append(out, resolvedEntry{entry: e, sub: sub})
	}
	return out, nil
}

// recordOutcome updates metrics and appends to the reliability log. Log failures are never returned.
func (s *DispatchService) recordOutcome(ctx context.Context, status notification.DeliveryStatus, ids []string, now time.Time) {
	metrics.DispatchGroupsTotal.WithLabelValues(string(status)).Inc()
	metrics.DispatchSubscriptionsTotal.WithLabelValues(string(status)).Add(float64(len(ids)))

	if s.reliability == nil {
		return
	}
	entry := notification.ReliabilityEntry{
		Timestamp:       now,
		SubscriptionIDs: append([]string(nil), ids...),
		Count:           len(ids),
		Status:          status,
		UserAgent:       s.userAgent,
	}
	if err := s.reliability.Append(ctx, entry); err != nil {
		s.logger.WithError(err).WithField("status", status).Error("Failed to write reliability log entry")
	}
}

// SyncNotificationPermissions copies the live platform permission into settings.
// It reports whether settings changed. No notifications are sent.
func (s *DispatchService) SyncNotificationPermissions(ctx context.Context) (bool, error) {
	if s.permissions == nil {
		return false, nil
	}
	current := s.permissions.Permission()

	st, err := s.settingsProvider.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load settings: %w", err)
	}
	if st.NotificationPermission == current {
		return false, nil
	}

	previous := st.NotificationPermission
	st.NotificationPermission = current
	if current == settings.PermissionDenied {
		at := s.clock()
		st.PermissionDeniedAt = &at
	}
	if err := s.settingsProvider.Update(ctx, st); err != nil {
		return false, fmt.Errorf("failed to save permission change: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"from": previous, "to": current}).Info("Notification permission changed")
	if current == settings.PermissionDenied && s.events != nil {
		s.events.Track(ctx, notification.EventNotificationDenied, map[string]any{"previous": string(previous)})
	}
	return true, nil
}

// groupByDueDate buckets entries by the calendar date of PaymentDueAt, ordered by date.
func groupByDueDate(entries []*schedule.Entry) []dueGroup {
	byDay := make(map[string]*dueGroup)
	var days []string
	for _, e := range entries {
		day := dateKey(e.PaymentDueAt)
		g, ok := byDay[day]
		if !ok {
			g = &dueGroup{day: day}
			byDay[day] = g
			days = append(days, day)
		}
		g.entries = append(g.entries, e)
	}
	sort.Strings(days)

	groups := make([]dueGroup, 0, len(days))
	for _, d := range days {
		groups = append(groups, *byDay[d])
	}
	return groups
}

func oldestScheduled(entries []*schedule.Entry) time.Time {
	oldest := entries[0].ScheduledFor
	for _, e := range entries[1:] {
		if e.ScheduledFor.Before(oldest) {
			oldest = e.ScheduledFor
		}
	}
	return oldest
}

func entryIDs(entries []*schedule.Entry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.SubscriptionID
	}
	return ids
}
