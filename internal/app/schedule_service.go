package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"payment_reminder/internal/domain/schedule"
	"payment_reminder/internal/domain/settings"
	"payment_reminder/internal/domain/subscription"
	"payment_reminder/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

var ErrInvalidSettings = fmt.Errorf("invalid notification settings")

type ScheduleDeps struct {
	SubscriptionRepo subscription.Repository
	SettingsProvider settings.Provider
	ScheduleRepo     schedule.Repository
	Location         *time.Location
	Clock            func() time.Time
	Lock             sync.Locker
	Logger           *logrus.Entry
}

// ScheduleService recomputes the persisted reminder schedule and applies settings changes.
type ScheduleService struct {
	subscriptionRepo subscription.Repository
	settingsProvider settings.Provider
	scheduleRepo     schedule.Repository
	loc              *time.Location
	clock            func() time.Time
	lock             sync.Locker
	logger           *logrus.Entry
}

func NewScheduleService(d ScheduleDeps) *ScheduleService {
	s := &ScheduleService{
		subscriptionRepo: d.SubscriptionRepo,
		settingsProvider: d.SettingsProvider,
		scheduleRepo:     d.ScheduleRepo,
		loc:              locOrLocal(d.Location),
		clock:            d.Clock,
		lock:             d.Lock,
		logger:           d.Logger,
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.lock == nil {
		s.lock = &sync.Mutex{}
	}
	if s.logger == nil {
		s.logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return s
}

// RefreshSchedule recomputes the schedule from the current subscriptions and settings and
// replaces the stored one. An entry keeps its NotifiedAt when the same subscription still
// has the same payment date, so a recompute never re-arms a reminder that already fired.
// A pending entry that is already overdue keeps its earlier ScheduledFor, so a sweep after
// downtime still sees how late the reminder is.
func (s *ScheduleService) RefreshSchedule(ctx context.Context) ([]*schedule.Entry, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.refreshLocked(ctx)
}

func (s *ScheduleService) refreshLocked(ctx context.Context) ([]*schedule.Entry, error) {
	subs, err := s.subscriptionRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	st, err := s.settingsProvider.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	now := s.clock()
	entries, err := CalculateNotificationSchedule(subs, st, now, s.loc)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate schedule: %w", err)
	}

	if len(entries) == 0 {
		if err := s.scheduleRepo.Clear(ctx); err != nil {
			return nil, fmt.Errorf("failed to clear schedule: %w", err)
		}
		metrics.ScheduledEntries.Set(0)
		s.logger.WithField("can_schedule", st.CanSchedule()).Info("Schedule cleared")
		return entries, nil
	}

	existing, err := s.scheduleRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load current schedule: %w", err)
	}
	carried, overdue := carryOver(entries, existing, now)
	if overdue > 0 {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].ScheduledFor.Before(entries[j].ScheduledFor)
		})
	}

	if err := s.scheduleRepo.ReplaceAll(ctx, entries); err != nil {
		return nil, fmt.Errorf("failed to store schedule: %w", err)
	}
	metrics.ScheduledEntries.Set(float64(len(entries)))
	s.logger.WithFields(logrus.Fields{"entries": len(entries), "already_notified": carried, "overdue": overdue}).Info("Schedule refreshed")
	return entries, nil
}

// UpdateSettings applies mutate to the stored settings, validates and saves them, then
// refreshes the schedule.
func (s *ScheduleService) UpdateSettings(ctx context.Context, mutate func(*settings.Settings)) (*settings.Settings, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	st, err := s.settingsProvider.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	mutate(st)
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	st.UpdatedAt = s.clock()
	if err := s.settingsProvider.Update(ctx, st); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	if _, err := s.refreshLocked(ctx); err != nil {
		return st, err
	}
	return st, nil
}

// Settings returns the stored notification settings.
func (s *ScheduleService) Settings(ctx context.Context) (*settings.Settings, error) {
	st, err := s.settingsProvider.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return st, nil
}

// UpcomingReminder pairs a schedule entry with its subscription for display.
type UpcomingReminder struct {
	Entry        *schedule.Entry
	Subscription *subscription.Subscription
}

// Upcoming lists pending reminders in firing order. Entries of deleted subscriptions are skipped.
func (s *ScheduleService) Upcoming(ctx context.Context) ([]UpcomingReminder, error) {
	pending, err := s.scheduleRepo.GetPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending notifications: %w", err)
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].ScheduledFor.Before(pending[j].ScheduledFor)
	})

	out := make([]UpcomingReminder, 0, len(pending))
	for _, e := range pending {
		sub, err := s.subscriptionRepo.GetByID(ctx, e.SubscriptionID)
		if err != nil {
			continue
		}
		out = append(out, UpcomingReminder{Entry: e, Subscription: sub})
	}
	return out, nil
}

// carryOver copies state from the previous schedule onto entries with the same subscription
// and payment date. NotifiedAt always carries. For a pending entry whose recomputed slot is
// already due, the older ScheduledFor is kept.
func carryOver(entries, existing []*schedule.Entry, now time.Time) (notified, overdue int) {
	prev := make(map[string]*schedule.Entry, len(existing))
	for _, e := range existing {
		prev[e.SubscriptionID] = e
	}
	for _, e := range entries {
		old, ok := prev[e.SubscriptionID]
		if !ok || dateKey(old.PaymentDueAt) != dateKey(e.PaymentDueAt) {
			continue
		}
		if old.IsNotified() {
			at := *old.NotifiedAt
			e.NotifiedAt = &at
			notified++
			continue
		}
		if !e.ScheduledFor.After(now) && !old.ScheduledFor.IsZero() && old.ScheduledFor.Before(e.ScheduledFor) {
			e.ScheduledFor = old.ScheduledFor
			overdue++
		}
	}
	return notified, overdue
}
