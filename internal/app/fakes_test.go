package app

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"payment_reminder/internal/domain/notification"
	"payment_reminder/internal/domain/settings"
	"payment_reminder/internal/domain/subscription"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testLogger() *logrus.Entry {
	l, _ := test.NewNullLogger()
	return logrus.NewEntry(l)
}

func utcDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newSub(id, name string, amount float64, due time.Time) *subscription.Subscription {
	return &subscription.Subscription{
		ID:              id,
		Name:            name,
		Amount:          amount,
		Currency:        "USD",
		BillingCycle:    subscription.BillingCycleMonthly,
		NextPaymentDate: due,
		IsActive:        true,
	}
}

func grantedSettings() *settings.Settings {
	st := settings.Default()
	st.NotificationsEnabled = true
	st.NotificationPermission = settings.PermissionGranted
	return st
}

type shownNotification struct {
	Title string
	Opts  notification.Options
}

// recordingSink records every Show call.
type recordingSink struct {
	mu         sync.Mutex
	available  bool
	permission settings.Permission
	refuse     bool
	err        error
	shown      []shownNotification
	closed     []*notification.Handle
	closeErr   error
}

func newRecordingSink() *recordingSink {
	return &recordingSink{available: true, permission: settings.PermissionGranted}
}

func (s *recordingSink) Available() bool { return s.available }

func (s *recordingSink) Permission() settings.Permission { return s.permission }

func (s *recordingSink) Show(_ context.Context, title string, opts notification.Options) (*notification.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = append(s.shown, shownNotification{Title: title, Opts: opts})
	if s.err != nil {
		return nil, s.err
	}
	if s.refuse {
		return nil, nil
	}
	return &notification.Handle{ID: fmt.Sprintf("h-%d", len(s.shown)), Tag: opts.Tag}, nil
}

func (s *recordingSink) Close(_ context.Context, h *notification.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = append(s.closed, h)
	return s.closeErr
}

func (s *recordingSink) Shown() []shownNotification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]shownNotification(nil), s.shown...)
}

type trackedEvent struct {
	Name  string
	Props map[string]any
}

type recordingEvents struct {
	mu     sync.Mutex
	events []trackedEvent
}

func (e *recordingEvents) Track(_ context.Context, event string, props map[string]any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, trackedEvent{Name: event, Props: props})
}

func (e *recordingEvents) Named(name string) []trackedEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []trackedEvent
	for _, ev := range e.events {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

type failingReliabilityLog struct{}

func (failingReliabilityLog) Append(context.Context, notification.ReliabilityEntry) error {
	return fmt.Errorf("quota exceeded")
}

func (failingReliabilityLog) Entries(context.Context) ([]notification.ReliabilityEntry, error) {
	return nil, fmt.Errorf("quota exceeded")
}

// flakySubscriptions fails GetByID for the listed ids with a non-not-found error.
type flakySubscriptions struct {
	subscription.Repository
	broken map[string]bool
}

func (f *flakySubscriptions) GetByID(ctx context.Context, id string) (*subscription.Subscription, error) {
	if f.broken[id] {
		return nil, fmt.Errorf("storage offline")
	}
	return f.Repository.GetByID(ctx, id)
}

type recordingNavigator struct {
	edited   []*subscription.Subscription
	cleared  int
	dueDay   time.Time
	dueSubs  []*subscription.Subscription
	showDues int
}

func (n *recordingNavigator) OpenEditView(_ context.Context, sub *subscription.Subscription) error {
	n.edited = append(n.edited, sub)
	return nil
}

func (n *recordingNavigator) ClearModal(context.Context) error {
	n.cleared++
	return nil
}

func (n *recordingNavigator) ShowPaymentsDue(_ context.Context, day time.Time, subs []*subscription.Subscription) error {
	n.showDues++
	n.dueDay = day
	n.dueSubs = subs
	return nil
}
