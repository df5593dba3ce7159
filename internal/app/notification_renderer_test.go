package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"payment_reminder/internal/domain/notification"
	"payment_reminder/internal/domain/settings"
	"payment_reminder/internal/domain/subscription"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T, sink, mirror *recordingSink, events *recordingEvents, now time.Time) *NotificationRenderer {
	t.Helper()
	d := RendererDeps{
		Sink:     sink,
		Messages: NewMessages("en"),
		Location: newYork(t),
		Clock:    fixedClock(now),
		Logger:   testLogger(),
	}
	if mirror != nil {
		d.Mirror = mirror
	}
	if events != nil {
		d.Events = events
	}
	return NewNotificationRenderer(d)
}

func TestDisplayNotification(t *testing.T) {
	ny := newYork(t)
	now := time.Date(2025, time.January, 14, 10, 0, 0, 0, ny)
	sink := newRecordingSink()
	events := &recordingEvents{}
	r := newTestRenderer(t, sink, nil, events, now)

	sub := newSub("sub-1", "Netflix", 15.99, utcDate(2025, time.January, 15))
	got, err := r.DisplayNotification(context.Background(), SingleNotificationRequest{
		Subscription: sub,
		PaymentDueAt: sub.NextPaymentDate,
	})
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "Payment reminder: Netflix", got.Title)
	assert.Contains(t, got.Options.Body, "Netflix")
	assert.Contains(t, got.Options.Body, "15.99")
	assert.Contains(t, got.Options.Body, "tomorrow")
	assert.Equal(t, "sub-1", got.Options.Tag)
	assert.Equal(t, notification.UrgencyImminent, got.Options.Urgency)
	assert.Equal(t, notification.VibrateImminent, got.Options.Vibrate)
	assert.Equal(t, notification.DefaultIcon, got.Options.Icon)
	assert.Equal(t, notification.ClickAction{Kind: notification.ClickEditSubscription, SubscriptionID: "sub-1"}, got.Options.Data)
	assert.NotNil(t, got.Handle)

	require.Len(t, sink.Shown(), 1)
	shown := events.Named(notification.EventNotificationShown)
	require.Len(t, shown, 1)
	assert.Equal(t, 1, shown[0].Props["days_until_due"])
	assert.Equal(t, false, shown[0].Props["grouped"])
	assert.NotContains(t, shown[0].Props, "name")
}

func TestDisplayNotification_Urgency(t *testing.T) {
	ny := newYork(t)
	now := time.Date(2025, time.January, 14, 10, 0, 0, 0, ny)

	tests := []struct {
		due     time.Time
		urgency notification.Urgency
		when    string
	}{
		{due: utcDate(2025, time.January, 10), urgency: notification.UrgencyImminent, when: "today"},
		{due: utcDate(2025, time.January, 14), urgency: notification.UrgencyImminent, when: "today"},
		{due: utcDate(2025, time.January, 15), urgency: notification.UrgencyImminent, when: "tomorrow"},
		{due: utcDate(2025, time.January, 16), urgency: notification.UrgencyStandard, when: "in 2 days"},
		{due: utcDate(2025, time.February, 13), urgency: notification.UrgencyStandard, when: "in 30 days"},
	}
	for _, tt := range tests {
		t.Run(tt.due.Format("2006-01-02"), func(t *testing.T) {
			r := newTestRenderer(t, newRecordingSink(), nil, nil, now)
			sub := newSub("s", "Cloud", 1, tt.due)
			got, err := r.DisplayNotification(context.Background(), SingleNotificationRequest{Subscription: sub, PaymentDueAt: tt.due})
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.urgency, got.Options.Urgency)
			assert.Contains(t, got.Options.Body, tt.when)
		})
	}
}

func TestDisplayGroupedNotification(t *testing.T) {
	ny := newYork(t)
	now := time.Date(2025, time.January, 14, 10, 0, 0, 0, ny)
	sink := newRecordingSink()
	r := newTestRenderer(t, sink, nil, nil, now)

	due := utcDate(2025, time.January, 20)
	got, err := r.DisplayGroupedNotification(context.Background(), GroupedNotificationRequest{
		Subscriptions: []*subscription.Subscription{
			newSub("a", "Netflix", 10, due),
			newSub("b", "Spotify", 4.75, due),
		},
		PaymentDueAt: due,
	})
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "Upcoming payments", got.Title)
	assert.Equal(t, "grouped-2025-01-20", got.Options.Tag)
	assert.Contains(t, got.Options.Body, "2 payments due in 6 days")
	assert.Contains(t, got.Options.Body, "14.75")
	assert.Equal(t, notification.UrgencyStandard, got.Options.Urgency)
	assert.Equal(t, notification.VibrateStandard, got.Options.Vibrate)
	assert.Equal(t, notification.ClickAction{Kind: notification.ClickFilterDate, Date: "2025-01-20"}, got.Options.Data)
}

func TestDisplayGroupedNotification_MixedCurrencies(t *testing.T) {
	ny := newYork(t)
	now := time.Date(2025, time.January, 14, 10, 0, 0, 0, ny)
	r := newTestRenderer(t, newRecordingSink(), nil, nil, now)

	due := utcDate(2025, time.January, 20)
	eur := newSub("b", "Music", 5, due)
	eur.Currency = "eur"
	got, err := r.DisplayGroupedNotification(context.Background(), GroupedNotificationRequest{
		Subscriptions: []*subscription.Subscription{newSub("a", "Video", 10, due), eur, newSub("c", "Cloud", 2.5, due)},
		PaymentDueAt:  due,
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Contains(t, got.Options.Body, "12.50")
	assert.Contains(t, got.Options.Body, " + ")
	assert.Contains(t, got.Options.Body, "5.00")
}

func TestRenderer_NotPermitted(t *testing.T) {
	ny := newYork(t)
	now := time.Date(2025, time.January, 14, 10, 0, 0, 0, ny)
	sub := newSub("a", "Netflix", 10, utcDate(2025, time.January, 20))

	tests := []struct {
		name string
		sink *recordingSink
	}{
		{name: "denied", sink: &recordingSink{available: true, permission: settings.PermissionDenied}},
		{name: "default", sink: &recordingSink{available: true, permission: settings.PermissionDefault}},
		{name: "unavailable", sink: &recordingSink{available: false, permission: settings.PermissionGranted}},
		{name: "platform refused", sink: &recordingSink{available: true, permission: settings.PermissionGranted, refuse: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := &recordingEvents{}
			r := newTestRenderer(t, tt.sink, nil, events, now)

			got, err := r.DisplayNotification(context.Background(), SingleNotificationRequest{Subscription: sub, PaymentDueAt: sub.NextPaymentDate})
			require.NoError(t, err)
			assert.Nil(t, got)

			got, err = r.DisplayGroupedNotification(context.Background(), GroupedNotificationRequest{
				Subscriptions: []*subscription.Subscription{sub, sub},
				PaymentDueAt:  sub.NextPaymentDate,
			})
			require.NoError(t, err)
			assert.Nil(t, got)
			assert.Empty(t, events.Named(notification.EventNotificationShown))
		})
	}
}

func TestRenderer_MirrorFailureDoesNotAffectResult(t *testing.T) {
	ny := newYork(t)
	now := time.Date(2025, time.January, 14, 10, 0, 0, 0, ny)
	sink := newRecordingSink()
	mirror := newRecordingSink()
	mirror.err = fmt.Errorf("topic not found")
	r := newTestRenderer(t, sink, mirror, nil, now)

	sub := newSub("a", "Netflix", 10, utcDate(2025, time.January, 20))
	got, err := r.DisplayNotification(context.Background(), SingleNotificationRequest{Subscription: sub, PaymentDueAt: sub.NextPaymentDate})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, mirror.Shown(), 1)
}

func TestRenderer_SinkError(t *testing.T) {
	ny := newYork(t)
	now := time.Date(2025, time.January, 14, 10, 0, 0, 0, ny)
	sink := newRecordingSink()
	sink.err = fmt.Errorf("telegram: bad gateway")
	mirror := newRecordingSink()
	r := newTestRenderer(t, sink, mirror, nil, now)

	sub := newSub("a", "Netflix", 10, utcDate(2025, time.January, 20))
	got, err := r.DisplayNotification(context.Background(), SingleNotificationRequest{Subscription: sub, PaymentDueAt: sub.NextPaymentDate})
	assert.Error(t, err)
	assert.Nil(t, got)
	assert.Len(t, mirror.Shown(), 1)
}

func TestMessages_Russian(t *testing.T) {
	m := NewMessages("ru-RU")
	assert.Equal(t, "завтра", m.When(1))
	assert.Equal(t, "через 5 дн.", m.When(5))
	assert.Equal(t, "Предстоящие платежи", m.GroupedTitle())

	fallback := NewMessages("de")
	assert.Equal(t, "today", fallback.When(0))
}
