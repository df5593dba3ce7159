package app

import (
	"context"
	"fmt"
	"time"

	"payment_reminder/internal/domain/notification"
	"payment_reminder/internal/domain/settings"
	"payment_reminder/internal/domain/subscription"
	"payment_reminder/internal/pkg/money"

	"github.com/sirupsen/logrus"
)

// Renderer is what the dispatcher needs from NotificationRenderer.
type Renderer interface {
	DisplayNotification(ctx context.Context, req SingleNotificationRequest) (*notification.Notification, error)
	DisplayGroupedNotification(ctx context.Context, req GroupedNotificationRequest) (*notification.Notification, error)
}

type SingleNotificationRequest struct {
	Subscription *subscription.Subscription
	PaymentDueAt time.Time
}

type GroupedNotificationRequest struct {
	Subscriptions []*subscription.Subscription
	PaymentDueAt  time.Time
}

type RendererDeps struct {
	Sink     notification.Sink
	Mirror   notification.Sink // optional background copy; failures are ignored
	Events   notification.EventSink
	Messages Messages
	Location *time.Location
	Clock    func() time.Time
	Logger   *logrus.Entry
}

// NotificationRenderer builds reminder notifications and hands them to the platform sink.
type NotificationRenderer struct {
	sink   notification.Sink
	mirror notification.Sink
	events notification.EventSink
	msgs   Messages
	loc    *time.Location
	clock  func() time.Time
	logger *logrus.Entry
}

func NewNotificationRenderer(d RendererDeps) *NotificationRenderer {
	r := &NotificationRenderer{
		sink:   d.Sink,
		mirror: d.Mirror,
		events: d.Events,
		msgs:   d.Messages,
		loc:    locOrLocal(d.Location),
		clock:  d.Clock,
		logger: d.Logger,
	}
	if r.clock == nil {
		r.clock = time.Now
	}
	if r.logger == nil {
		r.logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if r.msgs.c.today == "" {
		r.msgs = NewMessages("en")
	}
	return r
}

// DisplayNotification shows a reminder for one subscription.
// It returns (nil, nil) when the platform is unavailable, permission is not granted,
// or the platform declined to show it.
func (r *NotificationRenderer) DisplayNotification(ctx context.Context, req SingleNotificationRequest) (*notification.Notification, error) {
	if !r.permitted() {
		return nil, nil
	}
	sub := req.Subscription
	if sub == nil {
		return nil, fmt.Errorf("display notification: subscription is nil")
	}

	daysDiff := r.daysUntil(req.PaymentDueAt)
	urgency := classifyUrgency(daysDiff)
	amount := money.Format(r.msgs.Tag(), sub.Amount, sub.Currency)

	opts := notification.Options{
		Body:        r.msgs.SingleBody(sub.Name, amount, daysDiff),
		Tag:         sub.ID,
		Icon:        notification.DefaultIcon,
		Badge:       notification.DefaultBadge,
		Vibrate:     vibrationFor(urgency),
		Urgency:     urgency,
		ActionTitle: r.msgs.EditAction(),
		Data: notification.ClickAction{
			Kind:           notification.ClickEditSubscription,
			SubscriptionID: sub.ID,
		},
	}
	return r.show(ctx, r.msgs.SingleTitle(sub.Name), opts, daysDiff, 1)
}

// DisplayGroupedNotification shows one reminder for several payments due on the same day.
func (r *NotificationRenderer) DisplayGroupedNotification(ctx context.Context, req GroupedNotificationRequest) (*notification.Notification, error) {
	if !r.permitted() {
		return nil, nil
	}
	if len(req.Subscriptions) == 0 {
		return nil, fmt.Errorf("display grouped notification: no subscriptions")
	}

	daysDiff := r.daysUntil(req.PaymentDueAt)
	urgency := classifyUrgency(daysDiff)

	amounts := make([]float64, len(req.Subscriptions))
	codes := make([]string, len(req.Subscriptions))
	for i, sub := range req.Subscriptions {
		amounts[i] = sub.Amount
		codes[i] = sub.Currency
	}
	total := money.FormatTotals(r.msgs.Tag(), money.Sum(amounts, codes))
	day := dateKey(req.PaymentDueAt)

	opts := notification.Options{
		Body:        r.msgs.GroupedBody(len(req.Subscriptions), total, daysDiff),
		Tag:         notification.GroupedTagPrefix + day,
		Icon:        notification.DefaultIcon,
		Badge:       notification.DefaultBadge,
		Vibrate:     vibrationFor(urgency),
		Urgency:     urgency,
		ActionTitle: r.msgs.FilterAction(),
		Data: notification.ClickAction{
			Kind: notification.ClickFilterDate,
			Date: day,
		},
	}
	return r.show(ctx, r.msgs.GroupedTitle(), opts, daysDiff, len(req.Subscriptions))
}

func (r *NotificationRenderer) show(ctx context.Context, title string, opts notification.Options, daysDiff, count int) (*notification.Notification, error) {
	h, err := r.sink.Show(ctx, title, opts)
	r.showMirror(ctx, title, opts)
	if err != nil {
		return nil, fmt.Errorf("show notification %s: %w", opts.Tag, err)
	}
	if h == nil {
		return nil, nil
	}

	if r.events != nil {
		r.events.Track(ctx, notification.EventNotificationShown, map[string]any{
			"urgency":        string(opts.Urgency),
			"days_until_due": daysDiff,
			"grouped":        count > 1,
			"count":          count,
		})
	}
	return &notification.Notification{Title: title, Options: opts, Handle: h}, nil
}

func (r *NotificationRenderer) showMirror(ctx context.Context, title string, opts notification.Options) {
	if r.mirror == nil || !r.mirror.Available() {
		return
	}
	if _, err := r.mirror.Show(ctx, title, opts); err != nil {
		r.logger.WithError(err).WithField("tag", opts.Tag).Debug("Background notification copy failed")
	}
}

func (r *NotificationRenderer) permitted() bool {
	return r.sink != nil && r.sink.Available() && r.sink.Permission() == settings.PermissionGranted
}

// daysUntil is the calendar-day distance from today (in loc) to the due date.
// Overdue payments count as due today.
func (r *NotificationRenderer) daysUntil(dueAt time.Time) int {
	d := daysBetween(r.clock().In(r.loc), dueAt)
	if d < 0 {
		return 0
	}
	return d
}

func classifyUrgency(daysDiff int) notification.Urgency {
	if daysDiff <= notification.ImminentPaymentDays {
		return notification.UrgencyImminent
	}
	return notification.UrgencyStandard
}

func vibrationFor(u notification.Urgency) []int {
	if u == notification.UrgencyImminent {
		return append([]int(nil), notification.VibrateImminent...)
	}
	return append([]int(nil), notification.VibrateStandard...)
}
