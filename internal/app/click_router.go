package app

import (
	"context"
	"fmt"
	"time"

	"payment_reminder/internal/domain/notification"
	"payment_reminder/internal/domain/subscription"

	"github.com/sirupsen/logrus"
)

// ClickRouter handles a click on a shown reminder: it routes to the subscription editor
// (single reminders) or to the payments-due-that-day view (grouped reminders), then closes
// the notification.
type ClickRouter struct {
	subscriptionRepo subscription.Repository
	navigator        notification.Navigator
	sink             notification.Sink
	loc              *time.Location
	logger           *logrus.Entry
}

func NewClickRouter(subs subscription.Repository, nav notification.Navigator, sink notification.Sink, loc *time.Location, logger *logrus.Entry) *ClickRouter {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &ClickRouter{
		subscriptionRepo: subs,
		navigator:        nav,
		sink:             sink,
		loc:              locOrLocal(loc),
		logger:           logger,
	}
}

func (r *ClickRouter) HandleClick(ctx context.Context, action notification.ClickAction, h *notification.Handle) error {
	var err error
	switch action.Kind {
	case notification.ClickEditSubscription:
		err = r.openSubscription(ctx, action.SubscriptionID)
	case notification.ClickFilterDate:
		err = r.filterByDate(ctx, action.Date)
	default:
		err = fmt.Errorf("unknown click action %q", action.Kind)
	}

	if h != nil && r.sink != nil {
		if cerr := r.sink.Close(ctx, h); cerr != nil {
			r.logger.WithError(cerr).WithField("handle", h.ID).Warn("Failed to close notification")
		}
	}
	return err
}

func (r *ClickRouter) openSubscription(ctx context.Context, id string) error {
	sub, err := r.subscriptionRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to open subscription %s: %w", id, err)
	}
	return r.navigator.OpenEditView(ctx, sub)
}

func (r *ClickRouter) filterByDate(ctx context.Context, date string) error {
	day, err := time.ParseInLocation("2006-01-02", date, r.loc)
	if err != nil {
		return fmt.Errorf("invalid date filter %q: %w", date, err)
	}
	if err := r.navigator.ClearModal(ctx); err != nil {
		return fmt.Errorf("failed to clear modal: %w", err)
	}
	subs, err := r.subscriptionRepo.ListDueOn(ctx, day)
	if err != nil {
		return fmt.Errorf("failed to list payments due %s: %w", date, err)
	}
	return r.navigator.ShowPaymentsDue(ctx, day, subs)
}
