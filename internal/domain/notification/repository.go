// internal/domain/notification/repository.go
package notification

import (
	"context"
	"time"

	"payment_reminder/internal/domain/settings"
	"payment_reminder/internal/domain/subscription"
)

// Sink is the platform notification capability.
// Show returns (nil, nil) when the platform refused to display the notification.
type Sink interface {
	Available() bool
	Permission() settings.Permission
	Show(ctx context.Context, title string, opts Options) (*Handle, error)
	Close(ctx context.Context, h *Handle) error
}

// Navigator is the part of the application a notification click lands in.
type Navigator interface {
	OpenEditView(ctx context.Context, sub *subscription.Subscription) error
	ClearModal(ctx context.Context) error
	ShowPaymentsDue(ctx context.Context, day time.Time, subs []*subscription.Subscription) error
}

// ReliabilityLog is an append-only audit trail bounded to ReliabilityLogLimit entries, oldest dropped first.
type ReliabilityLog interface {
	Append(ctx context.Context, e ReliabilityEntry) error
	Entries(ctx context.Context) ([]ReliabilityEntry, error)
}

// EventSink receives anonymized product events. It owns any scrubbing.
type EventSink interface {
	Track(ctx context.Context, event string, props map[string]any)
}
