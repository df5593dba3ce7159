package schedule

import (
	"context"
	"fmt"
	"time"
)

var ErrEntryNotFound = fmt.Errorf("schedule entry not found")

// Repository stores at most one Entry per subscription.
type Repository interface {
	// GetPending returns entries that have not been notified yet.
	GetPending(ctx context.Context) ([]*Entry, error)
	GetBySubscriptionID(ctx context.Context, subscriptionID string) (*Entry, error)
	ListAll(ctx context.Context) ([]*Entry, error)
	// ReplaceAll swaps the whole schedule for entries.
	ReplaceAll(ctx context.Context, entries []*Entry) error
	// MarkBatchAsNotified stamps NotifiedAt on every listed entry that is not stamped yet.
	MarkBatchAsNotified(ctx context.Context, subscriptionIDs []string, at time.Time) error
	Clear(ctx context.Context) error
}
