package subscription

import (
	"context"
	"fmt"
	"time"
)

var ErrNotFound = fmt.Errorf("subscription not found")

// Repository is the read side of the subscription store used by the reminder engine.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Subscription, error)
	ListAll(ctx context.Context) ([]*Subscription, error)
	// ListDueOn returns active subscriptions whose next payment falls on the given calendar day.
	ListDueOn(ctx context.Context, day time.Time) ([]*Subscription, error)
}
