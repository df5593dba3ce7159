// internal/domain/subscription/subscription.go
package subscription

import "time"

// BillingCycle is how often a subscription is charged.
type BillingCycle string

const (
	BillingCycleWeekly    BillingCycle = "weekly"
	BillingCycleMonthly   BillingCycle = "monthly"
	BillingCycleQuarterly BillingCycle = "quarterly"
	BillingCycleYearly    BillingCycle = "yearly"
	BillingCycleCustom    BillingCycle = "custom" // uses CustomDays
)

// Subscription is a recurring payment owned by the subscription store.
// Only NextPaymentDate is relevant to reminders; later occurrences are not tracked here.
type Subscription struct {
	ID              string
	Name            string
	Amount          float64
	Currency        string // ISO 4217 code, e.g. USD
	BillingCycle    BillingCycle
	CustomDays      int
	NextPaymentDate time.Time // calendar date of the next charge; the time part is ignored
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
