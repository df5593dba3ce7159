// internal/domain/schedule/entry.go
package schedule

import "time"

// Entry is the persisted reminder slot for one subscription's next payment.
// NotifiedAt is stamped once by the dispatcher; a stamped entry is never dispatched again.
type Entry struct {
	SubscriptionID string     `json:"subscriptionId"`
	ScheduledFor   time.Time  `json:"scheduledFor"`
	PaymentDueAt   time.Time  `json:"paymentDueAt"`
	NotifiedAt     *time.Time `json:"notifiedAt,omitempty"`
}

func (e *Entry) IsNotified() bool {
	return e.NotifiedAt != nil
}

// Clone returns a deep copy so stores never hand out their internal pointers.
func (e *Entry) Clone() *Entry {
	c := *e
	if e.NotifiedAt != nil {
		at := *e.NotifiedAt
		c.NotifiedAt = &at
	}
	return &c
}
