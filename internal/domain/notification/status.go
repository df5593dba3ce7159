// internal/domain/notification/status.go
package notification

import "time"

// DeliveryStatus is the outcome of one dispatch attempt for a due-date group.
type DeliveryStatus string

const (
	StatusSuccess        DeliveryStatus = "success"
	StatusBlocked        DeliveryStatus = "blocked"
	StatusError          DeliveryStatus = "error"
	StatusMissedRecovery DeliveryStatus = "missed_recovery"
)

const (
	ReliabilityLogKey   = "subscription_notification_reliability_log"
	ReliabilityLogLimit = 100
)

// ReliabilityEntry records one dispatch attempt. One entry per group, not per subscription.
type ReliabilityEntry struct {
	Timestamp       time.Time      `json:"timestamp"`
	SubscriptionIDs []string       `json:"subscriptionIds"`
	Count           int            `json:"count"`
	Status          DeliveryStatus `json:"status"`
	UserAgent       string         `json:"userAgent"`
}
