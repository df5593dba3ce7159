// internal/domain/notification/shared_types.go
package notification

// Urgency drives vibration strength and message styling.
type Urgency string

const (
	UrgencyStandard Urgency = "standard"
	UrgencyImminent Urgency = "imminent"
)

// ImminentPaymentDays is the largest days-until-due still classified as imminent.
const ImminentPaymentDays = 1

var (
	VibrateStandard = []int{200, 100, 200}
	VibrateImminent = []int{300, 100, 300, 100, 300}
)

const (
	DefaultIcon  = "/icons/icon-192x192.png"
	DefaultBadge = "/icons/badge-72x72.png"

	GroupedTagPrefix = "grouped-"
)

// ClickKind selects where a notification click routes the user.
type ClickKind string

const (
	ClickEditSubscription ClickKind = "edit"
	ClickFilterDate       ClickKind = "date"
)

// ClickAction is the routing payload carried by a notification.
type ClickAction struct {
	Kind           ClickKind `json:"kind"`
	SubscriptionID string    `json:"subscriptionId,omitempty"`
	Date           string    `json:"date,omitempty"` // YYYY-MM-DD
}

// Event names emitted to the analytics sink.
const (
	EventNotificationShown  = "notification_shown"
	EventNotificationDenied = "notification_denied"
)
