// internal/domain/notification/notification.go
package notification

import "time"

// Options are the platform notification options.
type Options struct {
	Body        string
	Tag         string // subscription id, or grouped-<date>; the platform coalesces by tag
	Icon        string
	Badge       string
	Vibrate     []int
	Urgency     Urgency
	ActionTitle string // label of the click action
	Data        ClickAction
}

// Handle identifies a notification the platform has shown.
type Handle struct {
	ID      string
	Tag     string
	ShownAt time.Time
}

// Notification is what the renderer produced and the platform accepted.
type Notification struct {
	Title   string
	Options Options
	Handle  *Handle
}
