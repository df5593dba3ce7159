// internal/domain/settings/settings.go
package settings

import (
	"time"

	"payment_reminder/internal/pkg/validate"
)

// Permission mirrors the delivery channel permission state.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

const (
	MinDaysBefore = 1
	MaxDaysBefore = 30
)

// Settings are the user's reminder preferences.
type Settings struct {
	NotificationsEnabled   bool
	NotificationPermission Permission `validate:"oneof=default granted denied"`
	NotificationDaysBefore int        `validate:"min=1,max=30"`
	NotificationTime       string     `validate:"required,hhmm"` // 24h "HH:MM"
	PermissionDeniedAt     *time.Time
	UpdatedAt              time.Time
}

// Default returns the settings used before the user has changed anything.
func Default() *Settings {
	return &Settings{
		NotificationsEnabled:   false,
		NotificationPermission: PermissionDefault,
		NotificationDaysBefore: 3,
		NotificationTime:       "09:00",
	}
}

// CanSchedule reports whether reminders may be produced at all.
func (s *Settings) CanSchedule() bool {
	return s != nil && s.NotificationsEnabled && s.NotificationPermission == PermissionGranted
}

func (s *Settings) Validate() error {
	return validate.Struct(s)
}
