package app

import (
	"testing"
	"time"

	"payment_reminder/internal/domain/settings"
	"payment_reminder/internal/domain/subscription"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateNotificationSchedule_Gating(t *testing.T) {
	ny := newYork(t)
	now := time.Date(2025, time.January, 12, 12, 0, 0, 0, ny)
	subs := []*subscription.Subscription{newSub("a", "Netflix", 15.99, utcDate(2025, time.January, 20))}

	tests := []struct {
		name     string
		settings *settings.Settings
	}{
		{name: "nil settings", settings: nil},
		{name: "disabled", settings: func() *settings.Settings {
			st := grantedSettings()
			st.NotificationsEnabled = false
			return st
		}()},
		{name: "permission default", settings: func() *settings.Settings {
			st := grantedSettings()
			st.NotificationPermission = settings.PermissionDefault
			return st
		}()},
		{name: "permission denied", settings: func() *settings.Settings {
			st := grantedSettings()
			st.NotificationPermission = settings.PermissionDenied
			return st
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateNotificationSchedule(subs, tt.settings, now, ny)
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestCalculateNotificationSchedule(t *testing.T) {
	ny := newYork(t)
	now := time.Date(2025, time.January, 12, 12, 0, 0, 0, ny)

	inactive := newSub("inactive", "Gym", 30, utcDate(2025, time.January, 20))
	inactive.IsActive = false

	subs := []*subscription.Subscription{
		newSub("later", "Netflix", 15.99, utcDate(2025, time.January, 20)),
		inactive,
		newSub("past", "Old", 5, utcDate(2025, time.January, 10)),
		newSub("later", "Netflix again", 15.99, utcDate(2025, time.February, 20)),
		newSub("soon", "Spotify", 9.99, utcDate(2025, time.January, 16)),
		newSub("imminent", "Cloud", 2.99, utcDate(2025, time.January, 13)),
		newSub("today", "News", 4, utcDate(2025, time.January, 12)),
		nil,
	}

	got, err := CalculateNotificationSchedule(subs, grantedSettings(), now, ny)
	require.NoError(t, err)
	require.Len(t, got, 4)

	ids := make([]string, len(got))
	for i, e := range got {
		ids[i] = e.SubscriptionID
		assert.Nil(t, e.NotifiedAt)
	}
	assert.Equal(t, []string{"imminent", "today", "soon", "later"}, ids)

	// Both overdue reminders collapse to now.
	assert.True(t, now.Equal(got[0].ScheduledFor))
	assert.True(t, now.Equal(got[1].ScheduledFor))
	assert.True(t, time.Date(2025, time.January, 13, 9, 0, 0, 0, ny).Equal(got[2].ScheduledFor))
	assert.True(t, time.Date(2025, time.January, 17, 9, 0, 0, 0, ny).Equal(got[3].ScheduledFor))

	// The first occurrence of a duplicated id wins.
	assert.True(t, utcDate(2025, time.January, 20).Equal(got[3].PaymentDueAt))
}

func TestCalculateNotificationSchedule_IsDeterministic(t *testing.T) {
	ny := newYork(t)
	now := time.Date(2025, time.January, 12, 12, 0, 0, 0, ny)
	subs := []*subscription.Subscription{
		newSub("b", "B", 1, utcDate(2025, time.January, 20)),
		newSub("a", "A", 1, utcDate(2025, time.January, 20)),
		newSub("c", "C", 1, utcDate(2025, time.January, 18)),
	}

	first, err := CalculateNotificationSchedule(subs, grantedSettings(), now, ny)
	require.NoError(t, err)
	second, err := CalculateNotificationSchedule(subs, grantedSettings(), now, ny)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, "c", first[0].SubscriptionID)
	assert.Equal(t, "b", first[1].SubscriptionID)
	assert.Equal(t, "a", first[2].SubscriptionID)
}

func TestCalculateNotificationSchedule_InvalidSettings(t *testing.T) {
	ny := newYork(t)
	now := time.Date(2025, time.January, 12, 12, 0, 0, 0, ny)
	subs := []*subscription.Subscription{newSub("a", "A", 1, utcDate(2025, time.January, 20))}

	st := grantedSettings()
	st.NotificationTime = "25:00"
	_, err := CalculateNotificationSchedule(subs, st, now, ny)
	assert.ErrorIs(t, err, ErrInvalidNotifyTime)

	st = grantedSettings()
	st.NotificationDaysBefore = 0
	_, err = CalculateNotificationSchedule(subs, st, now, ny)
	assert.ErrorIs(t, err, ErrInvalidDaysBefore)
}
