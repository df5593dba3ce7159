package app

import (
	"fmt"
	"sort"
	"time"

	"payment_reminder/internal/domain/schedule"
	"payment_reminder/internal/domain/settings"
	"payment_reminder/internal/domain/subscription"
)

// CalculateNotificationSchedule builds the full reminder schedule for subs.
//
// Nothing is scheduled unless notifications are enabled and permission is granted.
// Inactive subscriptions and payments dated before today (in loc) are skipped. The
// result holds at most one entry per subscription and is sorted by ScheduledFor;
// identical inputs always produce identical output.
func CalculateNotificationSchedule(subs []*subscription.Subscription, st *settings.Settings, now time.Time, loc *time.Location) ([]*schedule.Entry, error) {
	if !st.CanSchedule() {
		return []*schedule.Entry{}, nil
	}
	if _, _, err := ParseNotifyTime(st.NotificationTime); err != nil {
		return nil, err
	}

	loc = locOrLocal(loc)
	today := civilDate(now.In(loc), loc)

	entries := make([]*schedule.Entry, 0, len(subs))
	seen := make(map[string]bool, len(subs))
	for _, sub := range subs {
		if sub == nil || !sub.IsActive || seen[sub.ID] {
			continue
		}
		if civilDate(sub.NextPaymentDate, loc).Before(today) {
			continue
		}

		scheduledFor, err := CalculateScheduledTime(sub.NextPaymentDate, st.NotificationDaysBefore, st.NotificationTime, loc)
		if err != nil {
			return nil, fmt.Errorf("schedule for subscription %s: %w", sub.ID, err)
		}
		scheduledFor, err = HandleImminentPayment(scheduledFor, st.NotificationTime, now, loc)
		if err != nil {
			return nil, fmt.Errorf("schedule for subscription %s: %w", sub.ID, err)
		}

		seen[sub.ID] = true
		entries = append(entries, &schedule.Entry{
			SubscriptionID: sub.ID,
			ScheduledFor:   scheduledFor,
			PaymentDueAt:   sub.NextPaymentDate,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ScheduledFor.Before(entries[j].ScheduledFor)
	})
	return entries, nil
}
