package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"payment_reminder/internal/domain/settings"
)

var (
	ErrInvalidNotifyTime = fmt.Errorf("notify time must be HH:MM (24h)")
	ErrInvalidDaysBefore = fmt.Errorf("days before must be between %d and %d", settings.MinDaysBefore, settings.MaxDaysBefore)
)

// ParseNotifyTime splits a 24h "HH:MM" string.
func ParseNotifyTime(notifyTime string) (hour, minute int, err error) {
	hs, ms, ok := strings.Cut(strings.TrimSpace(notifyTime), ":")
	if !ok || len(hs) == 0 || len(hs) > 2 || len(ms) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidNotifyTime, notifyTime)
	}
	hour, err = strconv.Atoi(hs)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidNotifyTime, notifyTime)
	}
	minute, err = strconv.Atoi(ms)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidNotifyTime, notifyTime)
	}
	return hour, minute, nil
}

// CalculateScheduledTime returns the reminder instant for a payment: daysBefore calendar
// days before the payment's calendar date, at notifyTime wall-clock time in loc.
//
// The calendar date is read from nextPaymentDate in its own location, the same as taking
// the date part of its ISO string, so a UTC-midnight date never slides to the previous
// day for users west of UTC. Building the result with time.Date in loc keeps "09:00" at
// 09:00 local across DST changes and handles month, year and leap-day rollover.
func CalculateScheduledTime(nextPaymentDate time.Time, daysBefore int, notifyTime string, loc *time.Location) (time.Time, error) {
	if daysBefore < settings.MinDaysBefore || daysBefore > settings.MaxDaysBefore {
		return time.Time{}, fmt.Errorf("%w: got %d", ErrInvalidDaysBefore, daysBefore)
	}
	hour, minute, err := ParseNotifyTime(notifyTime)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := nextPaymentDate.Date()
	return time.Date(y, m, d-daysBefore, hour, minute, 0, 0, locOrLocal(loc)), nil
}

// HandleImminentPayment corrects a reminder whose ideal time has already passed.
// A future originalScheduledFor is returned unchanged. Otherwise the reminder moves to
// today at notifyTime if that is still ahead, or to now.
func HandleImminentPayment(originalScheduledFor time.Time, notifyTime string, now time.Time, loc *time.Location) (time.Time, error) {
	if originalScheduledFor.After(now) {
		return originalScheduledFor, nil
	}
	hour, minute, err := ParseNotifyTime(notifyTime)
	if err != nil {
		return time.Time{}, err
	}
	local := now.In(locOrLocal(loc))
	today := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, local.Location())
	if today.After(now) {
		return today, nil
	}
	return now, nil
}

// dateKey is the YYYY-MM-DD calendar date of t in its own location.
func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// civilDate returns midnight of t's calendar date (in t's location) expressed in loc.
func civilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, locOrLocal(loc))
}

// daysBetween counts calendar days from a to b, ignoring time of day and DST.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

func locOrLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
