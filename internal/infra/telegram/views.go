package telegram

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"payment_reminder/internal/app"
	"payment_reminder/internal/domain/notification"
	"payment_reminder/internal/domain/settings"
	"payment_reminder/internal/domain/subscription"
	"payment_reminder/internal/pkg/money"

	"golang.org/x/text/language"
)

func notificationText(title string, opts notification.Options) string {
	if opts.Body == "" {
		return title
	}
	return title + "\n" + opts.Body
}

func editViewText(sub *subscription.Subscription, tag language.Tag, appURL string) string {
	p := newPrinter(tag)
	var b strings.Builder
	b.WriteString(sub.Name)
	b.WriteString("\n")
	b.WriteString(p.Sprintf(msgAmount, money.Format(tag, sub.Amount, sub.Currency)))
	b.WriteString("\n")
	b.WriteString(p.Sprintf(msgNextPayment, sub.NextPaymentDate.Format("2006-01-02")))
	b.WriteString("\n")
	cycle := p.Sprintf(string(sub.BillingCycle))
	if sub.BillingCycle == subscription.BillingCycleCustom && sub.CustomDays > 0 {
		cycle = p.Sprintf(msgEveryNDays, sub.CustomDays)
	}
	b.WriteString(p.Sprintf(msgBilling, cycle))
	if !sub.IsActive {
		b.WriteString(" ")
		b.WriteString(p.Sprintf(msgPaused))
	}
	if appURL != "" {
		b.WriteString("\n")
		b.WriteString(p.Sprintf(msgEditLink, appURL+"/subscriptions/"+url.PathEscape(sub.ID)+"/edit"))
	}
	return b.String()
}

func paymentsDueText(day time.Time, subs []*subscription.Subscription, tag language.Tag, appURL string) string {
	p := newPrinter(tag)
	date := day.Format("2006-01-02")
	var b strings.Builder
	if len(subs) == 0 {
		b.WriteString(p.Sprintf(msgNoPaymentsDue, date))
	} else {
		b.WriteString(p.Sprintf(msgPaymentsDue, date))
		amounts := make([]float64, len(subs))
		codes := make([]string, len(subs))
		for i, sub := range subs {
			fmt.Fprintf(&b, "\n• %s: %s", sub.Name, money.Format(tag, sub.Amount, sub.Currency))
			amounts[i] = sub.Amount
			codes[i] = sub.Currency
		}
		b.WriteString("\n")
		b.WriteString(p.Sprintf(msgTotal, money.FormatTotals(tag, money.Sum(amounts, codes))))
	}
	if appURL != "" {
		fmt.Fprintf(&b, "\n%s/?date=%s", appURL, date)
	}
	return b.String()
}

func settingsText(st *settings.Settings, tag language.Tag) string {
	p := newPrinter(tag)
	state := p.Sprintf(msgOff)
	if st.NotificationsEnabled {
		state = p.Sprintf(msgOn)
	}
	return p.Sprintf(msgSettings, state, p.Sprintf(string(st.NotificationPermission)), st.NotificationDaysBefore, st.NotificationTime)
}

func upcomingText(items []app.UpcomingReminder, loc *time.Location, tag language.Tag) string {
	p := newPrinter(tag)
	if len(items) == 0 {
		return p.Sprintf(msgNoUpcoming)
	}
	var b strings.Builder
	b.WriteString(p.Sprintf(msgUpcoming))
	for _, it := range items {
		b.WriteString(p.Sprintf(msgUpcomingAt,
			it.Subscription.Name,
			money.Format(tag, it.Subscription.Amount, it.Subscription.Currency),
			it.Entry.PaymentDueAt.Format("2006-01-02"),
			it.Entry.ScheduledFor.In(loc).Format("2006-01-02 15:04")))
	}
	return b.String()
}

func helpText(tag language.Tag) string {
	return newPrinter(tag).Sprintf(msgHelp)
}
