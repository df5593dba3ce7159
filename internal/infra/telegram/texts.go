package telegram

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys double as the English text.
const (
	msgOwnerOnly      = "This bot serves a single owner."
	msgNotAllowed     = "Not allowed."
	msgClickFailed    = "Could not open this reminder."
	msgInvalidValue   = "Invalid value. See /help."
	msgSaveFailed     = "Could not save settings, please try again later."
	msgLoadFailed     = "Could not load settings, please try again later."
	msgScheduleFailed = "Could not load the schedule, please try again later."
	msgUsageToggle    = "Usage: /notifications on|off"
	msgUsageDays      = "Usage: /days N (1-30)"
	msgUsageTime      = "Usage: /time HH:MM"

	msgAmount      = "Amount: %s"
	msgNextPayment = "Next payment: %s"
	msgBilling     = "Billing: %s"
	msgEveryNDays  = "every %d days"
	msgPaused      = "(paused)"
	msgEditLink    = "Edit: %s"

	msgNoPaymentsDue = "No payments due on %s."
	msgPaymentsDue   = "Payments due on %s:"
	msgTotal         = "Total: %s"

	msgSettings   = "Reminders: %s\nPermission: %s\nDays before: %d\nTime: %s"
	msgOn         = "on"
	msgOff        = "off"
	msgNoUpcoming = "No reminders scheduled."
	msgUpcoming   = "Upcoming reminders:"
	msgUpcomingAt = "\n• %s (%s): due %s, reminder %s"

	msgHelp = `Payment reminders for your subscriptions.

/notifications on|off - turn reminders on or off
/days N - remind N days before a payment (1-30)
/time HH:MM - time of day for reminders (24h)
/schedule - list upcoming reminders
/help - show this message`
)

var russian = map[string]string{
	msgOwnerOnly:      "Этот бот обслуживает только владельца.",
	msgNotAllowed:     "Нет доступа.",
	msgClickFailed:    "Не удалось открыть напоминание.",
	msgInvalidValue:   "Недопустимое значение. См. /help.",
	msgSaveFailed:     "Не удалось сохранить настройки, попробуйте позже.",
	msgLoadFailed:     "Не удалось загрузить настройки, попробуйте позже.",
	msgScheduleFailed: "Не удалось загрузить расписание, попробуйте позже.",
	msgUsageToggle:    "Использование: /notifications on|off",
	msgUsageDays:      "Использование: /days N (1-30)",
	msgUsageTime:      "Использование: /time ЧЧ:ММ",

	msgAmount:      "Сумма: %s",
	msgNextPayment: "Следующий платёж: %s",
	msgBilling:     "Периодичность: %s",
	msgEveryNDays:  "каждые %d дн.",
	msgPaused:      "(приостановлена)",
	msgEditLink:    "Изменить: %s",

	msgNoPaymentsDue: "На %s платежей нет.",
	msgPaymentsDue:   "Платежи на %s:",
	msgTotal:         "Итого: %s",

	msgSettings:   "Напоминания: %s\nРазрешение: %s\nЗа сколько дней: %d\nВремя: %s",
	msgOn:         "вкл",
	msgOff:        "выкл",
	msgNoUpcoming: "Напоминаний нет.",
	msgUpcoming:   "Ближайшие напоминания:",
	msgUpcomingAt: "\n• %s (%s): платёж %s, напоминание %s",

	"weekly":    "еженедельно",
	"monthly":   "ежемесячно",
	"quarterly": "ежеквартально",
	"yearly":    "ежегодно",
	"custom":    "особая",
	"default":   "не запрошено",
	"granted":   "разрешено",
	"denied":    "запрещено",

	msgHelp: `Напоминания о платежах по подпискам.

/notifications on|off - включить или выключить напоминания
/days N - напоминать за N дней до платежа (1-30)
/time ЧЧ:ММ - время напоминаний (24ч)
/schedule - список ближайших напоминаний
/help - эта справка`,
}

var texts = newTextCatalog()

func newTextCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, msg := range russian {
		if err := b.SetString(language.Russian, key, msg); err != nil {
			panic(err)
		}
	}
	return b
}

// newPrinter returns a printer for tag. Printers are not shared between goroutines.
func newPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(texts))
}
