package app

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

type catalog struct {
	singleTitle  string
	groupedTitle string
	singleBody   string
	groupedBody  string
	today        string
	tomorrow     string
	inDays       string
	editAction   string
	filterAction string
}

var catalogs = map[string]catalog{
	"en": {
		singleTitle:  "Payment reminder: %s",
		groupedTitle: "Upcoming payments",
		singleBody:   "%s (%s) is due %s",
		groupedBody:  "%d payments due %s — total %s",
		today:        "today",
		tomorrow:     "tomorrow",
		inDays:       "in %d days",
		editAction:   "Open subscription",
		filterAction: "Show payments",
	},
	"ru": {
		singleTitle:  "Напоминание о платеже: %s",
		groupedTitle: "Предстоящие платежи",
		singleBody:   "%s (%s): списание %s",
		groupedBody:  "Платежей: %d, списание %s — итого %s",
		today:        "сегодня",
		tomorrow:     "завтра",
		inDays:       "через %d дн.",
		editAction:   "Открыть подписку",
		filterAction: "Показать платежи",
	},
}

// Messages renders localized reminder text. Unknown locales fall back to English.
type Messages struct {
	tag language.Tag
	c   catalog
}

func NewMessages(locale string) Messages {
	key := strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(key, "-_"); i > 0 {
		key = key[:i]
	}
	c, ok := catalogs[key]
	if !ok {
		key = "en"
		c = catalogs[key]
	}
	return Messages{tag: language.Make(key), c: c}
}

func (m Messages) Tag() language.Tag { return m.tag }

func (m Messages) When(daysDiff int) string {
	switch daysDiff {
	case 0:
		return m.c.today
	case 1:
		return m.c.tomorrow
	default:
		return fmt.Sprintf(m.c.inDays, daysDiff)
	}
}

func (m Messages) SingleTitle(name string) string { return fmt.Sprintf(m.c.singleTitle, name) }

func (m Messages) GroupedTitle() string { return m.c.groupedTitle }

func (m Messages) SingleBody(name, amount string, daysDiff int) string {
	return fmt.Sprintf(m.c.singleBody, name, amount, m.When(daysDiff))
}

func (m Messages) GroupedBody(count int, total string, daysDiff int) string {
	return fmt.Sprintf(m.c.groupedBody, count, m.When(daysDiff), total)
}

func (m Messages) EditAction() string { return m.c.editAction }

func (m Messages) FilterAction() string { return m.c.filterAction }
