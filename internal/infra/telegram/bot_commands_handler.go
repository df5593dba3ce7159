// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"payment_reminder/internal/app"
	"payment_reminder/internal/domain/settings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"gopkg.in/telebot.v3"
)

// SettingsService is what the settings commands need from app.ScheduleService.
type SettingsService interface {
	Settings(ctx context.Context) (*settings.Settings, error)
	UpdateSettings(ctx context.Context, mutate func(*settings.Settings)) (*settings.Settings, error)
	Upcoming(ctx context.Context) ([]app.UpcomingReminder, error)
}

func RegisterBotCommands(
	ctx context.Context,
	b Registrar,
	adapter *TelebotAdapter,
	settingsService SettingsService,
	loc *time.Location,
	tag language.Tag,
	baseLogger *logrus.Entry, // For contextual logging
) {
	cmdLogger := baseLogger.WithField("handler_group", "commands")

	say := func(c telebot.Context, key string, args ...interface{}) error {
		return c.Send(newPrinter(tag).Sprintf(key, args...))
	}

	// owner wraps a handler so only the owner chat can use it.
	owner := func(command string, next func(c telebot.Context, logCtx *logrus.Entry) error) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			logCtx := cmdLogger.WithField("command", command)
			if c.Chat() == nil || c.Chat().ID != adapter.ChatID() {
				logCtx.Warn("Unauthorized access attempt")
				return say(c, msgOwnerOnly)
			}
			logCtx.Info("Processing command")
			return next(c, logCtx)
		}
	}

	update := func(c telebot.Context, logCtx *logrus.Entry, mutate func(*settings.Settings)) error {
		st, err := settingsService.UpdateSettings(ctx, mutate)
		if err != nil {
			if errors.Is(err, app.ErrInvalidSettings) {
				logCtx.WithError(err).Warn("Rejected settings change")
				return say(c, msgInvalidValue)
			}
			logCtx.WithError(err).Error("Failed to update settings")
			return say(c, msgSaveFailed)
		}
		return c.Send(settingsText(st, tag))
	}

	b.Handle("/start", func(c telebot.Context) error {
		logCtx := cmdLogger.WithField("command", "/start")
		if c.Chat() == nil || !adapter.BindChat(c.Chat().ID) {
			logCtx.Warn("Start from a chat that is not the owner")
			return say(c, msgOwnerOnly)
		}
		adapter.MarkReachable()
		logCtx.Info("Owner started the bot")
		return c.Send(helpText(tag))
	})

	b.Handle("/help", owner("/help", func(c telebot.Context, _ *logrus.Entry) error {
		return c.Send(helpText(tag))
	}))

	b.Handle("/notifications", owner("/notifications", func(c telebot.Context, logCtx *logrus.Entry) error {
		args := c.Args()
		if len(args) == 0 {
			st, err := settingsService.Settings(ctx)
			if err != nil {
				logCtx.WithError(err).Error("Failed to load settings")
				return say(c, msgLoadFailed)
			}
			return c.Send(settingsText(st, tag))
		}
		var enabled bool
		switch strings.ToLower(args[0]) {
		case "on":
			enabled = true
		case "off":
			enabled = false
		default:
			return say(c, msgUsageToggle)
		}
		permission := adapter.Permission()
		return update(c, logCtx, func(st *settings.Settings) {
			st.NotificationsEnabled = enabled
			st.NotificationPermission = permission
		})
	}))

	b.Handle("/days", owner("/days", func(c telebot.Context, logCtx *logrus.Entry) error {
		args := c.Args()
		if len(args) != 1 {
			return say(c, msgUsageDays)
		}
		days, err := strconv.Atoi(args[0])
		if err != nil {
			return say(c, msgUsageDays)
		}
		return update(c, logCtx, func(st *settings.Settings) { st.NotificationDaysBefore = days })
	}))

	b.Handle("/time", owner("/time", func(c telebot.Context, logCtx *logrus.Entry) error {
		args := c.Args()
		if len(args) != 1 {
			return say(c, msgUsageTime)
		}
		notifyTime := args[0]
		return update(c, logCtx, func(st *settings.Settings) { st.NotificationTime = notifyTime })
	}))

	b.Handle("/schedule", owner("/schedule", func(c telebot.Context, logCtx *logrus.Entry) error {
		items, err := settingsService.Upcoming(ctx)
		if err != nil {
			logCtx.WithError(err).Error("Failed to list upcoming reminders")
			return say(c, msgScheduleFailed)
		}
		return c.Send(upcomingText(items, loc, tag))
	}))
}
