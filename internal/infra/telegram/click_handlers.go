package telegram

import (
	"context"
	"strconv"

	"payment_reminder/internal/domain/notification"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// Registrar is the handler registration part of *telebot.Bot.
type Registrar interface {
	Handle(endpoint interface{}, h telebot.HandlerFunc, m ...telebot.MiddlewareFunc)
}

// ClickHandler routes a notification click.
type ClickHandler interface {
	HandleClick(ctx context.Context, action notification.ClickAction, h *notification.Handle) error
}

// RegisterClickHandlers wires the inline buttons of reminder messages to the click router.
func RegisterClickHandlers(ctx context.Context, b Registrar, adapter *TelebotAdapter, router ClickHandler, baseLogger *logrus.Entry) {
	handlerLogger := baseLogger.WithField("handler_group", "clicks")

	handle := func(kind notification.ClickKind) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			cb := c.Callback()
			if cb == nil {
				return nil
			}
			logCtx := handlerLogger.WithFields(logrus.Fields{"click": kind, "data": cb.Data})

			if c.Chat() == nil || c.Chat().ID != adapter.ChatID() {
				logCtx.Warn("Click from a chat that is not the owner")
				return c.Respond(&telebot.CallbackResponse{Text: newPrinter(adapter.Tag()).Sprintf(msgNotAllowed)})
			}

			action := notification.ClickAction{Kind: kind}
			switch kind {
			case notification.ClickEditSubscription:
				action.SubscriptionID = cb.Data
			case notification.ClickFilterDate:
				action.Date = cb.Data
			}

			var h *notification.Handle
			if cb.Message != nil {
				h = &notification.Handle{ID: strconv.Itoa(cb.Message.ID)}
			}

			if err := router.HandleClick(ctx, action, h); err != nil {
				logCtx.WithError(err).Error("Error handling click")
				return c.Respond(&telebot.CallbackResponse{Text: newPrinter(adapter.Tag()).Sprintf(msgClickFailed)})
			}
			logCtx.Info("Click handled")
			return c.Respond()
		}
	}

	b.Handle(&telebot.Btn{Unique: uniqueEdit}, handle(notification.ClickEditSubscription))
	b.Handle(&telebot.Btn{Unique: uniqueDate}, handle(notification.ClickFilterDate))
}
