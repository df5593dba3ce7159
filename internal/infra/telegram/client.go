// internal/infra/telegram/client.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"payment_reminder/internal/domain/notification"
	"payment_reminder/internal/domain/settings"
	"payment_reminder/internal/domain/subscription"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"gopkg.in/telebot.v3"
)

// Button uniques for notification clicks. Payload is the subscription id or the YYYY-MM-DD date.
const (
	uniqueEdit = "edit"
	uniqueDate = "date"
)

// API is the subset of *telebot.Bot the adapter uses.
type API interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
	Delete(msg telebot.Editable) error
}

// TelebotAdapter delivers reminders to the owner's chat. It is the notification.Sink and
// notification.Navigator of the service: a notification is a chat message, a click is an
// inline button, and permission is denied once Telegram reports the bot was blocked.
type TelebotAdapter struct {
	bot    API
	appURL string
	tag    language.Tag
	clock  func() time.Time
	logger *logrus.Entry

	mu       sync.Mutex
	chatID   int64
	blocked  bool
	byTag    map[string]*telebot.StoredMessage
	byHandle map[string]*telebot.StoredMessage
	editView *telebot.StoredMessage
}

func NewTelebotAdapter(b API, chatID int64, appURL string, tag language.Tag, logger *logrus.Entry) *TelebotAdapter {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &TelebotAdapter{
		bot:      b,
		appURL:   appURL,
		tag:      tag,
		clock:    time.Now,
		logger:   logger,
		chatID:   chatID,
		byTag:    make(map[string]*telebot.StoredMessage),
		byHandle: make(map[string]*telebot.StoredMessage),
	}
}

// Tag is the language of the texts the adapter sends.
func (a *TelebotAdapter) Tag() language.Tag {
	return a.tag
}

func (a *TelebotAdapter) ChatID() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.chatID
}

// BindChat sets the owner chat when none was configured. It reports whether chatID is the owner.
func (a *TelebotAdapter) BindChat(chatID int64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.chatID == 0 {
		a.chatID = chatID
		a.logger.WithField("chat_id", chatID).Info("Owner chat bound")
	}
	return a.chatID == chatID
}

// MarkReachable clears the blocked state after the owner talks to the bot again.
func (a *TelebotAdapter) MarkReachable() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.blocked = false
}

func (a *TelebotAdapter) Available() bool {
	return a.ChatID() != 0
}

func (a *TelebotAdapter) Permission() settings.Permission {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch {
	case a.chatID == 0:
		return settings.PermissionDefault
	case a.blocked:
		return settings.PermissionDenied
	default:
		return settings.PermissionGranted
	}
}

// Show sends the notification. A previous message with the same tag is deleted first so the
// chat holds at most one reminder per tag. It returns (nil, nil) when Telegram refuses delivery
// because the owner blocked the bot.
func (a *TelebotAdapter) Show(_ context.Context, title string, opts notification.Options) (*notification.Handle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.chatID == 0 {
		return nil, nil
	}

	if prev, ok := a.byTag[opts.Tag]; ok {
		if err := a.bot.Delete(prev); err != nil {
			a.logger.WithError(err).WithField("tag", opts.Tag).Debug("Failed to delete previous reminder")
		}
		delete(a.byTag, opts.Tag)
		delete(a.byHandle, prev.MessageID)
	}

	sendOpts := &telebot.SendOptions{ReplyMarkup: clickMarkup(opts)}
	if opts.Urgency != notification.UrgencyImminent {
		sendOpts.DisableNotification = true
	}

	msg, err := a.bot.Send(&telebot.Chat{ID: a.chatID}, notificationText(title, opts), sendOpts)
	if err != nil {
		if isUnreachable(err) {
			a.blocked = true
			a.logger.WithError(err).Warn("Owner chat unreachable, notification permission is now denied")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to send reminder: %w", err)
	}

	stored := &telebot.StoredMessage{MessageID: strconv.Itoa(msg.ID), ChatID: a.chatID}
	a.byTag[opts.Tag] = stored
	a.byHandle[stored.MessageID] = stored
	return &notification.Handle{ID: stored.MessageID, Tag: opts.Tag, ShownAt: a.clock()}, nil
}

// Close deletes the notification message.
func (a *TelebotAdapter) Close(_ context.Context, h *notification.Handle) error {
	if h == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	stored, ok := a.byHandle[h.ID]
	if !ok {
		stored = &telebot.StoredMessage{MessageID: h.ID, ChatID: a.chatID}
	}
	delete(a.byHandle, h.ID)
	for tag, m := range a.byTag {
		if m.MessageID == h.ID {
			delete(a.byTag, tag)
		}
	}
	if err := a.bot.Delete(stored); err != nil {
		return fmt.Errorf("failed to delete reminder message %s: %w", h.ID, err)
	}
	return nil
}

// OpenEditView replies with the subscription details and its edit link. The view stays open
// until ClearModal or the next OpenEditView.
func (a *TelebotAdapter) OpenEditView(ctx context.Context, sub *subscription.Subscription) error {
	if err := a.ClearModal(ctx); err != nil {
		a.logger.WithError(err).Debug("Failed to close previous edit view")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	msg, err := a.bot.Send(&telebot.Chat{ID: a.chatID}, editViewText(sub, a.tag, a.appURL), &telebot.SendOptions{DisableWebPagePreview: true})
	if err != nil {
		return fmt.Errorf("failed to send edit view: %w", err)
	}
	a.editView = &telebot.StoredMessage{MessageID: strconv.Itoa(msg.ID), ChatID: a.chatID}
	return nil
}

func (a *TelebotAdapter) ClearModal(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.editView == nil {
		return nil
	}
	view := a.editView
	a.editView = nil
	if err := a.bot.Delete(view); err != nil {
		return fmt.Errorf("failed to delete edit view: %w", err)
	}
	return nil
}

func (a *TelebotAdapter) ShowPaymentsDue(_ context.Context, day time.Time, subs []*subscription.Subscription) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, err := a.bot.Send(&telebot.Chat{ID: a.chatID}, paymentsDueText(day, subs, a.tag, a.appURL), &telebot.SendOptions{DisableWebPagePreview: true})
	if err != nil {
		return fmt.Errorf("failed to send payments due view: %w", err)
	}
	return nil
}

func clickMarkup(opts notification.Options) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	var btn telebot.Btn
	switch opts.Data.Kind {
	case notification.ClickEditSubscription:
		btn = markup.Data(opts.ActionTitle, uniqueEdit, opts.Data.SubscriptionID)
	case notification.ClickFilterDate:
		btn = markup.Data(opts.ActionTitle, uniqueDate, opts.Data.Date)
	default:
		return nil
	}
	markup.Inline(markup.Row(btn))
	return markup
}

func isUnreachable(err error) bool {
	return errors.Is(err, telebot.ErrBlockedByUser) ||
		errors.Is(err, telebot.ErrUserIsDeactivated) ||
		errors.Is(err, telebot.ErrChatNotFound)
}
