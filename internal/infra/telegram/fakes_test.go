package telegram

import (
	"context"
	"sync"

	"payment_reminder/internal/app"
	"payment_reminder/internal/domain/notification"
	"payment_reminder/internal/domain/settings"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"gopkg.in/telebot.v3"
)

type sentMessage struct {
	To   int64
	What interface{}
	Opts *telebot.SendOptions
}

type fakeAPI struct {
	mu      sync.Mutex
	nextID  int
	sendErr error
	sent    []sentMessage
	deleted []string
}

func (f *fakeAPI) Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	var so *telebot.SendOptions
	for _, o := range opts {
		if v, ok := o.(*telebot.SendOptions); ok {
			so = v
		}
	}
	chat, _ := to.(*telebot.Chat)
	var chatID int64
	if chat != nil {
		chatID = chat.ID
	}
	f.sent = append(f.sent, sentMessage{To: chatID, What: what, Opts: so})
	f.nextID++
	return &telebot.Message{ID: 100 + f.nextID}, nil
}

func (f *fakeAPI) Delete(msg telebot.Editable) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, _ := msg.MessageSig()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) lastText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return ""
	}
	s, _ := f.sent[len(f.sent)-1].What.(string)
	return s
}

type fakeRegistrar struct {
	handlers map[string]telebot.HandlerFunc
}

func newFakeRegistrar() *fakeRegistrar {
	return &fakeRegistrar{handlers: make(map[string]telebot.HandlerFunc)}
}

func (r *fakeRegistrar) Handle(endpoint interface{}, h telebot.HandlerFunc, _ ...telebot.MiddlewareFunc) {
	switch e := endpoint.(type) {
	case string:
		r.handlers[e] = h
	case *telebot.Btn:
		r.handlers["btn:"+e.Unique] = h
	}
}

// fakeContext implements the handful of telebot.Context methods the handlers call.
type fakeContext struct {
	telebot.Context
	chat      *telebot.Chat
	args      []string
	callback  *telebot.Callback
	sent      []string
	responses []*telebot.CallbackResponse
}

func (c *fakeContext) Chat() *telebot.Chat { return c.chat }

func (c *fakeContext) Args() []string { return c.args }

func (c *fakeContext) Callback() *telebot.Callback { return c.callback }

func (c *fakeContext) Send(what interface{}, _ ...interface{}) error {
	s, _ := what.(string)
	c.sent = append(c.sent, s)
	return nil
}

func (c *fakeContext) Respond(resp ...*telebot.CallbackResponse) error {
	if len(resp) == 0 {
		c.responses = append(c.responses, nil)
		return nil
	}
	c.responses = append(c.responses, resp[0])
	return nil
}

func (c *fakeContext) lastSent() string {
	if len(c.sent) == 0 {
		return ""
	}
	return c.sent[len(c.sent)-1]
}

type recordedClick struct {
	Action notification.ClickAction
	Handle *notification.Handle
}

type fakeRouter struct {
	err    error
	clicks []recordedClick
}

func (r *fakeRouter) HandleClick(_ context.Context, action notification.ClickAction, h *notification.Handle) error {
	r.clicks = append(r.clicks, recordedClick{Action: action, Handle: h})
	return r.err
}

type fakeSettingsService struct {
	st       *settings.Settings
	upcoming []app.UpcomingReminder
	err      error
}

func (f *fakeSettingsService) Settings(context.Context) (*settings.Settings, error) {
	c := *f.st
	return &c, nil
}

func (f *fakeSettingsService) UpdateSettings(_ context.Context, mutate func(*settings.Settings)) (*settings.Settings, error) {
	c := *f.st
	mutate(&c)
	if err := c.Validate(); err != nil {
		return nil, app.ErrInvalidSettings
	}
	if f.err != nil {
		return nil, f.err
	}
	f.st = &c
	return &c, nil
}

func (f *fakeSettingsService) Upcoming(context.Context) ([]app.UpcomingReminder, error) {
	return f.upcoming, nil
}

func nullLogger() *logrus.Entry {
	l, _ := test.NewNullLogger()
	return logrus.NewEntry(l)
}
