package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"payment_reminder/internal/app"
	"payment_reminder/internal/domain/schedule"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDispatcher struct{ mock.Mock }

func (m *mockDispatcher) SyncNotificationPermissions(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *mockDispatcher) CheckAndDispatchNotifications(ctx context.Context) (*app.SweepResult, error) {
	args := m.Called(ctx)
	if r, _ := args.Get(0).(*app.SweepResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockRefresher struct{ mock.Mock }

func (m *mockRefresher) RefreshSchedule(ctx context.Context) ([]*schedule.Entry, error) {
	args := m.Called(ctx)
	entries, _ := args.Get(0).([]*schedule.Entry)
	return entries, args.Error(1)
}

func TestRunSweep_SyncsBeforeDispatch(t *testing.T) {
	logger, _ := test.NewNullLogger()
	d := &mockDispatcher{}
	var order []string
	d.On("SyncNotificationPermissions", mock.Anything).Run(func(mock.Arguments) { order = append(order, "sync") }).Return(false, nil)
	d.On("CheckAndDispatchNotifications", mock.Anything).Run(func(mock.Arguments) { order = append(order, "dispatch") }).
		Return(&app.SweepResult{Ready: 1, Dispatched: 1}, nil)

	s := NewReminderScheduler(d, &mockRefresher{}, logrus.NewEntry(logger), time.UTC, "* * * * *", "*/15 * * * *")
	s.RunSweep(context.Background())

	assert.Equal(t, []string{"sync", "dispatch"}, order)
	d.AssertExpectations(t)
}

func TestRunSweep_SyncErrorStillDispatches(t *testing.T) {
	logger, hook := test.NewNullLogger()
	d := &mockDispatcher{}
	d.On("SyncNotificationPermissions", mock.Anything).Return(false, errors.New("db down"))
	d.On("CheckAndDispatchNotifications", mock.Anything).Return(nil, errors.New("db down"))

	s := NewReminderScheduler(d, &mockRefresher{}, logrus.NewEntry(logger), nil, "* * * * *", "*/15 * * * *")
	s.RunSweep(context.Background())

	d.AssertExpectations(t)
	assert.Len(t, hook.AllEntries(), 2)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestRunRefresh(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := &mockRefresher{}
	r.On("RefreshSchedule", mock.Anything).Return(nil, errors.New("boom")).Once()

	s := NewReminderScheduler(&mockDispatcher{}, r, logrus.NewEntry(logger), time.UTC, "* * * * *", "*/15 * * * *")
	s.RunRefresh(context.Background())

	r.AssertExpectations(t)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Error during schedule refresh", hook.LastEntry().Message)
}

func TestStart_RejectsBadSpec(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s := NewReminderScheduler(&mockDispatcher{}, &mockRefresher{}, logrus.NewEntry(logger), time.UTC, "not a spec", "*/15 * * * *")
	assert.Error(t, s.Start())

	ok := NewReminderScheduler(&mockDispatcher{}, &mockRefresher{}, logrus.NewEntry(logger), time.UTC, "* * * * *", "*/15 * * * *")
	require.NoError(t, ok.Start())
	ok.Stop()
}
