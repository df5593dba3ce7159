package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"payment_reminder/internal/domain/schedule"
)

// ScheduleStore keeps one entry per subscription. Writes are visible to the next read immediately.
type ScheduleStore struct {
	mu      sync.RWMutex
	entries map[string]*schedule.Entry

	markCalls [][]string
}

func NewScheduleStore(entries ...*schedule.Entry) *ScheduleStore {
	s := &ScheduleStore{entries: make(map[string]*schedule.Entry)}
	for _, e := range entries {
		s.entries[e.SubscriptionID] = e.Clone()
	}
	return s
}

func (s *ScheduleStore) GetPending(_ context.Context) ([]*schedule.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*schedule.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if !e.IsNotified() {
			out = append(out, e.Clone())
		}
	}
	sortEntries(out)
	return out, nil
}

func (s *ScheduleStore) GetBySubscriptionID(_ context.Context, id string) (*schedule.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, schedule.ErrEntryNotFound
	}
	return e.Clone(), nil
}

func (s *ScheduleStore) ListAll(_ context.Context) ([]*schedule.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*schedule.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Clone())
	}
	sortEntries(out)
	return out, nil
}

func (s *ScheduleStore) ReplaceAll(_ context.Context, entries []*schedule.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*schedule.Entry, len(entries))
	for _, e := range entries {
		s.entries[e.SubscriptionID] = e.Clone()
	}
	return nil
}

func (s *ScheduleStore) MarkBatchAsNotified(_ context.Context, ids []string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markCalls = append(s.markCalls, append([]string(nil), ids...))
	for _, id := range ids {
		e, ok := s.entries[id]
		if !ok || e.IsNotified() {
			continue
		}
		stamp := at
		e.NotifiedAt = &stamp
	}
	return nil
}

func (s *ScheduleStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*schedule.Entry)
	return nil
}

// MarkCalls returns the id batches passed to MarkBatchAsNotified, in call order.
func (s *ScheduleStore) MarkCalls() [][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([][]string, len(s.markCalls))
	for i, c := range s.markCalls {
		out[i] = append([]string(nil), c...)
	}
	return out
}

func sortEntries(entries []*schedule.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].ScheduledFor.Equal(entries[j].ScheduledFor) {
			return entries[i].ScheduledFor.Before(entries[j].ScheduledFor)
		}
		return entries[i].SubscriptionID < entries[j].SubscriptionID
	})
}
