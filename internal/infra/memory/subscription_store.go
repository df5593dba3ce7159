// Package memory holds in-process implementations of the domain repositories.
package memory

import (
	"context"
	"sync"
	"time"

	"payment_reminder/internal/domain/subscription"
)

type SubscriptionStore struct {
	mu    sync.RWMutex
	subs  map[string]subscription.Subscription
	order []string
}

func NewSubscriptionStore(subs ...*subscription.Subscription) *SubscriptionStore {
	s := &SubscriptionStore{subs: make(map[string]subscription.Subscription)}
	for _, sub := range subs {
		s.Put(sub)
	}
	return s
}

// Put inserts or replaces a subscription.
func (s *SubscriptionStore) Put(sub *subscription.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[sub.ID]; !ok {
		s.order = append(s.order, sub.ID)
	}
	s.subs[sub.ID] = *sub
}

func (s *SubscriptionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[id]; !ok {
		return
	}
	delete(s.subs, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *SubscriptionStore) GetByID(_ context.Context, id string) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subs[id]
	if !ok {
		return nil, subscription.ErrNotFound
	}
	return &sub, nil
}

func (s *SubscriptionStore) ListAll(_ context.Context) ([]*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*subscription.Subscription, 0, len(s.order))
	for _, id := range s.order {
		sub := s.subs[id]
		out = append(out, &sub)
	}
	return out, nil
}

func (s *SubscriptionStore) ListDueOn(_ context.Context, day time.Time) ([]*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := day.Format("2006-01-02")
	out := make([]*subscription.Subscription, 0)
	for _, id := range s.order {
		sub := s.subs[id]
		if sub.IsActive && sub.NextPaymentDate.Format("2006-01-02") == want {
			out = append(out, &sub)
		}
	}
	return out, nil
}
