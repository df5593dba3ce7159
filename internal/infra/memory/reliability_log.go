package memory

import (
	"context"
	"sync"

	"payment_reminder/internal/domain/notification"
)

// ReliabilityLog keeps the newest limit entries in process memory.
type ReliabilityLog struct {
	mu      sync.Mutex
	limit   int
	entries []notification.ReliabilityEntry
}

func NewReliabilityLog(limit int) *ReliabilityLog {
	if limit <= 0 {
		limit = notification.ReliabilityLogLimit
	}
	return &ReliabilityLog{limit: limit}
}

func (l *ReliabilityLog) Append(_ context.Context, e notification.ReliabilityEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	if over := len(l.entries) - l.limit; over > 0 {
		l.entries = append([]notification.ReliabilityEntry(nil), l.entries[over:]...)
	}
	return nil
}

func (l *ReliabilityLog) Entries(_ context.Context) ([]notification.ReliabilityEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]notification.ReliabilityEntry(nil), l.entries...), nil
}
