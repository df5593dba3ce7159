package memory

import (
	"context"
	"sync"

	"payment_reminder/internal/domain/settings"
)

type SettingsStore struct {
	mu sync.RWMutex
	st *settings.Settings
}

// NewSettingsStore starts from initial, or settings.Default() when nil.
func NewSettingsStore(initial *settings.Settings) *SettingsStore {
	if initial == nil {
		initial = settings.Default()
	}
	return &SettingsStore{st: copySettings(initial)}
}

func (s *SettingsStore) Get(_ context.Context) (*settings.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySettings(s.st), nil
}

func (s *SettingsStore) Update(_ context.Context, st *settings.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = copySettings(st)
	return nil
}

func copySettings(st *settings.Settings) *settings.Settings {
	c := *st
	if st.PermissionDeniedAt != nil {
		at := *st.PermissionDeniedAt
		c.PermissionDeniedAt = &at
	}
	return &c
}
