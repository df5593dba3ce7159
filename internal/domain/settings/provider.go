package settings

import "context"

// Provider reads and writes the single settings record.
// Get returns Default() when nothing has been stored yet.
type Provider interface {
	Get(ctx context.Context) (*Settings, error)
	Update(ctx context.Context, s *Settings) error
}
