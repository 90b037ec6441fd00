package settings

import "context"

// Store persists the settings singleton.
type Store interface {
	// Get returns the stored settings or a not-found error.
	Get(ctx context.Context) (*Settings, error)
	// Save inserts or replaces the singleton.
	Save(ctx context.Context, s *Settings) error
}
