package state

import "context"

// Repository persists session summaries.
type Repository interface {
	// Load returns the last saved session, or an empty one if none exists.
	Load(ctx context.Context) (Session, error)

	// Save persists the session atomically.
	Save(ctx context.Context, s Session) error
}
