package conversation

import (
	"context"
	"time"
)

// Store is the session record backend. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the stored state or nil when the session is unknown.
	Get(ctx context.Context, sessionID string) (*State, error)
	Put(ctx context.Context, state *State) error
	Delete(ctx context.Context, sessionID string) error
	// CleanupExpired removes exactly the sessions whose last activity is
	// older than SessionTTL relative to now, and reports how many.
	// Backends with native TTL eviction may report zero.
	CleanupExpired(ctx context.Context, now time.Time) (int, error)
}
