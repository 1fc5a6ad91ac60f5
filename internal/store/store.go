// Package store persists the last known snapshot of a session.
// Durability is best-effort: live sessions never depend on it, failures
// are logged and ignored by callers.
package store

import (
	"context"

	"github.com/okatev/whiteboard/internal/domain"
)

// Snapshot is what survives a process restart: the last canvas blob and
// the roster as it was when saved. Live presence is never restored.
type Snapshot struct {
	State        []byte
	Participants []string
}

type SessionStore interface {
	Save(ctx context.Context, id domain.SessionID, state []byte, participants []string) error
	// Load reports ok=false when the session was never saved.
	Load(ctx context.Context, id domain.SessionID) (Snapshot, bool, error)
	Close() error
}
