package core

import (
	"errors"

	"github.com/okatev/whiteboard/internal/domain"
)

// Frame is an encoded outbound payload, ready for the wire.
type Frame []byte

// ConnID identifies one live transport connection. Never used as a
// presence key; presence entries are display names.
type ConnID string

var ErrConnClosed = errors.New("connection closed")

// SignalConnection abstracts a messaging transport endpoint.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// PresenceSnapshot is a point-in-time view of a session roster.
// Join order is preserved; duplicate names are distinct entries.
type PresenceSnapshot struct {
	Count int      `json:"count"`
	Users []string `json:"users"`
}

// PublishResult reports delivery stats/backpressure to the lifecycle manager.
type PublishResult struct {
	SentTo  int
	Dropped []ConnID
}

// SessionService is the core-facing API of one whiteboard session.
// It owns the roster and the canvas blob but never touches transport
// resources and never inspects blob contents.
type SessionService interface {
	ID() domain.SessionID

	Join(displayName string) PresenceSnapshot
	Leave(displayName string)
	Presence() PresenceSnapshot

	Canvas() []byte
	SetCanvas(data []byte)

	Attach(cid ConnID, conn SignalConnection)
	Detach(cid ConnID)
	ConnCount() int
	// Broadcast fans data out to every attached connection except from.
	// An empty from sends to everyone.
	Broadcast(from ConnID, data Frame) PublishResult
}

// SessionRegistry owns every live session record. Sessions are never
// deleted; they live for the process lifetime.
type SessionRegistry interface {
	// GetOrCreate reports whether the call created the session.
	GetOrCreate(id domain.SessionID) (SessionService, bool)
	Get(id domain.SessionID) (SessionService, bool)
	List() []SessionInfo
}

type SessionInfo struct {
	ID        domain.SessionID `json:"id"`
	ConnCount int              `json:"client_count"`
}
