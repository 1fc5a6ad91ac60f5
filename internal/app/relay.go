package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/okatev/whiteboard/internal/core"
)

// emptyCanvas is what a fresh session delivers: an empty state, never an
// absent one. The client stores its snapshot as a JSON string, so the
// empty representation is the empty string.
var emptyCanvas = json.RawMessage(`""`)

// Relay fans session state and presence out to bound connections. It
// never parses, validates or size-limits canvas blobs.
type Relay struct{}

func NewRelay() *Relay { return &Relay{} }

// DeliverInitialState unicasts the current canvas to the joining
// connection only, never broadcast.
func (r *Relay) DeliverInitialState(conn core.SignalConnection, s core.SessionService) {
	data := json.RawMessage(s.Canvas())
	if len(data) == 0 {
		data = emptyCanvas
	}
	f, ok := encode(core.InitialStateEvent{Type: core.EventInitialState, Data: data})
	if !ok {
		return
	}
	if err := conn.TrySend(f); err != nil {
		log.Warn().Err(err).Str("module", "app.relay").Str("session", string(s.ID())).Msg("initial state not delivered")
	}
}

// PublishUpdate overwrites the stored canvas and sends the new blob to
// every connection of the session except the origin. The origin already
// holds the copy it just produced.
func (r *Relay) PublishUpdate(s core.SessionService, data []byte, origin core.ConnID) core.PublishResult {
	s.SetCanvas(data)
	f, ok := encode(core.StateUpdateEvent{Type: core.EventStateUpdate, Data: data})
	if !ok {
		return core.PublishResult{}
	}
	return s.Broadcast(origin, f)
}

// PublishPresence sends the roster snapshot to every connection of the
// session, including the one that triggered the change.
func (r *Relay) PublishPresence(s core.SessionService) core.PublishResult {
	snap := s.Presence()
	f, ok := encode(core.PresenceUpdateEvent{Type: core.EventPresenceUpdate, Count: snap.Count, Users: snap.Users})
	if !ok {
		return core.PublishResult{}
	}
	return s.Broadcast("", f)
}

func encode(v any) (core.Frame, bool) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.relay").Msg("encode event")
		return nil, false
	}
	return b, true
}
