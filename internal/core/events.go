package core

import "encoding/json"

// Outbound event envelopes, tagged by Type. The relay encodes these into
// frames; transport adapters only move frames.
const (
	EventPresenceUpdate = "presence_update"
	EventInitialState   = "initial_state"
	EventStateUpdate    = "state_update"
)

// PresenceUpdateEvent goes to every connection of a session on join/leave.
type PresenceUpdateEvent struct {
	Type  string   `json:"type"`
	Count int      `json:"count"`
	Users []string `json:"users"`
}

// InitialStateEvent goes to a newly joined connection only.
type InitialStateEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// StateUpdateEvent goes to every connection of a session except the origin.
type StateUpdateEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}
