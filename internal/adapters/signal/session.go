package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/okatev/whiteboard/internal/core"
	"github.com/okatev/whiteboard/internal/domain"
)

func (ctl *SignalWSController) handleJoin(
	cid core.ConnID,
	conn *WsSignalConn,
	cancel context.CancelFunc,
	fallbackName string,
	data []byte,
) {
	type joinPayload struct {
		Type      string `json:"type"`
		SessionID string `json:"session_id"`
		Username  string `json:"username"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(conn, "bad_payload")
		return
	}

	sid, err := domain.ParseSessionID(p.SessionID)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("cid", string(cid)).Msg("join without usable session id")
		ctl.sendError(conn, "missing session_id")
		return
	}

	name := p.Username
	if name == "" {
		name = fallbackName
	}
	if err := domain.ValidateDisplayName(name); err != nil {
		ctl.sendError(conn, "invalid username")
		return
	}

	log.Info().Str("module", "signal").Str("cid", string(cid)).Str("session", string(sid)).Str("name", name).Msg("join")
	ctl.Orch.OnJoin(cid, conn, cancel, sid, name)
}

func (ctl *SignalWSController) handleUpdate(
	cid core.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	type updatePayload struct {
		Type      string          `json:"type"`
		SessionID string          `json:"session_id"`
		Data      json.RawMessage `json:"data"`
	}
	var p updatePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad update payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if len(p.Data) == 0 {
		ctl.sendError(conn, "missing data")
		return
	}

	ctl.Orch.OnUpdate(cid, domain.SessionID(p.SessionID), []byte(p.Data))
}

// handleLeave unwinds the session binding but keeps the socket open; the
// client may join another session on the same connection.
func (ctl *SignalWSController) handleLeave(
	cid core.ConnID,
	conn *WsSignalConn,
) {
	log.Info().Str("module", "signal").Str("cid", string(cid)).Msg("leave")
	ctl.Orch.OnLeave(cid)
	ctl.sendJSON(conn, map[string]any{
		"type": "left",
	})
}
