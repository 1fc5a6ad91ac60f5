package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/okatev/whiteboard/internal/core"
)

const writeWait = 5 * time.Second

func (ctl *SignalWSController) pingPeriod() time.Duration {
	if ctl.Cfg != nil && ctl.Cfg.PingPeriod > 0 {
		return ctl.Cfg.PingPeriod
	}
	return 54 * time.Second
}

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	pingPeriod := ctl.pingPeriod()
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

// readPump owns the transport. Whatever ends the read loop, including an
// abrupt network drop, runs OnDisconnect exactly once on the way out so
// no presence entry outlives its connection.
func (ctl *SignalWSController) readPump(ctx context.Context, cid core.ConnID, c *WsSignalConn, cancel context.CancelFunc, fallbackName string) {
	defer func() {
		log.Info().Str("module", "signal").Str("cid", string(cid)).Msg("readPump closing")
		ctl.Orch.OnDisconnect(cid)
		cancel()
		c.Close()
	}()

	if ctl.Cfg != nil && ctl.Cfg.ReadLimit > 0 {
		c.conn.SetReadLimit(ctl.Cfg.ReadLimit)
	}
	pongWait := ctl.pingPeriod() * 10 / 9
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("cid", string(cid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("cid", string(cid)).Msg("readPump read error")
				return
			}
			ctl.handleEvent(cid, c, cancel, fallbackName, data)
		}
	}
}

// handleEvent validates the envelope shape before dispatch so handlers
// only ever see tagged payloads. A bad event is dropped with an error to
// its origin and never affects other connections.
func (ctl *SignalWSController) handleEvent(cid core.ConnID, c *WsSignalConn, cancel context.CancelFunc, fallbackName string, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("cid", string(cid)).Msg("bad json")
		ctl.sendError(c, "bad_payload")
		return
	}

	switch env.Type {
	case "join":
		ctl.handleJoin(cid, c, cancel, fallbackName, data)
	case "update":
		ctl.handleUpdate(cid, c, data)
	case "leave":
		ctl.handleLeave(cid, c)
	case "ping":
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown event")
	}
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *SignalWSController) sendError(c *WsSignalConn, msg string) {
	ctl.sendJSON(c, map[string]any{
		"type":  "error",
		"error": msg,
	})
}
