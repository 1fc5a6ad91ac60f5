package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/okatev/whiteboard/internal/app/orch"
	"github.com/okatev/whiteboard/internal/config"
	"github.com/okatev/whiteboard/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

// Identity resolves an opaque token to a display name.
type Identity interface {
	VerifyIdentity(token string) (string, bool)
}

type SignalWSController struct {
	Orch *orch.Orchestrator
	Auth Identity
	Cfg  *config.Config
}

func NewSignalWSController(o *orch.Orchestrator, auth Identity, cfg *config.Config) *SignalWSController {
	return &SignalWSController{Orch: o, Auth: auth, Cfg: cfg}
}

// WsSignalConn implements core.SignalConnection over one WebSocket.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and starts the connection pumps.
// Joining a session requires no authorization; an optional token only
// supplies a verified fallback display name.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	cid := core.ConnID(uuid.NewString())

	fallbackName := ""
	if tok := c.Query("token"); tok != "" && ctl.Auth != nil {
		if name, ok := ctl.Auth.VerifyIdentity(tok); ok {
			fallbackName = name
		} else {
			log.Warn().Str("module", "signal").Str("cid", string(cid)).Msg("invalid identity token on connect")
		}
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "signal").Str("cid", string(cid)).Msg("new WS connection")

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cid, conn, cancel, fallbackName)
}
