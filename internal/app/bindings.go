package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/okatev/whiteboard/internal/core"
	"github.com/okatev/whiteboard/internal/domain"
)

// Binding ties one live connection to its session and the display name
// recorded at join time. That name, not the connection id, is the key
// used to remove the presence entry on disconnect.
type Binding struct {
	SessionID domain.SessionID
	Name      string
	Conn      core.SignalConnection
	Cancel    context.CancelFunc
}

// Bindings is the mutable table of live connection bindings.
// A connection binds to exactly one session at a time.
type Bindings struct {
	mu     sync.RWMutex
	byConn map[core.ConnID]*Binding
}

func NewBindings() *Bindings {
	return &Bindings{byConn: make(map[core.ConnID]*Binding)}
}

func (b *Bindings) Bind(cid core.ConnID, sid domain.SessionID, name string, conn core.SignalConnection, cancel context.CancelFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byConn[cid] = &Binding{SessionID: sid, Name: name, Conn: conn, Cancel: cancel}
	log.Info().Str("module", "app.bindings").Str("cid", string(cid)).Str("session", string(sid)).Str("name", name).Msg("bound connection")
}

func (b *Bindings) Lookup(cid core.ConnID) (Binding, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if e, ok := b.byConn[cid]; ok {
		return *e, true
	}
	return Binding{}, false
}

// Unbind removes the binding and returns it. The second call for the
// same connection reports false, which makes disconnect cleanup
// naturally exactly-once.
func (b *Bindings) Unbind(cid core.ConnID) (Binding, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.byConn[cid]
	if !ok {
		return Binding{}, false
	}
	delete(b.byConn, cid)
	log.Info().Str("module", "app.bindings").Str("cid", string(cid)).Str("session", string(e.SessionID)).Msg("unbound connection")
	return *e, true
}

// Cancel tears down the connection's pumps; the transport close then runs
// the normal disconnect path.
func (b *Bindings) Cancel(cid core.ConnID) bool {
	b.mu.RLock()
	e, ok := b.byConn[cid]
	b.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.bindings").Str("cid", string(cid)).Msg("canceled connection")
	return true
}

func (b *Bindings) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.byConn)
}
