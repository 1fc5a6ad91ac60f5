// Package orch binds transport connections to sessions and unwinds the
// binding on disconnect. It is the only component adapters talk to.
package orch

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/okatev/whiteboard/internal/app"
	"github.com/okatev/whiteboard/internal/core"
	"github.com/okatev/whiteboard/internal/domain"
	"github.com/okatev/whiteboard/internal/store"
)

const persistTimeout = 2 * time.Second

type Orchestrator struct {
	Sessions core.SessionRegistry
	Bindings *app.Bindings
	Relay    *app.Relay
	Policy   app.Policy
	// Store is optional; a nil store disables durability entirely.
	Store store.SessionStore
}

// OnUpdate relays a new canvas blob to everyone else in the bound
// session. Updates from unbound connections carry no session context and
// are silently ignored; a claimed session id that contradicts the
// binding is ignored too.
func (o *Orchestrator) OnUpdate(cid core.ConnID, claimed domain.SessionID, data []byte) {
	binding, ok := o.Bindings.Lookup(cid)
	if !ok {
		log.Debug().Str("module", "orch").Str("cid", string(cid)).Msg("update from unbound connection")
		return
	}
	if claimed != "" && claimed != binding.SessionID {
		log.Warn().Str("module", "orch").Str("cid", string(cid)).Str("claimed", string(claimed)).Str("bound", string(binding.SessionID)).Msg("update for mismatched session")
		return
	}
	sess, ok := o.Sessions.Get(binding.SessionID)
	if !ok {
		log.Debug().Str("module", "orch").Str("session", string(binding.SessionID)).Msg("update for unknown session")
		return
	}
	res := o.Relay.PublishUpdate(sess, data, cid)
	o.handleDropped(sess, res)
	o.persist(sess)
}

func (o *Orchestrator) handleDropped(sess core.SessionService, res core.PublishResult) {
	if o.Policy == nil {
		return
	}
	for _, cid := range res.Dropped {
		switch o.Policy.OnBackPressure(sess, cid) {
		case app.KickConn:
			o.Bindings.Cancel(cid)
		case app.NoAction, app.DropFrame:
		}
	}
}

func (o *Orchestrator) persist(sess core.SessionService) {
	if o.Store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	snap := sess.Presence()
	if err := o.Store.Save(ctx, sess.ID(), sess.Canvas(), snap.Users); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("session", string(sess.ID())).Msg("snapshot not persisted")
	}
}
