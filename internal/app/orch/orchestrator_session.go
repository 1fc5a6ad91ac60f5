package orch

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/okatev/whiteboard/internal/core"
	"github.com/okatev/whiteboard/internal/domain"
)

// OnJoin resolves or creates the session, records the binding with the
// join-time display name, pushes the roster to the whole session and
// delivers the current canvas to the joining connection only.
// A join on an already-bound connection rebinds: the old session is left
// with full cleanup first.
func (o *Orchestrator) OnJoin(cid core.ConnID, conn core.SignalConnection, cancel context.CancelFunc, sid domain.SessionID, displayName string) {
	if prev, ok := o.Bindings.Lookup(cid); ok {
		log.Info().Str("module", "orch").Str("cid", string(cid)).Str("from_session", string(prev.SessionID)).Msg("rejoin, leaving previous session")
		o.unbind(cid)
	}

	sess, created := o.Sessions.GetOrCreate(sid)
	if created {
		o.hydrate(sess)
	}

	sess.Join(displayName)
	sess.Attach(cid, conn)
	o.Bindings.Bind(cid, sid, displayName, conn, cancel)

	res := o.Relay.PublishPresence(sess)
	o.handleDropped(sess, res)
	o.Relay.DeliverInitialState(conn, sess)

	log.Info().Str("module", "orch").Str("cid", string(cid)).Str("session", string(sid)).Str("name", displayName).Msg("joined session")
}

// OnLeave unwinds the binding but keeps the transport open; the
// connection may join again later.
func (o *Orchestrator) OnLeave(cid core.ConnID) {
	o.unbind(cid)
}

// OnDisconnect runs the same cleanup as OnLeave and is the terminal
// transition. Safe from any state and safe to call twice: the binding
// table makes cleanup exactly-once, so an abrupt network drop never
// leaks a stale presence entry.
func (o *Orchestrator) OnDisconnect(cid core.ConnID) {
	o.unbind(cid)
}

func (o *Orchestrator) unbind(cid core.ConnID) {
	binding, ok := o.Bindings.Unbind(cid)
	if !ok {
		return
	}
	sess, found := o.Sessions.Get(binding.SessionID)
	if !found {
		return
	}
	sess.Detach(cid)
	// Removal key is the display name recorded at join time, matching the
	// key class the roster stores.
	sess.Leave(binding.Name)

	res := o.Relay.PublishPresence(sess)
	o.handleDropped(sess, res)
	o.persist(sess)

	log.Info().Str("module", "orch").Str("cid", string(cid)).Str("session", string(binding.SessionID)).Str("name", binding.Name).Msg("left session")
}

// hydrate restores the last persisted canvas into a freshly created
// session record. Roster is never restored; presence is live-only.
func (o *Orchestrator) hydrate(sess core.SessionService) {
	if o.Store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	snap, ok, err := o.Store.Load(ctx, sess.ID())
	if err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("session", string(sess.ID())).Msg("snapshot not loaded")
		return
	}
	if ok && len(snap.State) > 0 {
		sess.SetCanvas(snap.State)
		log.Info().Str("module", "orch").Str("session", string(sess.ID())).Msg("canvas restored from store")
	}
}
