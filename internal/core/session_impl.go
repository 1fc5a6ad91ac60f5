package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/okatev/whiteboard/internal/domain"
)

// sessionImpl is a threadsafe in-memory session record.
// One coarse lock covers roster, canvas and attached connections; every
// operation touches the whole record anyway.
// It never closes adapter-owned resources.
type sessionImpl struct {
	id domain.SessionID

	mu           sync.RWMutex
	participants []string
	canvas       []byte
	conns        map[ConnID]SignalConnection
}

func NewSessionService(id domain.SessionID) SessionService {
	return &sessionImpl{
		id:    id,
		conns: make(map[ConnID]SignalConnection),
	}
}

func (s *sessionImpl) ID() domain.SessionID { return s.id }

func (s *sessionImpl) Join(displayName string) PresenceSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants = append(s.participants, displayName)
	log.Info().Str("module", "core.session").Str("session", string(s.id)).Str("name", displayName).Int("count", len(s.participants)).Msg("participant joined")
	return s.snapshotLocked()
}

// Leave removes one entry matching displayName, keeping join order.
// Unknown names are a no-op; a session may legitimately reach zero
// participants and stays registered.
func (s *sessionImpl) Leave(displayName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, name := range s.participants {
		if name == displayName {
			s.participants = append(s.participants[:i], s.participants[i+1:]...)
			log.Info().Str("module", "core.session").Str("session", string(s.id)).Str("name", displayName).Int("count", len(s.participants)).Msg("participant left")
			return
		}
	}
	log.Debug().Str("module", "core.session").Str("session", string(s.id)).Str("name", displayName).Msg("leave for absent participant")
}

func (s *sessionImpl) Presence() PresenceSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *sessionImpl) snapshotLocked() PresenceSnapshot {
	users := make([]string, len(s.participants))
	copy(users, s.participants)
	return PresenceSnapshot{Count: len(users), Users: users}
}

func (s *sessionImpl) Canvas() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.canvas
}

// SetCanvas replaces the stored blob unconditionally. Last writer wins;
// there is no versioning and no merge.
func (s *sessionImpl) SetCanvas(data []byte) {
	s.mu.Lock()
	s.canvas = data
	s.mu.Unlock()
}

func (s *sessionImpl) Attach(cid ConnID, conn SignalConnection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[cid] = conn
	log.Debug().Str("module", "core.session").Str("session", string(s.id)).Str("cid", string(cid)).Msg("connection attached")
}

func (s *sessionImpl) Detach(cid ConnID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, cid)
	log.Debug().Str("module", "core.session").Str("session", string(s.id)).Str("cid", string(cid)).Msg("connection detached")
}

func (s *sessionImpl) ConnCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

func (s *sessionImpl) Broadcast(from ConnID, data Frame) PublishResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := PublishResult{}
	for cid, conn := range s.conns {
		if from != "" && cid == from {
			continue
		}
		if err := conn.TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, cid)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "core.session").Str("session", string(s.id)).Str("from", string(from)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}
