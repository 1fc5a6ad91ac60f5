package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/okatev/whiteboard/internal/core"
	"github.com/okatev/whiteboard/internal/domain"
)

// SessionRegistryImpl is the single owner of all session records.
// Sessions are created on first reference and never deleted.
type SessionRegistryImpl struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]core.SessionService
}

func NewSessionRegistry() *SessionRegistryImpl {
	return &SessionRegistryImpl{sessions: make(map[domain.SessionID]core.SessionService)}
}

func (r *SessionRegistryImpl) GetOrCreate(id domain.SessionID) (core.SessionService, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		return s, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok = r.sessions[id]; ok {
		return s, false
	}
	s = core.NewSessionService(id)
	r.sessions[id] = s
	log.Info().Str("module", "app.registry").Str("session", string(id)).Msg("session created")
	return s, true
}

func (r *SessionRegistryImpl) Get(id domain.SessionID) (core.SessionService, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *SessionRegistryImpl) List() []core.SessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.SessionInfo, 0, len(r.sessions))
	for id, s := range r.sessions {
		out = append(out, core.SessionInfo{ID: id, ConnCount: s.ConnCount()})
	}
	return out
}
