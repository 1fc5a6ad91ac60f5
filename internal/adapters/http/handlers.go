package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/okatev/whiteboard/internal/auth"
	"github.com/okatev/whiteboard/internal/core"
	"github.com/okatev/whiteboard/internal/domain"
	"github.com/okatev/whiteboard/internal/store"
)

// SessionAPI exposes session metadata over plain HTTP. Live sync state
// always wins over the persisted snapshot.
type SessionAPI struct {
	Sessions core.SessionRegistry
	Store    store.SessionStore
	Auth     *auth.Service
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *SessionAPI) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing username or password"})
		return
	}
	if err := h.Auth.Register(req.Username, req.Password); err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"message": "user already exists"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "user registered"})
}

func (h *SessionAPI) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing username or password"})
		return
	}
	token, err := h.Auth.Login(req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrThrottled):
		c.JSON(http.StatusTooManyRequests, gin.H{"message": "too many attempts"})
	case err != nil:
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
	default:
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

func (h *SessionAPI) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": h.Sessions.List()})
}

type createSessionRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

func (h *SessionAPI) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing session_id"})
		return
	}
	sid, err := domain.ParseSessionID(req.SessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	_, created := h.Sessions.GetOrCreate(sid)
	if !created {
		c.JSON(http.StatusConflict, gin.H{"message": "session already exists"})
		return
	}
	log.Info().Str("module", "adapters.http").Str("session", string(sid)).Str("by", c.GetString("username")).Msg("session created")
	c.JSON(http.StatusCreated, gin.H{"message": "session created", "session_id": string(sid)})
}

type sessionResponse struct {
	SessionID string          `json:"session_id"`
	Count     int             `json:"count"`
	Users     []string        `json:"users"`
	Canvas    json.RawMessage `json:"canvas"`
}

func (h *SessionAPI) GetSession(c *gin.Context) {
	sid, err := domain.ParseSessionID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if sess, ok := h.Sessions.Get(sid); ok {
		snap := sess.Presence()
		c.JSON(http.StatusOK, sessionResponse{
			SessionID: string(sid),
			Count:     snap.Count,
			Users:     snap.Users,
			Canvas:    canvasOrEmpty(sess.Canvas()),
		})
		return
	}

	if h.Store != nil {
		persisted, ok, err := h.Store.Load(c.Request.Context(), sid)
		if err != nil {
			log.Warn().Err(err).Str("module", "adapters.http").Str("session", string(sid)).Msg("store lookup failed")
		} else if ok {
			c.JSON(http.StatusOK, sessionResponse{
				SessionID: string(sid),
				Count:     0,
				Users:     []string{},
				Canvas:    canvasOrEmpty(persisted.State),
			})
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"message": "session not found"})
}

func canvasOrEmpty(data []byte) json.RawMessage {
	if len(data) == 0 {
		return json.RawMessage(`""`)
	}
	return data
}
