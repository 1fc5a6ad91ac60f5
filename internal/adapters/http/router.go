package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/okatev/whiteboard/internal/adapters/signal"
	"github.com/okatev/whiteboard/internal/app/orch"
	"github.com/okatev/whiteboard/internal/auth"
	"github.com/okatev/whiteboard/internal/config"
	"github.com/okatev/whiteboard/internal/store"
)

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

// AuthRequired guards the session CRUD routes with a bearer token issued
// by the identity service. The sync core itself never checks tokens.
func AuthRequired(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			c.AbortWithStatusJSON(401, gin.H{"message": "missing token"})
			return
		}
		name, ok := authSvc.VerifyIdentity(header[len(prefix):])
		if !ok {
			c.AbortWithStatusJSON(401, gin.H{"message": "invalid token"})
			return
		}
		c.Set("username", name)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, authSvc *auth.Service, st store.SessionStore) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	cookieStore := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("WhiteboardSessions", cookieStore))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")

	ctrl := signal.NewSignalWSController(o, authSvc, cfg)
	api.GET("/ws", func(c *gin.Context) {
		ctrl.HandleSignal(ctx, c)
	})

	h := &SessionAPI{Sessions: o.Sessions, Store: st, Auth: authSvc}
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	api.POST("/session", AuthRequired(authSvc), h.CreateSession)
	api.GET("/session/:id", AuthRequired(authSvc), h.GetSession)
	api.GET("/sessions", AuthRequired(authSvc), h.ListSessions)

	return r
}
