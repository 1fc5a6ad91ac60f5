package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/okatev/whiteboard/internal/adapters/http"
	"github.com/okatev/whiteboard/internal/app"
	"github.com/okatev/whiteboard/internal/app/orch"
	"github.com/okatev/whiteboard/internal/auth"
	"github.com/okatev/whiteboard/internal/config"
	"github.com/okatev/whiteboard/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	// Durability is best-effort: a broken store only costs snapshot
	// restore across restarts, never live sessions.
	var st store.SessionStore
	if cfg.DBPath != "" {
		sqliteStore, err := store.Open(cfg.DBPath)
		if err != nil {
			log.Error().Err(err).Msg("store unavailable, running without durability")
		} else {
			st = sqliteStore
			defer func() {
				if err := sqliteStore.Close(); err != nil {
					log.Error().Err(err).Msg("store close")
				}
			}()
		}
	}

	authSvc := auth.NewService()

	o := &orch.Orchestrator{
		Sessions: app.NewSessionRegistry(),
		Bindings: app.NewBindings(),
		Relay:    app.NewRelay(),
		Policy:   app.SimplePolicy{},
		Store:    st,
	}

	r := router.SetupRouter(ctx, cfg, o, authSvc, st)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Whiteboard server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
