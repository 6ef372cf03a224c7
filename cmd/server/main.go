// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/domino/internal/cache"
	"github.com/jason-s-yu/domino/internal/config"
	"github.com/jason-s-yu/domino/internal/database"
	"github.com/jason-s-yu/domino/internal/game"
	"github.com/jason-s-yu/domino/internal/handlers"
	"github.com/jason-s-yu/domino/internal/lobby"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg.ConfigureLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RedisAddr != "" {
		if err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword); err != nil {
			log.Warnf("Redis unavailable at %s, running without action log: %v", cfg.RedisAddr, err)
		} else {
			defer cache.Close()
		}
	}
	if cfg.DatabaseURL != "" {
		if err := database.Connect(ctx, cfg.DatabaseURL); err != nil {
			log.Fatalf("database: %v", err)
		}
		defer database.Close()
	} else {
		log.Warn("DATABASE_URL not set, session results will not be persisted")
	}

	lobbies := lobby.NewManager(cfg.MinPlayers, cfg.MaxPlayers, cfg.LobbyTimeout)
	srv := handlers.NewServer(cfg, game.NewGameStore(), lobbies, handlers.NewHub())
	srv.InsecureOrigins = os.Getenv("WS_INSECURE_ORIGINS") == "true"

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("Domino server listening on %s", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http: %v", err)
		}
	}()

	<-ctx.Done()
	log.Print("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error: http shutdown: %v", err)
	}
}
