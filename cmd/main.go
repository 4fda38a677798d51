package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chat-relay/relay-service/config"
	"github.com/chat-relay/relay-service/internal/postgres"
	"github.com/chat-relay/relay-service/internal/relay"
	"github.com/chat-relay/relay-service/internal/service"
	httpx "github.com/chat-relay/relay-service/internal/transport/http"
	"github.com/chat-relay/relay-service/internal/transport/ws"
	"github.com/chat-relay/relay-service/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting relay-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- postgres ---
	ctx := context.Background()
	db, err := postgres.New(ctx, postgres.PoolConfig{
		DSN:             cfg.Postgres.DSN,
		MaxConns:        cfg.Postgres.MaxConns,
		MinConns:        cfg.Postgres.MinConns,
		ApplicationName: cfg.Logging.Service,
	})
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer db.Close()

	// --- repos ---
	roomRepo := postgres.NewRoomRepository(db.Pool)
	memberRepo := postgres.NewMembershipRepository(db.Pool)
	chatRepo := postgres.NewChatRepository(db.Pool)

	// --- services ---
	roomSvc := service.NewRoomService(roomRepo, memberRepo)
	chatSvc := service.NewChatService(chatRepo)
	if cfg.Relay.MaxMessageLen > 0 {
		chatSvc.SetMaxMessageLen(cfg.Relay.MaxMessageLen)
	}

	// --- relay core & dispatcher ---
	core := relay.NewCore(roomSvc, chatSvc, relay.Options{
		StoreTimeout: cfg.StoreTimeout(),
	})
	dispatcher := relay.NewDispatcher(core)

	// --- transports ---
	wsServer := ws.NewServer(dispatcher, cfg.PingInterval())
	handler := httpx.NewHandler(roomSvc, chatSvc, core)
	router := httpx.NewRouter(handler, wsServer)

	httpSrv := &http.Server{
		Addr:        cfg.HTTP.Addr,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
