package main

import (
	"context"
	"errors"
	"gato/Gato-Game/internal/api/service"
	"gato/Gato-Game/internal/bot"
	"gato/Gato-Game/internal/config"
	"gato/Gato-Game/internal/db"
	"gato/Gato-Game/internal/events"
	"gato/Gato-Game/internal/hub"
	"gato/Gato-Game/internal/logger"
	"gato/Gato-Game/internal/repository"
	"gato/Gato-Game/internal/server"
	"gato/Gato-Game/internal/session"
	"gato/Gato-Game/internal/telemetry"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger.Init(cfg.LogLevel, cfg.Otel.Enabled)
	if cfg.DefaultSecret {
		slog.Warn("JWT_SECRET is not set, signing session tokens with the built-in development secret")
	}

	// Initialize telemetry
	if cfg.Otel.Enabled {
		shutdown, err := telemetry.InitOtel(ctx, cfg.Otel)
		if err != nil {
			log.Fatalf("failed to initialize telemetry: %v", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				slog.Error("Error shutting down telemetry", "error", err)
			}
		}()
	}

	metrics, err := telemetry.NewMetrics(nil)
	if err != nil {
		log.Fatalf("failed to create metrics: %v", err)
	}

	// Create session store and event broker
	var (
		repo   repository.SessionRepository
		broker events.Broker
	)
	switch cfg.SessionStore {
	case config.StoreRedis:
		rdb, err := db.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatalf("failed to initialize redis: %v", err)
		}
		defer rdb.Close()
		repo = repository.NewRedisSessionRepository(rdb, cfg.SessionTTL)
		broker = events.NewRedisBroker(rdb)
	default:
		repo = repository.NewMemorySessionRepository(cfg.SessionTTL)
		broker = events.NewMemoryBroker()
	}
	slog.Info("Session store ready", "session.store", cfg.SessionStore)

	// Create services
	player := bot.NewPlayer(bot.DefaultMarks, bot.DefaultSource, bot.ThinkingTimes{
		Normal: cfg.NormalThinking,
		Hard:   cfg.HardThinking,
	})
	sessions := session.NewService(repo, broker, player, session.WithMetrics(metrics))
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.SessionTTL)

	// Create hub
	h := hub.NewHub()
	go h.Run(ctx)

	// Create the Gin-based server
	gin.SetMode(gin.ReleaseMode)
	srv := server.NewServer(h, sessions, tokens)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Engine(),
	}

	go func() {
		slog.Info("http server started", "http.addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-ctx.Done()

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exiting")
}
