package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"

	"agency_backend/internal/app/di"
	"agency_backend/internal/app/router"
	"agency_backend/internal/config"
	"agency_backend/internal/platform/db"
	platformredis "agency_backend/internal/platform/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	startedAt := time.Now()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// db
	gdb, err := db.Open(cfg.DB)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer func() {
			if err := sqlDB.Close(); err != nil {
				slog.Error("failed to close database", "error", err)
			}
		}()
	}

	// Redis
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		tmp, err := platformredis.NewRedisClient(ctx, cfg.Redis)
		cancel()
		if err != nil {
			slog.Warn("Redis unavailable. Running without cache.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	auth, err := di.NewAuth(rdb, gdb, di.AuthOptions{
		JWTSecret:  cfg.JWTSecret,
		SetupToken: cfg.AdminSetupToken,
		BcryptCost: cfg.BcryptCost,
	})
	if err != nil {
		slog.Error("failed to initialise auth", "error", err)
		os.Exit(1)
	}
	if cfg.AdminSetupToken == "" {
		slog.Warn("ADMIN_SETUP_TOKEN is not set; /api/auth/promote is disabled")
	}

	// ルータ生成
	r := router.NewRouter(router.Deps{
		Auth:        auth.Handler,
		Verifier:    auth.Tokens,
		Users:       auth.Users,
		LimitStore:  di.NewRateLimitStore(rdb),
		RateLimit:   cfg.RateLimit,
		FrontendURL: cfg.FrontendURL,
		StartedAt:   startedAt,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("shutdown signal received: closing HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
	slog.Info("HTTP server closed")
}

// setupLogger installs a JSON handler in production and a text handler otherwise.
func setupLogger(cfg *config.Config) {
	var h slog.Handler
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(h))
}
