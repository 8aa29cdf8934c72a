package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aegis-iam/aegis-iam/internal/app"
	"github.com/aegis-iam/aegis-iam/internal/auth"
	"github.com/aegis-iam/aegis-iam/internal/identity"
	"github.com/aegis-iam/aegis-iam/internal/observability"
	"github.com/aegis-iam/aegis-iam/internal/platform/cache"
	"github.com/aegis-iam/aegis-iam/internal/platform/db"
	"github.com/aegis-iam/aegis-iam/internal/rbac"
	"github.com/aegis-iam/aegis-iam/internal/token"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	var permissionCache *rbac.PermissionCache
	if cfg.RedisAddr != "" {
		redisClient, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable, permission cache disabled", slog.Any("error", err))
		} else {
			defer func() {
				if err := redisClient.Close(); err != nil {
					logger.Warn("redis close", slog.Any("error", err))
				}
			}()
			permissionCache = rbac.NewPermissionCache(redisClient, cfg.PermissionCacheTTL)
		}
	}

	tokens := token.NewService([]byte(cfg.JWTSecret), cfg.TokenTTL)
	mirror := identity.NewClient(cfg.IdentityURL, cfg.IdentityKey)
	authMW := auth.Middleware{Tokens: tokens, Logger: logger}

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, tokens, mirror)
	authHandler := auth.NewHandler(logger, authService, authMW)

	rbacRepo := rbac.NewRepository(dbpool)
	rbacService := rbac.NewService(rbacRepo, permissionCache)
	rbacMW := rbac.Middleware{Service: rbacService, Logger: logger}
	rbacHandler := rbac.NewHandler(logger, rbacService)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		AuthHandler:    authHandler,
		RBACHandler:    rbacHandler,
		AuthMiddleware: authMW,
		RBACMiddleware: rbacMW,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
