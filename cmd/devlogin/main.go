package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/pos-frontend/internal/api/http"
	"github.com/spec-kit/pos-frontend/internal/auth"
	"github.com/spec-kit/pos-frontend/internal/config"
	"github.com/spec-kit/pos-frontend/internal/devbackend"
	"github.com/spec-kit/pos-frontend/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Auth.JWTSecret == "" {
		logger.Fatal("AUTH_JWT_SECRET is required to issue tokens")
	}

	users, err := devbackend.LoadDirectory(cfg.DevLogin.UsersFile, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to load users", zap.String("file", cfg.DevLogin.UsersFile), zap.Error(err))
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	metrics := observability.NewMetrics("pos_devlogin")

	app := fiber.New(fiber.Config{AppName: cfg.App.Name + "-devlogin"})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	devbackend.NewServer(users, tokens, logger).Register(app)

	go func() {
		if err := app.Listen(cfg.DevLogin.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))

	_ = app.Shutdown()
}
