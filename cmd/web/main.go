package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/pos-frontend/internal/api/http"
	"github.com/spec-kit/pos-frontend/internal/api/http/handlers"
	"github.com/spec-kit/pos-frontend/internal/auth"
	"github.com/spec-kit/pos-frontend/internal/backend"
	"github.com/spec-kit/pos-frontend/internal/config"
	"github.com/spec-kit/pos-frontend/internal/events"
	"github.com/spec-kit/pos-frontend/internal/observability"
	"github.com/spec-kit/pos-frontend/internal/service"
	"github.com/spec-kit/pos-frontend/internal/session"
	"github.com/spec-kit/pos-frontend/internal/worker"
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
	logger = observability.ForTerminal(logger, cfg.Store.Slot)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, backends, err := session.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open token store", zap.Error(err))
	}
	defer backends.Close()

	metrics := observability.NewMetrics("pos")
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger, metrics))

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	if !tokens.VerifiesSignature() {
		logger.Warn("AUTH_JWT_SECRET not set; session token signatures are not verified")
	}

	sess := session.New(store, tokens, dispatcher, logger)
	worker.StartSessionRestore(ctx, sess)

	authService := service.NewAuthService(sess, backend.NewClient(cfg.Backend), logger)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, sess, storePingers(backends)),
		Auth:    handlers.NewAuthHandler(authService),
		Session: handlers.NewSessionHandler(sess),
		Areas:   handlers.NewAreaHandler(),
		Profile: handlers.NewProfileHandler(authService),
		Guard:   auth.NewRouteGuard(sess, metrics),
		Metrics: metrics.Handler(),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func storePingers(b *session.Backends) map[string]handlers.Pinger {
	pingers := map[string]handlers.Pinger{}
	if b.Postgres != nil {
		pingers["postgres"] = b.Postgres
	}
	if b.Redis != nil {
		pingers["redis"] = b.Redis
	}
	return pingers
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
