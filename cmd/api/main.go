package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/task-manager/internal/api/http"
	"github.com/spec-kit/task-manager/internal/api/http/handlers"
	"github.com/spec-kit/task-manager/internal/auth"
	"github.com/spec-kit/task-manager/internal/config"
	"github.com/spec-kit/task-manager/internal/observability"
	"github.com/spec-kit/task-manager/internal/persistence"
	"github.com/spec-kit/task-manager/internal/repository"
	"github.com/spec-kit/task-manager/internal/service"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userStore := repository.NewCachedUserStore(
		repository.NewUserStore(pool),
		redis.Client,
		cfg.Auth.UserCacheTTL(),
		logger,
	)
	taskStore := repository.NewTaskStore(pool)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL(), auth.TokenDependencies{
		Store:        userStore,
		StoreTimeout: cfg.Auth.StoreTimeout(),
		Logger:       logger,
	})
	cookies := auth.NewCookieManager(cfg.Auth.TokenTTL(), cfg.App.IsProduction())
	resolver := auth.NewIdentityResolver(tokens)

	metrics := observability.NewMetrics()
	gate := auth.NewGate(resolver, cookies, auth.NewRouteTable(), metrics, logger)

	authService := service.NewAuthService(userStore, tokens, cfg.Auth.BcryptCost)
	taskService := service.NewTaskService(taskStore)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Gate:   gate,
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:   handlers.NewAuthHandler(authService, cookies),
		Tasks:  handlers.NewTasksHandler(taskService),
		Pages:  handlers.NewPagesHandler(),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
