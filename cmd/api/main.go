package main

// @title Basket Ranking API
// @version 1.0.0
// @description Строит таблицы расстояний от block group до мест назначения, ранжирует их и собирает корзины ближайших мест под квоту.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/basket-ranking/docs"
	"github.com/basket-ranking/internal/config"
	httpDelivery "github.com/basket-ranking/internal/delivery/http"
	"github.com/basket-ranking/internal/delivery/http/handler"
	"github.com/basket-ranking/internal/infrastructure"
	"github.com/basket-ranking/internal/pkg/logger"
	"github.com/basket-ranking/internal/repository/cache"
	"github.com/basket-ranking/internal/repository/postgres"
	redisRepo "github.com/basket-ranking/internal/repository/redis"
	"github.com/basket-ranking/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	baseLog, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer baseLog.Sync()
	log := logger.WithService(baseLog, "basket-api")

	log.Info("Starting Basket Ranking API")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("provider", cfg.Provider.Kind),
		zap.String("mode", string(cfg.Provider.Mode)),
		zap.String("units", string(cfg.Provider.Units)),
	)

	// 3. Connect to PostgreSQL
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	// 5. Schema
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(ctx); err != nil {
		cancel()
		log.Fatal("Failed to migrate schema", zap.Error(err))
	}
	cancel()

	// 6. Initialize repositories
	originRepo := postgres.NewOriginRepository(db)
	destinationRepo := postgres.NewDestinationRepository(db)
	runRepo := postgres.NewRunRepository(db)
	locator := postgres.NewBlockGroupRepository(db)
	cacheRepo := cache.NewCacheRepository(redisClient)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)

	log.Info("Repositories initialized")

	// 7. Distance provider
	provider, err := infrastructure.NewDistanceProvider(cfg, cacheRepo, log)
	if err != nil {
		log.Fatal("Failed to initialize distance provider", zap.Error(err))
	}

	// 8. Initialize use cases
	builder := usecase.NewMatrixBuilder(provider, cfg.Worker.Concurrency, log)
	basketUC := usecase.NewBasketUseCase(
		builder,
		originRepo,
		destinationRepo,
		runRepo,
		locator,
		cfg.Provider.Mode,
		cfg.Provider.Units,
		cfg.Basket.DefaultQuota,
		log,
	)
	queueUC := usecase.NewBuildQueueUseCase(streamRepo, log)

	log.Info("Use cases initialized")

	// 9. Initialize HTTP handlers
	basketHandler := handler.NewBasketHandler(basketUC, queueUC, log)
	healthHandler := handler.NewHealthHandler(map[string]handler.HealthChecker{
		"postgres": db,
		"redis":    redisClient,
	}, log)

	// 10. Initialize HTTP server
	server := httpDelivery.NewServer(cfg, log, basketHandler, healthHandler)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 11. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	if err := db.Close(); err != nil {
		log.Error("Failed to close PostgreSQL", zap.Error(err))
	}

	if err := redisClient.Close(); err != nil {
		log.Error("Failed to close Redis", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
