package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/basket-ranking/internal/config"
	"github.com/basket-ranking/internal/infrastructure"
	"github.com/basket-ranking/internal/pkg/logger"
	"github.com/basket-ranking/internal/repository/cache"
	"github.com/basket-ranking/internal/repository/postgres"
	redisRepo "github.com/basket-ranking/internal/repository/redis"
	"github.com/basket-ranking/internal/usecase"
	"github.com/basket-ranking/internal/worker"
	"github.com/basket-ranking/internal/worker/basket"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	baseLog, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer baseLog.Sync()
	log := logger.WithService(baseLog, "basket-worker")

	log.Info("Starting Basket Build Worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("max_retries", cfg.Worker.MaxRetries),
		zap.Int("concurrency", cfg.Worker.Concurrency),
		zap.Duration("run_timeout", cfg.Worker.RunTimeout),
		zap.String("provider", cfg.Provider.Kind))

	// 3. Connect to PostgreSQL
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = db.Migrate(migrateCtx)
	migrateCancel()
	if err != nil {
		log.Fatal("Failed to migrate schema", zap.Error(err))
	}

	// 5. Initialize repositories
	originRepo := postgres.NewOriginRepository(db)
	destinationRepo := postgres.NewDestinationRepository(db)
	runRepo := postgres.NewRunRepository(db)
	locator := postgres.NewBlockGroupRepository(db)
	cacheRepo := cache.NewCacheRepository(redisClient)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)

	provider, err := infrastructure.NewDistanceProvider(cfg, cacheRepo, log)
	if err != nil {
		log.Fatal("Failed to initialize distance provider", zap.Error(err))
	}

	// 6. Initialize use cases
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

	// 7. Initialize workers
	buildWorker := basket.NewBuildWorker(
		streamRepo,
		basketUC,
		cfg.Worker.ConsumerGroup,
		cfg.Worker.MaxRetries,
		cfg.Worker.RunTimeout,
		log,
	)

	// 8. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(0, log)
	workerManager.Register(buildWorker)

	// 9. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	cancel()

	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker shutdown complete")
}
