package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parking-occupancy/internal/config"
	"github.com/parking-occupancy/internal/domain/repository"
	"github.com/parking-occupancy/internal/infrastructure/detector"
	"github.com/parking-occupancy/internal/infrastructure/imagestore"
	"github.com/parking-occupancy/internal/infrastructure/kafka"
	"github.com/parking-occupancy/internal/pkg/logger"
	"github.com/parking-occupancy/internal/repository/cache"
	"github.com/parking-occupancy/internal/repository/postgres"
	redisRepo "github.com/parking-occupancy/internal/repository/redis"
	"github.com/parking-occupancy/internal/usecase"
	"github.com/parking-occupancy/internal/worker"
	"github.com/parking-occupancy/internal/worker/occupancy"
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
	log, err := logger.New("parking-worker", cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Sector Image Worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("max_retries", cfg.Worker.MaxRetries),
		zap.Int("concurrency", cfg.Worker.Concurrency),
		zap.String("lock_mode", cfg.Worker.LockMode),
		zap.String("detector", cfg.Detector.Provider))

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

	// 5. Initialize repositories
	sectorRepo := postgres.NewSectorRepository(db)
	spotRepo := postgres.NewSpotRepository(db, log)
	imageRepo := postgres.NewImageRepository(db)
	cacheRepo := cache.NewCacheRepository(redisClient)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)

	initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Second)
	det, err := detector.New(initCtx, &cfg.Detector, log)
	initCancel()
	if err != nil {
		log.Fatal("Failed to initialize detector", zap.Error(err))
	}
	annotator := imagestore.NewAnnotator(log)

	// The API and every worker process share sectors, so the lock lives in
	// Redis unless the deployment runs a single process.
	var locker repository.SectorLocker = usecase.NewKeyedMutex()
	if cfg.Worker.LockMode == config.LockModeRedis {
		locker = redisRepo.NewSectorLocker(redisClient.Client(), cfg.Worker.LockTTL, log)
	}

	sinks := []repository.EventPublisher{redisRepo.NewOccupancyPublisher(streamRepo, log)}
	var kafkaPublisher *kafka.Publisher
	if cfg.Kafka.Enabled {
		kafkaPublisher, err = kafka.NewPublisher(&cfg.Kafka, log)
		if err != nil {
			log.Fatal("Failed to initialize Kafka publisher", zap.Error(err))
		}
		defer kafkaPublisher.Close()
		sinks = append(sinks, kafkaPublisher)
	}

	// 6. Initialize use cases
	detectionCfg := usecase.DetectionConfig{
		MinConfidence: cfg.Detector.MinConfidence,
		PassTimeout:   cfg.Detector.PassTimeout,
		BasePath:      cfg.Images.BasePath,
		Annotate:      cfg.Images.Annotate,
	}

	calibrationUC := usecase.NewCalibrationUseCase(
		sectorRepo,
		spotRepo,
		imageRepo,
		cacheRepo,
		locker,
		det,
		annotator,
		cfg.Calibration.Classes,
		detectionCfg,
		log,
	)

	reconciliationUC := usecase.NewReconciliationUseCase(
		sectorRepo,
		spotRepo,
		imageRepo,
		cacheRepo,
		locker,
		usecase.NewFanOutPublisher(sinks...),
		det,
		annotator,
		cfg.Reconciliation.Classes,
		detectionCfg,
		log,
	)

	// 7. Initialize workers
	imageWorker := occupancy.NewSectorImageWorker(
		streamRepo,
		calibrationUC,
		reconciliationUC,
		occupancy.Options{
			ConsumerGroup: cfg.Worker.ConsumerGroup,
			MaxRetries:    cfg.Worker.MaxRetries,
			RetryBackoff:  cfg.Worker.RetryBackoff,
			Concurrency:   cfg.Worker.Concurrency,
			ClaimMinIdle:  cfg.Worker.ClaimMinIdle,
		},
		log,
	)

	// 8. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(cfg.Detector.PassTimeout+30*time.Second, log)
	workerManager.Register(imageWorker)

	// 9. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info("Received shutdown signal")
	case <-workerManager.Done():
		log.Error("All workers exited, shutting down")
	}

	cancel()

	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker shutdown complete")
}
