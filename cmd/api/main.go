package main

// @title Parking Occupancy API
// @version 1.0.0
// @description Tracks parking spot occupancy from camera images of parking sectors.
// @description
// @description Main features:
// @description - Calibration: detect spots on an empty-lot image and store their geometry
// @description - Reconciliation: mark spots full or vacant from a new image and record completed stays
// @description - Spot snapshots, parking event history and occupancy statistics

// @contact.name API Support

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

	_ "github.com/parking-occupancy/docs"
	"github.com/parking-occupancy/internal/config"
	httpDelivery "github.com/parking-occupancy/internal/delivery/http"
	"github.com/parking-occupancy/internal/delivery/http/handler"
	"github.com/parking-occupancy/internal/domain/repository"
	"github.com/parking-occupancy/internal/infrastructure/detector"
	"github.com/parking-occupancy/internal/infrastructure/imagestore"
	"github.com/parking-occupancy/internal/infrastructure/kafka"
	"github.com/parking-occupancy/internal/pkg/logger"
	"github.com/parking-occupancy/internal/repository/cache"
	"github.com/parking-occupancy/internal/repository/postgres"
	redisRepo "github.com/parking-occupancy/internal/repository/redis"
	"github.com/parking-occupancy/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New("parking-api", cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Parking Occupancy API")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("detector", cfg.Detector.Provider),
		zap.String("lock_mode", cfg.Worker.LockMode),
	)

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

	// 5. Health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		log.Fatal("PostgreSQL health check failed", zap.Error(err))
	}
	if err := redisClient.Health(ctx); err != nil {
		log.Fatal("Redis health check failed", zap.Error(err))
	}

	log.Info("All connections healthy")

	// 6. Initialize repositories
	lotRepo := postgres.NewLotRepository(db)
	sectorRepo := postgres.NewSectorRepository(db)
	spotRepo := postgres.NewSpotRepository(db, log)
	eventRepo := postgres.NewEventRepository(db)
	imageRepo := postgres.NewImageRepository(db)
	statsRepo := postgres.NewStatsRepository(db, log)
	cacheRepo := cache.NewCacheRepository(redisClient)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)

	// 7. Detection infrastructure
	det, err := detector.New(ctx, &cfg.Detector, log)
	if err != nil {
		log.Fatal("Failed to initialize detector", zap.Error(err))
	}
	annotator := imagestore.NewAnnotator(log)

	// 8. Sector lock and occupancy publishers. The lock must be the one the
	// worker processes take.
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
		sinks = append(sinks, kafkaPublisher)
	}
	publisher := usecase.NewFanOutPublisher(sinks...)

	log.Info("Repositories initialized")

	// 9. Initialize use cases
	detectionCfg := usecase.DetectionConfig{
		MinConfidence: cfg.Detector.MinConfidence,
		PassTimeout:   cfg.Detector.PassTimeout,
		BasePath:      cfg.Images.BasePath,
		Annotate:      cfg.Images.Annotate,
	}

	parkingUC := usecase.NewParkingUseCase(
		lotRepo,
		sectorRepo,
		spotRepo,
		eventRepo,
		imageRepo,
		cacheRepo,
		cfg.Cache.SpotsCacheTTL,
		log,
	)

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
		publisher,
		det,
		annotator,
		cfg.Reconciliation.Classes,
		detectionCfg,
		log,
	)

	statsUC := usecase.NewStatsUseCase(statsRepo, cacheRepo, cfg.Cache.StatsCacheTTL, log)

	log.Info("Use cases initialized")

	// 10. Initialize HTTP handlers and server
	server := httpDelivery.NewServer(cfg, log, httpDelivery.Handlers{
		Health: handler.NewHealthHandler(map[string]handler.HealthChecker{
			"postgres": db,
			"redis":    redisClient,
		}),
		Lot:       handler.NewLotHandler(parkingUC, log),
		Sector:    handler.NewSectorHandler(parkingUC, log),
		Occupancy: handler.NewOccupancyHandler(parkingUC, calibrationUC, reconciliationUC, log),
		Stats:     handler.NewStatsHandler(statsUC, log),
	})

	// 11. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 12. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Detector.PassTimeout+10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	if kafkaPublisher != nil {
		kafkaPublisher.Close()
	}

	log.Info("Server stopped successfully")
}
