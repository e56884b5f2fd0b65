package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/parking-occupancy/internal/domain"
	"github.com/parking-occupancy/internal/domain/repository"
	"github.com/parking-occupancy/internal/usecase/dto"
	"go.uber.org/zap"
)

// CalibrationUseCase rebuilds the spot layout of a sector from one image.
type CalibrationUseCase struct {
	sectorRepo repository.SectorRepository
	spotRepo   repository.SpotRepository
	imageRepo  repository.ImageRepository
	cacheRepo  repository.CacheRepository
	locker     repository.SectorLocker
	detector   *imageDetector
	classes    []string
	logger     *zap.Logger
}

func NewCalibrationUseCase(
	sectorRepo repository.SectorRepository,
	spotRepo repository.SpotRepository,
	imageRepo repository.ImageRepository,
	cacheRepo repository.CacheRepository,
	locker repository.SectorLocker,
	detector repository.Detector,
	annotator repository.ImageAnnotator,
	classes []string,
	cfg DetectionConfig,
	logger *zap.Logger,
) *CalibrationUseCase {
	return &CalibrationUseCase{
		sectorRepo: sectorRepo,
		spotRepo:   spotRepo,
		imageRepo:  imageRepo,
		cacheRepo:  cacheRepo,
		locker:     locker,
		detector:   newImageDetector(detector, annotator, cfg, logger),
		classes:    classes,
		logger:     logger,
	}
}

// Calibrate detects objects on the image, drops duplicate boxes and replaces
// every spot of the sector with one vacant spot per surviving box. An empty
// imagePath selects the latest image of the sector. On detection failure the
// previous layout is left untouched.
func (uc *CalibrationUseCase) Calibrate(ctx context.Context, sectorID uuid.UUID, imagePath string) (*dto.CalibrationResult, error) {
	if _, err := uc.sectorRepo.GetByID(ctx, sectorID); err != nil {
		return nil, err
	}

	if imagePath == "" {
		latest, err := uc.imageRepo.GetLatestBySector(ctx, sectorID)
		if err != nil {
			return nil, err
		}
		imagePath = latest.Path
	}

	unlock, err := uc.locker.Lock(ctx, sectorID)
	if err != nil {
		return nil, fmt.Errorf("lock sector: %w", err)
	}
	defer unlock()

	start := time.Now()
	detections, err := uc.detector.detect(ctx, imagePath, uc.classes)
	if err != nil {
		uc.logger.Error("Calibration detection failed",
			zap.String("sector_id", sectorID.String()),
			zap.String("image_path", imagePath),
			zap.Error(err),
		)
		return nil, err
	}

	boxes := domain.EliminateDuplicates(domain.Boxes(detections))

	spots, err := uc.spotRepo.ReplaceSectorSpots(ctx, sectorID, boxes)
	if err != nil {
		return nil, fmt.Errorf("replace sector spots: %w", err)
	}

	if err := uc.cacheRepo.InvalidateSector(ctx, sectorID); err != nil {
		uc.logger.Warn("Failed to invalidate sector cache",
			zap.String("sector_id", sectorID.String()),
			zap.Error(err),
		)
	}

	uc.logger.Info("Sector calibrated",
		zap.String("sector_id", sectorID.String()),
		zap.Int("detections", len(detections)),
		zap.Int("spots", len(spots)),
		zap.Duration("took", time.Since(start)),
	)

	return &dto.CalibrationResult{
		SectorID:          sectorID,
		ImagePath:         imagePath,
		Detections:        len(detections),
		DuplicatesRemoved: len(detections) - len(boxes),
		Spots:             spots,
		ProcessedImage:    uc.detector.annotate(ctx, imagePath, detections),
	}, nil
}

// CalibrateImage calibrates the sector an image belongs to from that image.
func (uc *CalibrationUseCase) CalibrateImage(ctx context.Context, imageID uuid.UUID) (*dto.CalibrationResult, error) {
	image, err := uc.imageRepo.GetByID(ctx, imageID)
	if err != nil {
		return nil, err
	}
	return uc.Calibrate(ctx, image.SectorID, image.Path)
}
