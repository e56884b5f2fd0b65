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

// ReconciliationUseCase updates spot occupancy of a sector from one image.
type ReconciliationUseCase struct {
	sectorRepo repository.SectorRepository
	spotRepo   repository.SpotRepository
	imageRepo  repository.ImageRepository
	cacheRepo  repository.CacheRepository
	locker     repository.SectorLocker
	publisher  repository.EventPublisher
	detector   *imageDetector
	classes    []string
	now        func() time.Time
	logger     *zap.Logger
}

func NewReconciliationUseCase(
	sectorRepo repository.SectorRepository,
	spotRepo repository.SpotRepository,
	imageRepo repository.ImageRepository,
	cacheRepo repository.CacheRepository,
	locker repository.SectorLocker,
	publisher repository.EventPublisher,
	detector repository.Detector,
	annotator repository.ImageAnnotator,
	classes []string,
	cfg DetectionConfig,
	logger *zap.Logger,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		sectorRepo: sectorRepo,
		spotRepo:   spotRepo,
		imageRepo:  imageRepo,
		cacheRepo:  cacheRepo,
		locker:     locker,
		publisher:  publisher,
		detector:   newImageDetector(detector, annotator, cfg, logger),
		classes:    classes,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}
}

// Reconcile marks every spot of the sector full or vacant from the
// detections on the image and records a parking event for each spot that
// was vacated. An empty imagePath selects the latest image of the sector.
//
// A sector without spots is a no-op: the detector is not called. State is
// only written after detection succeeds, in one transaction, and occupancy
// changes are published after that transaction commits.
func (uc *ReconciliationUseCase) Reconcile(ctx context.Context, sectorID uuid.UUID, imagePath string) (*dto.ReconciliationResult, error) {
	if _, err := uc.sectorRepo.GetByID(ctx, sectorID); err != nil {
		return nil, err
	}

	unlock, err := uc.locker.Lock(ctx, sectorID)
	if err != nil {
		return nil, fmt.Errorf("lock sector: %w", err)
	}
	defer unlock()

	spots, err := uc.spotRepo.ListBySector(ctx, sectorID)
	if err != nil {
		return nil, fmt.Errorf("list sector spots: %w", err)
	}
	if len(spots) == 0 {
		uc.logger.Debug("Sector has no spots, skipping reconciliation",
			zap.String("sector_id", sectorID.String()),
		)
		return &dto.ReconciliationResult{
			SectorID:  sectorID,
			ImagePath: imagePath,
			At:        uc.now(),
			Skipped:   true,
			Events:    []domain.ParkingEvent{},
			Changes:   []domain.OccupancyChangedEvent{},
		}, nil
	}

	if imagePath == "" {
		latest, err := uc.imageRepo.GetLatestBySector(ctx, sectorID)
		if err != nil {
			return nil, err
		}
		imagePath = latest.Path
	}

	detections, err := uc.detector.detect(ctx, imagePath, uc.classes)
	if err != nil {
		uc.logger.Error("Reconciliation detection failed",
			zap.String("sector_id", sectorID.String()),
			zap.String("image_path", imagePath),
			zap.Error(err),
		)
		return nil, err
	}

	result := domain.ReconcileSpots(sectorID, spots, detections, uc.now())

	if err := uc.spotRepo.ApplyReconciliation(ctx, result); err != nil {
		return nil, fmt.Errorf("apply reconciliation: %w", err)
	}

	for _, event := range result.Events {
		uc.logger.Info("Spot vacated",
			zap.String("sector_id", sectorID.String()),
			zap.String("spot_id", event.SpotID.String()),
			zap.Duration("stay", event.Duration()),
		)
	}

	if result.HasChanges() {
		if err := uc.cacheRepo.InvalidateSector(ctx, sectorID); err != nil {
			uc.logger.Warn("Failed to invalidate sector cache",
				zap.String("sector_id", sectorID.String()),
				zap.Error(err),
			)
		}
		uc.publish(ctx, result)
	}

	uc.logger.Info("Sector reconciled",
		zap.String("sector_id", sectorID.String()),
		zap.Int("checked", result.Checked),
		zap.Int("detections", result.Detections),
		zap.Int("updated", len(result.Updated)),
		zap.Int("events", len(result.Events)),
	)

	return toReconciliationResult(result, imagePath, uc.detector.annotate(ctx, imagePath, detections)), nil
}

// ReconcileLatest reconciles the sector from its most recent image.
func (uc *ReconciliationUseCase) ReconcileLatest(ctx context.Context, sectorID uuid.UUID) (*dto.ReconciliationResult, error) {
	return uc.Reconcile(ctx, sectorID, "")
}

// ReconcileImage reconciles the sector an image belongs to from that image.
func (uc *ReconciliationUseCase) ReconcileImage(ctx context.Context, imageID uuid.UUID) (*dto.ReconciliationResult, error) {
	image, err := uc.imageRepo.GetByID(ctx, imageID)
	if err != nil {
		return nil, err
	}
	return uc.Reconcile(ctx, image.SectorID, image.Path)
}

// publish never fails the pass: the state is already committed.
func (uc *ReconciliationUseCase) publish(ctx context.Context, result *domain.Reconciliation) {
	if uc.publisher == nil || len(result.Changes) == 0 {
		return
	}
	if err := uc.publisher.PublishOccupancyChanges(ctx, result.Changes); err != nil {
		uc.logger.Error("Failed to publish occupancy changes",
			zap.String("sector_id", result.SectorID.String()),
			zap.Int("changes", len(result.Changes)),
			zap.Error(err),
		)
	}
}

func toReconciliationResult(r *domain.Reconciliation, imagePath, processed string) *dto.ReconciliationResult {
	events := r.Events
	if events == nil {
		events = []domain.ParkingEvent{}
	}
	changes := r.Changes
	if changes == nil {
		changes = []domain.OccupancyChangedEvent{}
	}
	return &dto.ReconciliationResult{
		SectorID:       r.SectorID,
		ImagePath:      imagePath,
		At:             r.At,
		Checked:        r.Checked,
		Detections:     r.Detections,
		Updated:        len(r.Updated),
		Events:         events,
		Changes:        changes,
		ProcessedImage: processed,
	}
}
