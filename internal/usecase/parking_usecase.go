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

// ParkingUseCase handles lots, sectors, images and read-side queries over
// spots and parking events.
type ParkingUseCase struct {
	lotRepo    repository.LotRepository
	sectorRepo repository.SectorRepository
	spotRepo   repository.SpotRepository
	eventRepo  repository.EventRepository
	imageRepo  repository.ImageRepository
	cacheRepo  repository.CacheRepository
	spotsTTL   time.Duration
	logger     *zap.Logger
}

func NewParkingUseCase(
	lotRepo repository.LotRepository,
	sectorRepo repository.SectorRepository,
	spotRepo repository.SpotRepository,
	eventRepo repository.EventRepository,
	imageRepo repository.ImageRepository,
	cacheRepo repository.CacheRepository,
	spotsTTL time.Duration,
	logger *zap.Logger,
) *ParkingUseCase {
	return &ParkingUseCase{
		lotRepo:    lotRepo,
		sectorRepo: sectorRepo,
		spotRepo:   spotRepo,
		eventRepo:  eventRepo,
		imageRepo:  imageRepo,
		cacheRepo:  cacheRepo,
		spotsTTL:   spotsTTL,
		logger:     logger,
	}
}

func (uc *ParkingUseCase) CreateLot(ctx context.Context, req dto.CreateLotRequest) (*domain.Lot, error) {
	lot := &domain.Lot{ID: uuid.New(), Name: req.Name}
	if err := uc.lotRepo.Create(ctx, lot); err != nil {
		return nil, err
	}
	uc.logger.Info("Lot created", zap.String("lot_id", lot.ID.String()), zap.String("name", lot.Name))
	return lot, nil
}

func (uc *ParkingUseCase) ListLots(ctx context.Context) ([]*domain.Lot, error) {
	return uc.lotRepo.List(ctx)
}

func (uc *ParkingUseCase) CreateSector(ctx context.Context, req dto.CreateSectorRequest) (*domain.Sector, error) {
	lotID, err := uuid.Parse(req.LotID)
	if err != nil {
		return nil, fmt.Errorf("parse lot id: %w", err)
	}

	sector := &domain.Sector{ID: uuid.New(), LotID: lotID, Name: req.Name}
	if err := uc.sectorRepo.Create(ctx, sector); err != nil {
		return nil, err
	}
	uc.logger.Info("Sector created",
		zap.String("sector_id", sector.ID.String()),
		zap.String("lot_id", lotID.String()),
		zap.String("name", sector.Name),
	)
	return sector, nil
}

func (uc *ParkingUseCase) GetSector(ctx context.Context, id uuid.UUID) (*domain.Sector, error) {
	return uc.sectorRepo.GetByID(ctx, id)
}

// ListSectors returns domain.ErrLotNotFound for an unknown lot rather than an
// empty list.
func (uc *ParkingUseCase) ListSectors(ctx context.Context, lotID uuid.UUID) ([]*domain.Sector, error) {
	if _, err := uc.lotRepo.GetByID(ctx, lotID); err != nil {
		return nil, err
	}
	return uc.sectorRepo.ListByLot(ctx, lotID)
}

// RegisterImage records a captured image. A missing capture time defaults to now.
func (uc *ParkingUseCase) RegisterImage(ctx context.Context, sectorID uuid.UUID, req dto.RegisterImageRequest) (*domain.Image, error) {
	image := &domain.Image{ID: uuid.New(), SectorID: sectorID, Path: req.Path}
	if req.CapturedAt != nil {
		image.CapturedAt = req.CapturedAt.UTC()
	}
	if err := uc.imageRepo.Create(ctx, image); err != nil {
		return nil, err
	}
	uc.logger.Debug("Image registered",
		zap.String("image_id", image.ID.String()),
		zap.String("sector_id", sectorID.String()),
		zap.String("path", image.Path),
	)
	return image, nil
}

// GetSectorSpots returns the occupancy snapshot of a sector, from the cache
// when warm.
func (uc *ParkingUseCase) GetSectorSpots(ctx context.Context, sectorID uuid.UUID) (*dto.SectorSpotsResponse, error) {
	// 1. Cache
	cached, err := uc.cacheRepo.GetSectorSpots(ctx, sectorID)
	if err != nil {
		uc.logger.Warn("Failed to get sector spots from cache",
			zap.String("sector_id", sectorID.String()),
			zap.Error(err),
		)
	} else if cached != nil {
		return dto.NewSectorSpotsResponse(sectorID, cached, true), nil
	}

	// 2. Database
	if _, err := uc.sectorRepo.GetByID(ctx, sectorID); err != nil {
		return nil, err
	}
	spots, err := uc.spotRepo.ListBySector(ctx, sectorID)
	if err != nil {
		return nil, fmt.Errorf("list sector spots: %w", err)
	}
	if spots == nil {
		spots = []domain.SectorSpot{}
	}

	// 3. Store the snapshot, a cache failure is not fatal
	if err := uc.cacheRepo.SetSectorSpots(ctx, sectorID, spots, uc.spotsTTL); err != nil {
		uc.logger.Warn("Failed to cache sector spots",
			zap.String("sector_id", sectorID.String()),
			zap.Error(err),
		)
	}

	return dto.NewSectorSpotsResponse(sectorID, spots, false), nil
}

func (uc *ParkingUseCase) ListSectorEvents(ctx context.Context, sectorID uuid.UUID, limit int) (*dto.EventsResponse, error) {
	if _, err := uc.sectorRepo.GetByID(ctx, sectorID); err != nil {
		return nil, err
	}
	events, err := uc.eventRepo.ListBySector(ctx, sectorID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sector events: %w", err)
	}
	return newEventsResponse(events), nil
}

func (uc *ParkingUseCase) ListSpotEvents(ctx context.Context, spotID uuid.UUID, limit int) (*dto.EventsResponse, error) {
	events, err := uc.eventRepo.ListBySpot(ctx, spotID, limit)
	if err != nil {
		return nil, fmt.Errorf("list spot events: %w", err)
	}
	return newEventsResponse(events), nil
}

func newEventsResponse(events []*domain.ParkingEvent) *dto.EventsResponse {
	if events == nil {
		events = []*domain.ParkingEvent{}
	}
	return &dto.EventsResponse{Events: events, Total: len(events)}
}
