package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/parking-occupancy/internal/domain"
	"github.com/parking-occupancy/internal/usecase/dto"
)

// ParkingService is the catalog and read side used by the handlers.
type ParkingService interface {
	CreateLot(ctx context.Context, req dto.CreateLotRequest) (*domain.Lot, error)
	ListLots(ctx context.Context) ([]*domain.Lot, error)
	CreateSector(ctx context.Context, req dto.CreateSectorRequest) (*domain.Sector, error)
	GetSector(ctx context.Context, id uuid.UUID) (*domain.Sector, error)
	ListSectors(ctx context.Context, lotID uuid.UUID) ([]*domain.Sector, error)
	RegisterImage(ctx context.Context, sectorID uuid.UUID, req dto.RegisterImageRequest) (*domain.Image, error)
	GetSectorSpots(ctx context.Context, sectorID uuid.UUID) (*dto.SectorSpotsResponse, error)
	ListSectorEvents(ctx context.Context, sectorID uuid.UUID, limit int) (*dto.EventsResponse, error)
	ListSpotEvents(ctx context.Context, spotID uuid.UUID, limit int) (*dto.EventsResponse, error)
}

// CalibrationService runs calibration passes.
type CalibrationService interface {
	Calibrate(ctx context.Context, sectorID uuid.UUID, imagePath string) (*dto.CalibrationResult, error)
	CalibrateImage(ctx context.Context, imageID uuid.UUID) (*dto.CalibrationResult, error)
}

// ReconciliationService runs reconciliation passes.
type ReconciliationService interface {
	Reconcile(ctx context.Context, sectorID uuid.UUID, imagePath string) (*dto.ReconciliationResult, error)
	ReconcileImage(ctx context.Context, imageID uuid.UUID) (*dto.ReconciliationResult, error)
}

// StatsService serves occupancy statistics.
type StatsService interface {
	GetStatistics(ctx context.Context) (*domain.Statistics, error)
	RefreshStatistics(ctx context.Context) (*domain.Statistics, error)
}

// HealthChecker is a dependency pinged by the health endpoint.
type HealthChecker interface {
	Health(ctx context.Context) error
}
