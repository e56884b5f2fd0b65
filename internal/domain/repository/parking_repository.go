package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/parking-occupancy/internal/domain"
)

// LotRepository stores parking lots.
type LotRepository interface {
	Create(ctx context.Context, lot *domain.Lot) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Lot, error)
	List(ctx context.Context) ([]*domain.Lot, error)
}

// SectorRepository stores sectors. GetByID returns domain.ErrSectorNotFound
// for unknown ids.
type SectorRepository interface {
	Create(ctx context.Context, sector *domain.Sector) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Sector, error)
	ListByLot(ctx context.Context, lotID uuid.UUID) ([]*domain.Sector, error)
}

// SpotRepository stores spots together with their sector geometry.
type SpotRepository interface {
	// ListBySector returns every spot of the sector with its geometry.
	ListBySector(ctx context.Context, sectorID uuid.UUID) ([]domain.SectorSpot, error)

	// ReplaceSectorSpots deletes all spots of the sector and creates one
	// vacant, active spot per geometry, in a single transaction.
	ReplaceSectorSpots(ctx context.Context, sectorID uuid.UUID, geometries []domain.BoundingBox) ([]domain.SectorSpot, error)

	// ApplyReconciliation persists updated spot states and parking events of
	// one pass in a single transaction.
	ApplyReconciliation(ctx context.Context, result *domain.Reconciliation) error
}

// EventRepository reads parking events.
type EventRepository interface {
	ListBySector(ctx context.Context, sectorID uuid.UUID, limit int) ([]*domain.ParkingEvent, error)
	ListBySpot(ctx context.Context, spotID uuid.UUID, limit int) ([]*domain.ParkingEvent, error)
}

// ImageRepository stores captured sector images.
type ImageRepository interface {
	Create(ctx context.Context, image *domain.Image) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Image, error)

	// GetLatestBySector returns domain.ErrNoImage when the sector has none.
	GetLatestBySector(ctx context.Context, sectorID uuid.UUID) (*domain.Image, error)
}
