package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/parking-occupancy/internal/domain"
)

// CacheRepository defines key/value cache operations.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)

	// GetSectorSpots returns the cached occupancy snapshot, or nil on a miss.
	GetSectorSpots(ctx context.Context, sectorID uuid.UUID) ([]domain.SectorSpot, error)

	// SetSectorSpots caches the occupancy snapshot of a sector.
	SetSectorSpots(ctx context.Context, sectorID uuid.UUID, spots []domain.SectorSpot, ttl time.Duration) error

	// InvalidateSector drops the cached snapshot of a sector.
	InvalidateSector(ctx context.Context, sectorID uuid.UUID) error

	// GetStats returns cached statistics, or nil on a miss.
	GetStats(ctx context.Context) (*domain.Statistics, error)
	SetStats(ctx context.Context, stats *domain.Statistics, ttl time.Duration) error
}
