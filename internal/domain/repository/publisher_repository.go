package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/parking-occupancy/internal/domain"
)

// EventPublisher fans committed occupancy changes out to consumers.
type EventPublisher interface {
	PublishOccupancyChanges(ctx context.Context, changes []domain.OccupancyChangedEvent) error
}

// SectorLocker serializes passes over the same sector.
type SectorLocker interface {
	// Lock blocks until the sector is held or ctx is done. The returned
	// function releases the lock.
	Lock(ctx context.Context, sectorID uuid.UUID) (func(), error)
}
