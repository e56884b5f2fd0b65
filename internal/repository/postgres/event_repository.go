package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/parking-occupancy/internal/domain"
	"github.com/parking-occupancy/internal/domain/repository"
)

type eventRepository struct {
	db *DB
}

// NewEventRepository creates a parking event repository.
func NewEventRepository(db *DB) repository.EventRepository {
	return &eventRepository{db: db}
}

// Events of spots removed by recalibration have a NULL spot_id, scanned as uuid.Nil.
const eventColumns = `id, spot_id, sector_id, parking_start, parking_end`

func (r *eventRepository) ListBySector(ctx context.Context, sectorID uuid.UUID, limit int) ([]*domain.ParkingEvent, error) {
	query := `SELECT ` + eventColumns + `
		FROM parking_events
		WHERE sector_id = $1
		ORDER BY parking_end DESC, id
		LIMIT $2
	`

	events := []*domain.ParkingEvent{}
	if err := r.db.SelectContext(ctx, &events, query, sectorID, normalizeLimit(limit)); err != nil {
		return nil, fmt.Errorf("list sector events: %w", err)
	}
	return events, nil
}

func (r *eventRepository) ListBySpot(ctx context.Context, spotID uuid.UUID, limit int) ([]*domain.ParkingEvent, error) {
	query := `SELECT ` + eventColumns + `
		FROM parking_events
		WHERE spot_id = $1
		ORDER BY parking_end DESC, id
		LIMIT $2
	`

	events := []*domain.ParkingEvent{}
	if err := r.db.SelectContext(ctx, &events, query, spotID, normalizeLimit(limit)); err != nil {
		return nil, fmt.Errorf("list spot events: %w", err)
	}
	return events, nil
}
