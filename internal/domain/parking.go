package domain

import (
	"time"

	"github.com/google/uuid"
	"gopkg.in/guregu/null.v4"
)

// Lot groups the sectors of one parking facility.
type Lot struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Sector is a camera-observed region containing parking spots.
type Sector struct {
	ID        uuid.UUID `json:"id" db:"id"`
	LotID     uuid.UUID `json:"lot_id" db:"lot_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Spot holds the mutable occupancy state of a single parking spot.
// LastPark is set only while the spot is full.
type Spot struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Active    bool      `json:"active" db:"active"`
	Full      bool      `json:"full" db:"is_full"`
	LastPark  null.Time `json:"last_park" db:"last_park"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SectorSpot binds a spot to its sector and to the geometry it occupies in
// the sector camera frame.
type SectorSpot struct {
	SectorID uuid.UUID   `json:"sector_id"`
	Spot     Spot        `json:"spot"`
	Geometry BoundingBox `json:"geometry"`
}

// ParkingEvent records one completed stay in a spot. ParkingStart is null only
// when the spot was full without a recorded park time.
type ParkingEvent struct {
	ID           uuid.UUID `json:"id" db:"id"`
	SpotID       uuid.UUID `json:"spot_id" db:"spot_id"`
	SectorID     uuid.UUID `json:"sector_id" db:"sector_id"`
	ParkingStart null.Time `json:"parking_start" db:"parking_start"`
	ParkingEnd   time.Time `json:"parking_end" db:"parking_end"`
}

// Duration returns the length of the stay, or 0 when the start is unknown.
func (e ParkingEvent) Duration() time.Duration {
	if !e.ParkingStart.Valid {
		return 0
	}
	return e.ParkingEnd.Sub(e.ParkingStart.Time)
}

// Image is a captured photo of a sector. Path is relative to the configured
// image base path unless absolute.
type Image struct {
	ID         uuid.UUID `json:"id" db:"id"`
	SectorID   uuid.UUID `json:"sector_id" db:"sector_id"`
	Path       string    `json:"path" db:"path"`
	CapturedAt time.Time `json:"captured_at" db:"captured_at"`
}
