package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/parking-occupancy/internal/domain"
)

// CreateLotRequest - create a parking lot
type CreateLotRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// CreateSectorRequest - create a sector inside a lot
type CreateSectorRequest struct {
	LotID string `json:"lot_id" validate:"required,uuid"`
	Name  string `json:"name" validate:"required,max=255"`
}

// RegisterImageRequest registers a captured sector image. Process optionally
// runs a pass over it right away.
type RegisterImageRequest struct {
	Path       string     `json:"path" validate:"required,max=1024"`
	CapturedAt *time.Time `json:"captured_at,omitempty"`
	Process    string     `json:"process,omitempty" validate:"omitempty,oneof=reconcile calibrate"`
}

// PassRequest selects the image of a calibration or reconciliation pass.
// An empty path means the latest image of the sector.
type PassRequest struct {
	ImagePath string `json:"image_path,omitempty" validate:"omitempty,max=1024"`
}

// CalibrationResult - outcome of a calibration pass
type CalibrationResult struct {
	SectorID          uuid.UUID           `json:"sector_id"`
	ImagePath         string              `json:"image_path"`
	Detections        int                 `json:"detections"`
	DuplicatesRemoved int                 `json:"duplicates_removed"`
	Spots             []domain.SectorSpot `json:"spots"`
	ProcessedImage    string              `json:"processed_image,omitempty"`
}

// ReconciliationResult - outcome of a reconciliation pass
type ReconciliationResult struct {
	SectorID       uuid.UUID                      `json:"sector_id"`
	ImagePath      string                         `json:"image_path,omitempty"`
	At             time.Time                      `json:"at"`
	Skipped        bool                           `json:"skipped"`
	Checked        int                            `json:"checked"`
	Detections     int                            `json:"detections"`
	Updated        int                            `json:"updated"`
	Events         []domain.ParkingEvent          `json:"events"`
	Changes        []domain.OccupancyChangedEvent `json:"changes"`
	ProcessedImage string                         `json:"processed_image,omitempty"`
}

// SectorSpotsResponse - occupancy snapshot of a sector
type SectorSpotsResponse struct {
	SectorID uuid.UUID           `json:"sector_id"`
	Spots    []domain.SectorSpot `json:"spots"`
	Total    int                 `json:"total"`
	Full     int                 `json:"full"`
	Cached   bool                `json:"cached"`
}

// NewSectorSpotsResponse counts full spots of a snapshot.
func NewSectorSpotsResponse(sectorID uuid.UUID, spots []domain.SectorSpot, cached bool) *SectorSpotsResponse {
	full := 0
	for _, s := range spots {
		if s.Spot.Full {
			full++
		}
	}
	if spots == nil {
		spots = []domain.SectorSpot{}
	}
	return &SectorSpotsResponse{
		SectorID: sectorID,
		Spots:    spots,
		Total:    len(spots),
		Full:     full,
		Cached:   cached,
	}
}

// EventsResponse - list of parking events
type EventsResponse struct {
	Events []*domain.ParkingEvent `json:"events"`
	Total  int                    `json:"total"`
}
