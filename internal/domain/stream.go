package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stream names shared with the camera gateway and downstream consumers.
const (
	StreamSectorImage   = "stream:sector:image"
	StreamSpotOccupancy = "stream:spot:occupancy"
)

// ImagePurpose tells the worker which pass to run for a captured image.
type ImagePurpose string

const (
	PurposeReconcile ImagePurpose = "reconcile"
	PurposeCalibrate ImagePurpose = "calibrate"
)

// SectorImageEvent announces a new sector image to process.
type SectorImageEvent struct {
	EventID   uuid.UUID    `json:"event_id"`
	SectorID  uuid.UUID    `json:"sector_id"`
	ImageID   *uuid.UUID   `json:"image_id,omitempty"`
	ImagePath string       `json:"image_path,omitempty"`
	Purpose   ImagePurpose `json:"purpose"`
}

// EffectivePurpose defaults an empty purpose to reconciliation.
func (e *SectorImageEvent) EffectivePurpose() ImagePurpose {
	if e.Purpose == "" {
		return PurposeReconcile
	}
	return e.Purpose
}

// HasImageSource reports whether the event names an image, either by record
// or by path. Without one the sector's latest image is used.
func (e *SectorImageEvent) HasImageSource() bool {
	return e.ImageID != nil || e.ImagePath != ""
}

// OccupancyChangedEvent is published once per spot transition, after the
// reconciliation pass has been committed.
type OccupancyChangedEvent struct {
	EventID      uuid.UUID      `json:"event_id"`
	SectorID     uuid.UUID      `json:"sector_id"`
	SpotID       uuid.UUID      `json:"spot_id"`
	Transition   TransitionKind `json:"transition"`
	Full         bool           `json:"full"`
	At           time.Time      `json:"at"`
	ParkingEvent *ParkingEvent  `json:"parking_event,omitempty"`
}

// StreamMessage is a raw Redis Stream entry.
type StreamMessage struct {
	ID   string
	Data string
}
