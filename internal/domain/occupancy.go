package domain

import (
	"time"

	"github.com/google/uuid"
	"gopkg.in/guregu/null.v4"
)

// MinOverlap is the IoU at or above which a detection occupies a spot.
const MinOverlap = 0.4

// TransitionKind names an occupancy state change of a spot.
type TransitionKind string

const (
	// TransitionParked is vacant -> occupied. It only updates the spot.
	TransitionParked TransitionKind = "parked"
	// TransitionLeft is occupied -> vacant. It always produces a ParkingEvent.
	TransitionLeft TransitionKind = "left"
)

// IsOccupied reports whether any box overlaps geometry by at least MinOverlap.
// The first matching box ends the scan.
func IsOccupied(geometry BoundingBox, boxes []BoundingBox) bool {
	for _, box := range boxes {
		if OverlapRatio(geometry, box) >= MinOverlap {
			return true
		}
	}
	return false
}

// Reconciliation is the outcome of matching one detection pass against the
// spots of a sector. Nothing in it is persisted yet.
type Reconciliation struct {
	SectorID   uuid.UUID
	At         time.Time
	Checked    int
	Updated    []Spot
	Events     []ParkingEvent
	Changes    []OccupancyChangedEvent
	Detections int
}

// HasChanges reports whether the pass changed any spot.
func (r *Reconciliation) HasChanges() bool {
	return len(r.Updated) > 0
}

// ReconcileSpots applies the occupancy rules to every spot of a sector
// independently, using now as the single timestamp of the pass.
func ReconcileSpots(sectorID uuid.UUID, spots []SectorSpot, detections []Detection, now time.Time) *Reconciliation {
	boxes := Boxes(detections)
	result := &Reconciliation{
		SectorID:   sectorID,
		At:         now,
		Checked:    len(spots),
		Detections: len(detections),
	}

	for _, ss := range spots {
		spot := ss.Spot
		occupied := IsOccupied(ss.Geometry, boxes)

		switch {
		case occupied && !spot.Full:
			spot.Full = true
			spot.LastPark = null.TimeFrom(now)
			result.Updated = append(result.Updated, spot)
			result.Changes = append(result.Changes, newOccupancyChange(sectorID, spot, TransitionParked, now, nil))

		case !occupied && spot.Full:
			event := ParkingEvent{
				ID:           uuid.New(),
				SpotID:       spot.ID,
				SectorID:     sectorID,
				ParkingStart: spot.LastPark,
				ParkingEnd:   now,
			}
			spot.Full = false
			spot.LastPark = null.Time{}
			result.Updated = append(result.Updated, spot)
			result.Events = append(result.Events, event)
			result.Changes = append(result.Changes, newOccupancyChange(sectorID, spot, TransitionLeft, now, &event))
		}
	}

	return result
}

func newOccupancyChange(sectorID uuid.UUID, spot Spot, kind TransitionKind, at time.Time, event *ParkingEvent) OccupancyChangedEvent {
	return OccupancyChangedEvent{
		EventID:      uuid.New(),
		SectorID:     sectorID,
		SpotID:       spot.ID,
		Transition:   kind,
		Full:         spot.Full,
		At:           at,
		ParkingEvent: event,
	}
}
