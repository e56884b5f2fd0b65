package domain

import (
	"time"

	"github.com/google/uuid"
)

// Statistics is an occupancy overview across all lots.
type Statistics struct {
	Lots        int          `json:"lots"`
	Sectors     int          `json:"sectors"`
	Spots       SpotStats    `json:"spots"`
	Events      EventStats   `json:"events"`
	BySector    []SectorLoad `json:"by_sector"`
	LastUpdated time.Time    `json:"last_updated"`
}

// SpotStats counts spots by state.
type SpotStats struct {
	Total  int `json:"total"`
	Active int `json:"active"`
	Full   int `json:"full"`
}

// OccupancyRate returns full/active in [0, 1], or 0 with no active spots.
func (s SpotStats) OccupancyRate() float64 {
	if s.Active == 0 {
		return 0
	}
	return float64(s.Full) / float64(s.Active)
}

// EventStats summarizes completed stays.
type EventStats struct {
	Total              int     `json:"total"`
	LastDay            int     `json:"last_day"`
	AverageStaySeconds float64 `json:"average_stay_seconds"`
}

// SectorLoad is the occupancy of one sector.
type SectorLoad struct {
	SectorID   uuid.UUID `json:"sector_id" db:"sector_id"`
	SectorName string    `json:"sector_name" db:"sector_name"`
	Spots      int       `json:"spots" db:"spots"`
	Full       int       `json:"full" db:"full_count"`
}
