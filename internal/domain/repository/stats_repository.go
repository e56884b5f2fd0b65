package repository

import (
	"context"

	"github.com/parking-occupancy/internal/domain"
)

// StatsRepository aggregates occupancy statistics.
type StatsRepository interface {
	GetStatistics(ctx context.Context) (*domain.Statistics, error)
}
