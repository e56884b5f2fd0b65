package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/parking-occupancy/internal/domain"
	"github.com/parking-occupancy/internal/domain/repository"
	"go.uber.org/zap"
)

type statsRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewStatsRepository creates an occupancy statistics repository.
func NewStatsRepository(db *DB, logger *zap.Logger) repository.StatsRepository {
	return &statsRepository{
		db:     db,
		logger: logger,
	}
}

// GetStatistics aggregates counters over lots, sectors, spots and events.
func (r *statsRepository) GetStatistics(ctx context.Context) (*domain.Statistics, error) {
	stats := &domain.Statistics{
		LastUpdated: time.Now().UTC(),
	}

	if err := r.db.GetContext(ctx, &stats.Lots, `SELECT COUNT(*) FROM parking_lots`); err != nil {
		r.logger.Error("failed to count lots", zap.Error(err))
		return nil, fmt.Errorf("count lots: %w", err)
	}

	if err := r.db.GetContext(ctx, &stats.Sectors, `SELECT COUNT(*) FROM sectors`); err != nil {
		r.logger.Error("failed to count sectors", zap.Error(err))
		return nil, fmt.Errorf("count sectors: %w", err)
	}

	spotStats, err := r.getSpotStats(ctx)
	if err != nil {
		r.logger.Error("failed to get spot stats", zap.Error(err))
		return nil, fmt.Errorf("get spot stats: %w", err)
	}
	stats.Spots = *spotStats

	eventStats, err := r.getEventStats(ctx, stats.LastUpdated.Add(-24*time.Hour))
	if err != nil {
		r.logger.Error("failed to get event stats", zap.Error(err))
		return nil, fmt.Errorf("get event stats: %w", err)
	}
	stats.Events = *eventStats

	bySector, err := r.getSectorLoad(ctx)
	if err != nil {
		r.logger.Error("failed to get sector load", zap.Error(err))
		return nil, fmt.Errorf("get sector load: %w", err)
	}
	stats.BySector = bySector

	return stats, nil
}

func (r *statsRepository) getSpotStats(ctx context.Context) (*domain.SpotStats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE active) AS active,
			COUNT(*) FILTER (WHERE active AND is_full) AS full_count
		FROM spots
	`

	var row struct {
		Total  int `db:"total"`
		Active int `db:"active"`
		Full   int `db:"full_count"`
	}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return nil, err
	}
	return &domain.SpotStats{Total: row.Total, Active: row.Active, Full: row.Full}, nil
}

func (r *statsRepository) getEventStats(ctx context.Context, since time.Time) (*domain.EventStats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE parking_end >= $1) AS last_day,
			COALESCE(AVG(EXTRACT(EPOCH FROM (parking_end - parking_start))), 0) AS average_stay
		FROM parking_events
	`

	var row struct {
		Total       int     `db:"total"`
		LastDay     int     `db:"last_day"`
		AverageStay float64 `db:"average_stay"`
	}
	if err := r.db.GetContext(ctx, &row, query, since); err != nil {
		return nil, err
	}
	return &domain.EventStats{
		Total:              row.Total,
		LastDay:            row.LastDay,
		AverageStaySeconds: row.AverageStay,
	}, nil
}

func (r *statsRepository) getSectorLoad(ctx context.Context) ([]domain.SectorLoad, error) {
	query := `
		SELECT
			sec.id AS sector_id,
			sec.name AS sector_name,
			COUNT(s.id) AS spots,
			COUNT(s.id) FILTER (WHERE s.is_full) AS full_count
		FROM sectors sec
		LEFT JOIN sector_spots ss ON ss.sector_id = sec.id
		LEFT JOIN spots s ON s.id = ss.spot_id AND s.active
		GROUP BY sec.id, sec.name
		ORDER BY sec.name, sec.id
	`

	load := []domain.SectorLoad{}
	if err := r.db.SelectContext(ctx, &load, query); err != nil {
		return nil, err
	}
	return load, nil
}
