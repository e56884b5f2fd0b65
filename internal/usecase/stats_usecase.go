package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/parking-occupancy/internal/domain"
	"github.com/parking-occupancy/internal/domain/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const statsFlightKey = "stats"

// StatsUseCase serves the occupancy overview. The aggregate scans every
// table, so concurrent cache misses share one query.
type StatsUseCase struct {
	statsRepo repository.StatsRepository
	cacheRepo repository.CacheRepository
	ttl       time.Duration
	flight    singleflight.Group
	logger    *zap.Logger
}

func NewStatsUseCase(
	statsRepo repository.StatsRepository,
	cacheRepo repository.CacheRepository,
	ttl time.Duration,
	logger *zap.Logger,
) *StatsUseCase {
	return &StatsUseCase{
		statsRepo: statsRepo,
		cacheRepo: cacheRepo,
		ttl:       ttl,
		logger:    logger,
	}
}

// GetStatistics answers from the cache and falls back to the database on a
// miss or a cache error.
func (uc *StatsUseCase) GetStatistics(ctx context.Context) (*domain.Statistics, error) {
	cached, err := uc.cacheRepo.GetStats(ctx)
	switch {
	case err != nil:
		uc.logger.Warn("Stats cache unavailable, querying database", zap.Error(err))
	case cached != nil:
		return cached, nil
	}

	return uc.load(ctx)
}

// RefreshStatistics skips the cache lookup and overwrites the cached copy.
func (uc *StatsUseCase) RefreshStatistics(ctx context.Context) (*domain.Statistics, error) {
	uc.logger.Info("Refreshing statistics")
	return uc.load(ctx)
}

func (uc *StatsUseCase) load(ctx context.Context) (*domain.Statistics, error) {
	v, err, shared := uc.flight.Do(statsFlightKey, func() (interface{}, error) {
		started := time.Now()
		stats, err := uc.statsRepo.GetStatistics(ctx)
		if err != nil {
			return nil, err
		}
		uc.logger.Debug("Statistics aggregated", zap.Duration("took", time.Since(started)))

		if err := uc.cacheRepo.SetStats(ctx, stats, uc.ttl); err != nil {
			uc.logger.Warn("Failed to cache stats", zap.Error(err))
		}
		return stats, nil
	})
	if err != nil {
		return nil, fmt.Errorf("get statistics: %w", err)
	}
	if shared {
		uc.logger.Debug("Statistics query shared with a concurrent caller")
	}
	return v.(*domain.Statistics), nil
}
