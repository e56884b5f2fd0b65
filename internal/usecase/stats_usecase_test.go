package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parking-occupancy/internal/domain"
	"github.com/parking-occupancy/internal/usecase"
)

func TestStatsUseCase_GetStatistics(t *testing.T) {
	ctx := context.Background()
	ttl := 5 * time.Minute
	stats := &domain.Statistics{Lots: 1, Sectors: 2, Spots: domain.SpotStats{Total: 10, Active: 10, Full: 4}}

	t.Run("cache hit", func(t *testing.T) {
		statsRepo := &MockStatsRepository{}
		cache := &MockCacheRepository{}
		cache.On("GetStats", mock.Anything).Return(stats, nil)

		result, err := usecase.NewStatsUseCase(statsRepo, cache, ttl, zap.NewNop()).GetStatistics(ctx)

		require.NoError(t, err)
		assert.Equal(t, stats, result)
		statsRepo.AssertNotCalled(t, "GetStatistics", mock.Anything)
	})

	t.Run("cache miss stores with configured ttl", func(t *testing.T) {
		statsRepo := &MockStatsRepository{}
		cache := &MockCacheRepository{}
		cache.On("GetStats", mock.Anything).Return(nil, nil)
		statsRepo.On("GetStatistics", mock.Anything).Return(stats, nil)
		cache.On("SetStats", mock.Anything, stats, ttl).Return(nil)

		result, err := usecase.NewStatsUseCase(statsRepo, cache, ttl, zap.NewNop()).GetStatistics(ctx)

		require.NoError(t, err)
		assert.Equal(t, 0.4, result.Spots.OccupancyRate())
		cache.AssertExpectations(t)
	})

	t.Run("database error", func(t *testing.T) {
		statsRepo := &MockStatsRepository{}
		cache := &MockCacheRepository{}
		cache.On("GetStats", mock.Anything).Return(nil, errors.New("redis down"))
		statsRepo.On("GetStatistics", mock.Anything).Return(nil, errors.New("connection refused"))

		_, err := usecase.NewStatsUseCase(statsRepo, cache, ttl, zap.NewNop()).GetStatistics(ctx)

		assert.Error(t, err)
		cache.AssertNotCalled(t, "SetStats", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestStatsUseCase_RefreshStatistics(t *testing.T) {
	statsRepo := &MockStatsRepository{}
	cache := &MockCacheRepository{}
	stats := &domain.Statistics{Lots: 3}
	statsRepo.On("GetStatistics", mock.Anything).Return(stats, nil)
	cache.On("SetStats", mock.Anything, stats, time.Minute).Return(errors.New("redis down"))

	result, err := usecase.NewStatsUseCase(statsRepo, cache, time.Minute, zap.NewNop()).RefreshStatistics(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, result.Lots)
	cache.AssertNotCalled(t, "GetStats", mock.Anything)
}

func TestStatsUseCase_ConcurrentMissesShareOneQuery(t *testing.T) {
	statsRepo := &MockStatsRepository{}
	cache := &MockCacheRepository{}
	stats := &domain.Statistics{Lots: 2}
	release := make(chan time.Time)

	cache.On("GetStats", mock.Anything).Return(nil, nil)
	statsRepo.On("GetStatistics", mock.Anything).WaitUntil(release).Return(stats, nil)
	cache.On("SetStats", mock.Anything, stats, time.Minute).Return(nil)

	uc := usecase.NewStatsUseCase(statsRepo, cache, time.Minute, zap.NewNop())

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*domain.Statistics, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = uc.GetStatistics(context.Background())
		}(i)
	}

	// Give every caller time to join the in-flight query.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, stats, results[i])
	}
	statsRepo.AssertNumberOfCalls(t, "GetStatistics", 1)
	cache.AssertNumberOfCalls(t, "SetStats", 1)
}
