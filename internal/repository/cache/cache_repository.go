package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/parking-occupancy/internal/domain"
	"github.com/parking-occupancy/internal/domain/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const statsKey = "stats:current"

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

// SectorSpotsKey is the cache key of a sector occupancy snapshot.
func SectorSpotsKey(sectorID uuid.UUID) string {
	return fmt.Sprintf("sector:%s:spots", sectorID)
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}

	r.logger.Debug("Cache deleted", zap.String("key", key))
	return nil
}

func (r *cacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	val, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		r.logger.Error("Failed to check cache existence", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("cache exists error: %w", err)
	}

	return val > 0, nil
}

func (r *cacheRepository) GetSectorSpots(ctx context.Context, sectorID uuid.UUID) ([]domain.SectorSpot, error) {
	data, err := r.Get(ctx, SectorSpotsKey(sectorID))
	if err != nil || data == nil {
		return nil, err
	}

	var spots []domain.SectorSpot
	if err := json.Unmarshal(data, &spots); err != nil {
		r.logger.Error("Failed to unmarshal sector spots from cache",
			zap.String("sector_id", sectorID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("unmarshal sector spots: %w", err)
	}

	// An empty snapshot is still a hit.
	if spots == nil {
		spots = []domain.SectorSpot{}
	}
	return spots, nil
}

func (r *cacheRepository) SetSectorSpots(ctx context.Context, sectorID uuid.UUID, spots []domain.SectorSpot, ttl time.Duration) error {
	if spots == nil {
		spots = []domain.SectorSpot{}
	}
	data, err := json.Marshal(spots)
	if err != nil {
		return fmt.Errorf("marshal sector spots: %w", err)
	}
	return r.Set(ctx, SectorSpotsKey(sectorID), data, ttl)
}

func (r *cacheRepository) InvalidateSector(ctx context.Context, sectorID uuid.UUID) error {
	if err := r.Delete(ctx, SectorSpotsKey(sectorID)); err != nil {
		return err
	}
	// Stats aggregate every sector, so they go stale too.
	return r.Delete(ctx, statsKey)
}

func (r *cacheRepository) GetStats(ctx context.Context) (*domain.Statistics, error) {
	data, err := r.Get(ctx, statsKey)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil // Cache miss
	}

	var stats domain.Statistics
	if err := json.Unmarshal(data, &stats); err != nil {
		r.logger.Error("Failed to unmarshal stats from cache", zap.Error(err))
		return nil, fmt.Errorf("unmarshal stats: %w", err)
	}

	return &stats, nil
}

func (r *cacheRepository) SetStats(ctx context.Context, stats *domain.Statistics, ttl time.Duration) error {
	data, err := json.Marshal(stats)
	if err != nil {
		r.logger.Error("Failed to marshal stats", zap.Error(err))
		return fmt.Errorf("marshal stats: %w", err)
	}

	return r.Set(ctx, statsKey, data, ttl)
}
