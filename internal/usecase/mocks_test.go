package usecase_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/parking-occupancy/internal/domain"
)

// MockLotRepository is a mock of LotRepository
type MockLotRepository struct {
	mock.Mock
}

func (m *MockLotRepository) Create(ctx context.Context, lot *domain.Lot) error {
	args := m.Called(ctx, lot)
	return args.Error(0)
}

func (m *MockLotRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lot), args.Error(1)
}

func (m *MockLotRepository) List(ctx context.Context) ([]*domain.Lot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Lot), args.Error(1)
}

// MockSectorRepository is a mock of SectorRepository
type MockSectorRepository struct {
	mock.Mock
}

func (m *MockSectorRepository) Create(ctx context.Context, sector *domain.Sector) error {
	args := m.Called(ctx, sector)
	return args.Error(0)
}

func (m *MockSectorRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Sector, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sector), args.Error(1)
}

func (m *MockSectorRepository) ListByLot(ctx context.Context, lotID uuid.UUID) ([]*domain.Sector, error) {
	args := m.Called(ctx, lotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Sector), args.Error(1)
}

// MockSpotRepository is a mock of SpotRepository
type MockSpotRepository struct {
	mock.Mock
}

func (m *MockSpotRepository) ListBySector(ctx context.Context, sectorID uuid.UUID) ([]domain.SectorSpot, error) {
	args := m.Called(ctx, sectorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SectorSpot), args.Error(1)
}

func (m *MockSpotRepository) ReplaceSectorSpots(ctx context.Context, sectorID uuid.UUID, geometries []domain.BoundingBox) ([]domain.SectorSpot, error) {
	args := m.Called(ctx, sectorID, geometries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SectorSpot), args.Error(1)
}

func (m *MockSpotRepository) ApplyReconciliation(ctx context.Context, result *domain.Reconciliation) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

// MockEventRepository is a mock of EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) ListBySector(ctx context.Context, sectorID uuid.UUID, limit int) ([]*domain.ParkingEvent, error) {
	args := m.Called(ctx, sectorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ParkingEvent), args.Error(1)
}

func (m *MockEventRepository) ListBySpot(ctx context.Context, spotID uuid.UUID, limit int) ([]*domain.ParkingEvent, error) {
	args := m.Called(ctx, spotID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ParkingEvent), args.Error(1)
}

// MockImageRepository is a mock of ImageRepository
type MockImageRepository struct {
	mock.Mock
}

func (m *MockImageRepository) Create(ctx context.Context, image *domain.Image) error {
	args := m.Called(ctx, image)
	return args.Error(0)
}

func (m *MockImageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Image, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Image), args.Error(1)
}

func (m *MockImageRepository) GetLatestBySector(ctx context.Context, sectorID uuid.UUID) (*domain.Image, error) {
	args := m.Called(ctx, sectorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Image), args.Error(1)
}

// MockCacheRepository is a mock of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) GetSectorSpots(ctx context.Context, sectorID uuid.UUID) ([]domain.SectorSpot, error) {
	args := m.Called(ctx, sectorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SectorSpot), args.Error(1)
}

func (m *MockCacheRepository) SetSectorSpots(ctx context.Context, sectorID uuid.UUID, spots []domain.SectorSpot, ttl time.Duration) error {
	args := m.Called(ctx, sectorID, spots, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) InvalidateSector(ctx context.Context, sectorID uuid.UUID) error {
	args := m.Called(ctx, sectorID)
	return args.Error(0)
}

func (m *MockCacheRepository) GetStats(ctx context.Context) (*domain.Statistics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Statistics), args.Error(1)
}

func (m *MockCacheRepository) SetStats(ctx context.Context, stats *domain.Statistics, ttl time.Duration) error {
	args := m.Called(ctx, stats, ttl)
	return args.Error(0)
}

// MockStatsRepository is a mock of StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) GetStatistics(ctx context.Context) (*domain.Statistics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Statistics), args.Error(1)
}

// MockDetector is a mock of Detector
type MockDetector struct {
	mock.Mock
}

func (m *MockDetector) Detect(ctx context.Context, imagePath string, classes []string, minConfidence float64) ([]domain.Detection, error) {
	args := m.Called(ctx, imagePath, classes, minConfidence)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Detection), args.Error(1)
}

// MockAnnotator is a mock of ImageAnnotator
type MockAnnotator struct {
	mock.Mock
}

func (m *MockAnnotator) Annotate(ctx context.Context, imagePath string, detections []domain.Detection) (string, error) {
	args := m.Called(ctx, imagePath, detections)
	return args.String(0), args.Error(1)
}

// MockEventPublisher is a mock of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishOccupancyChanges(ctx context.Context, changes []domain.OccupancyChangedEvent) error {
	args := m.Called(ctx, changes)
	return args.Error(0)
}

func detection(left, top, right, bottom float64) domain.Detection {
	return domain.Detection{Box: domain.NewBoundingBox(left, top, right, bottom), Confidence: 90, Label: "car"}
}
