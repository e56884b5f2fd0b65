package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/parking-occupancy/internal/domain"
	"github.com/parking-occupancy/internal/domain/repository"
	"github.com/parking-occupancy/internal/repository/postgres/testhelpers"
)

// StatsRepositoryTestSuite checks the occupancy aggregates.
type StatsRepositoryTestSuite struct {
	suite.Suite
	testDB *testhelpers.TestDB
	repo   repository.StatsRepository
	spots  repository.SpotRepository
	ctx    context.Context
}

func (s *StatsRepositoryTestSuite) SetupSuite() {
	s.testDB = testhelpers.SetupTestDB(s.T())

	err := testhelpers.ApplyMigrations(context.Background(), s.testDB.DB, "../../../migrations")
	s.Require().NoError(err, "Failed to apply migrations")

	s.repo = testhelpers.NewStatsRepositoryForTest(s.testDB.DB, s.testDB.Logger)
	s.spots = testhelpers.NewSpotRepositoryForTest(s.testDB.DB, s.testDB.Logger)
}

func (s *StatsRepositoryTestSuite) TearDownSuite() {
	if s.testDB != nil {
		s.testDB.Close()
	}
}

func (s *StatsRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.Require().NoError(s.testDB.Cleanup(s.ctx))
}

func (s *StatsRepositoryTestSuite) TestGetStatistics_Empty() {
	stats, err := s.repo.GetStatistics(s.ctx)
	s.Require().NoError(err)

	s.Zero(stats.Lots)
	s.Zero(stats.Spots.Total)
	s.Zero(stats.Events.AverageStaySeconds)
	s.Empty(stats.BySector)
	s.False(stats.LastUpdated.IsZero())
}

func (s *StatsRepositoryTestSuite) TestGetStatistics_CountsOccupancy() {
	lot, err := testhelpers.SeedLot(s.ctx, s.testDB.DB)
	s.Require().NoError(err)
	sector, err := testhelpers.SeedSector(s.ctx, s.testDB.DB, lot.ID, "A")
	s.Require().NoError(err)

	created, err := s.spots.ReplaceSectorSpots(s.ctx, sector.ID, []domain.BoundingBox{
		domain.NewBoundingBox(0, 0, 10, 10),
		domain.NewBoundingBox(20, 0, 30, 10),
	})
	s.Require().NoError(err)

	now := time.Now().UTC()
	parked := domain.ReconcileSpots(sector.ID, created, []domain.Detection{
		{Box: domain.NewBoundingBox(0, 0, 10, 10), Confidence: 90},
	}, now.Add(-10*time.Minute))
	s.Require().NoError(s.spots.ApplyReconciliation(s.ctx, parked))

	stats, err := s.repo.GetStatistics(s.ctx)
	s.Require().NoError(err)

	s.Equal(1, stats.Lots)
	s.Equal(1, stats.Sectors)
	s.Equal(domain.SpotStats{Total: 2, Active: 2, Full: 1}, stats.Spots)
	s.Equal(0.5, stats.Spots.OccupancyRate())
	s.Require().Len(stats.BySector, 1)
	s.Equal(sector.ID, stats.BySector[0].SectorID)
	s.Equal(2, stats.BySector[0].Spots)
	s.Equal(1, stats.BySector[0].Full)

	listed, err := s.spots.ListBySector(s.ctx, sector.ID)
	s.Require().NoError(err)
	s.Require().NoError(s.spots.ApplyReconciliation(s.ctx, domain.ReconcileSpots(sector.ID, listed, nil, now)))

	stats, err = s.repo.GetStatistics(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, stats.Events.Total)
	s.Equal(1, stats.Events.LastDay)
	s.InDelta(600, stats.Events.AverageStaySeconds, 1)
}

func TestStatsRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(StatsRepositoryTestSuite))
}
