package testhelpers

import (
	"github.com/jmoiron/sqlx"
	"github.com/parking-occupancy/internal/domain/repository"
	"github.com/parking-occupancy/internal/repository/postgres"
	"go.uber.org/zap"
)

// NewDBForTest creates a postgres.DB with test database and logger
func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

func NewLotRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.LotRepository {
	return postgres.NewLotRepository(NewDBForTest(db, logger))
}

func NewSectorRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.SectorRepository {
	return postgres.NewSectorRepository(NewDBForTest(db, logger))
}

func NewSpotRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.SpotRepository {
	return postgres.NewSpotRepository(NewDBForTest(db, logger), logger)
}

func NewEventRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.EventRepository {
	return postgres.NewEventRepository(NewDBForTest(db, logger))
}

func NewImageRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.ImageRepository {
	return postgres.NewImageRepository(NewDBForTest(db, logger))
}

// NewStatsRepositoryForTest creates a stats repository with test database and logger
func NewStatsRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.StatsRepository {
	return postgres.NewStatsRepository(NewDBForTest(db, logger), logger)
}
