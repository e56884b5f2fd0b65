package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/parking-occupancy/internal/domain"
	"github.com/parking-occupancy/internal/domain/repository"
)

type sectorRepository struct {
	db *DB
}

// NewSectorRepository creates a sector repository.
func NewSectorRepository(db *DB) repository.SectorRepository {
	return &sectorRepository{db: db}
}

func (r *sectorRepository) Create(ctx context.Context, sector *domain.Sector) error {
	if sector.ID == uuid.Nil {
		sector.ID = uuid.New()
	}

	query := `
		INSERT INTO sectors (id, lot_id, name)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := r.db.QueryRowxContext(ctx, query, sector.ID, sector.LotID, sector.Name).Scan(&sector.CreatedAt)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return domain.ErrDuplicate
	case isForeignKeyViolation(err):
		return domain.ErrLotNotFound
	default:
		return fmt.Errorf("insert sector: %w", err)
	}
}

func (r *sectorRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Sector, error) {
	query := `SELECT id, lot_id, name, created_at FROM sectors WHERE id = $1`

	var sector domain.Sector
	err := r.db.GetContext(ctx, &sector, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSectorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get sector: %w", err)
	}
	return &sector, nil
}

func (r *sectorRepository) ListByLot(ctx context.Context, lotID uuid.UUID) ([]*domain.Sector, error) {
	query := `
		SELECT id, lot_id, name, created_at
		FROM sectors
		WHERE lot_id = $1
		ORDER BY name
	`

	sectors := []*domain.Sector{}
	if err := r.db.SelectContext(ctx, &sectors, query, lotID); err != nil {
		return nil, fmt.Errorf("list sectors: %w", err)
	}
	return sectors, nil
}
