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

type lotRepository struct {
	db *DB
}

// NewLotRepository creates a parking lot repository.
func NewLotRepository(db *DB) repository.LotRepository {
	return &lotRepository{db: db}
}

func (r *lotRepository) Create(ctx context.Context, lot *domain.Lot) error {
	if lot.ID == uuid.Nil {
		lot.ID = uuid.New()
	}

	query := `
		INSERT INTO parking_lots (id, name)
		VALUES ($1, $2)
		RETURNING created_at
	`

	err := r.db.QueryRowxContext(ctx, query, lot.ID, lot.Name).Scan(&lot.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

func (r *lotRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lot, error) {
	query := `SELECT id, name, created_at FROM parking_lots WHERE id = $1`

	var lot domain.Lot
	err := r.db.GetContext(ctx, &lot, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrLotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return &lot, nil
}

func (r *lotRepository) List(ctx context.Context) ([]*domain.Lot, error) {
	query := `SELECT id, name, created_at FROM parking_lots ORDER BY name`

	lots := []*domain.Lot{}
	if err := r.db.SelectContext(ctx, &lots, query); err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	return lots, nil
}
