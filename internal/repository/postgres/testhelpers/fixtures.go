package testhelpers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/parking-occupancy/internal/domain"
)

// SeedLot inserts a lot with a unique name.
func SeedLot(ctx context.Context, db *sqlx.DB) (*domain.Lot, error) {
	lot := &domain.Lot{ID: uuid.New(), Name: "lot-" + uuid.NewString()[:8]}
	err := db.QueryRowxContext(ctx,
		`INSERT INTO parking_lots (id, name) VALUES ($1, $2) RETURNING created_at`,
		lot.ID, lot.Name,
	).Scan(&lot.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("seed lot: %w", err)
	}
	return lot, nil
}

// SeedSector inserts a sector under lotID.
func SeedSector(ctx context.Context, db *sqlx.DB, lotID uuid.UUID, name string) (*domain.Sector, error) {
	sector := &domain.Sector{ID: uuid.New(), LotID: lotID, Name: name}
	err := db.QueryRowxContext(ctx,
		`INSERT INTO sectors (id, lot_id, name) VALUES ($1, $2, $3) RETURNING created_at`,
		sector.ID, sector.LotID, sector.Name,
	).Scan(&sector.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("seed sector: %w", err)
	}
	return sector, nil
}

// SeedImage inserts an image record for a sector.
func SeedImage(ctx context.Context, db *sqlx.DB, sectorID uuid.UUID, path string, capturedAt time.Time) (*domain.Image, error) {
	image := &domain.Image{ID: uuid.New(), SectorID: sectorID, Path: path, CapturedAt: capturedAt}
	_, err := db.ExecContext(ctx,
		`INSERT INTO images (id, sector_id, path, captured_at) VALUES ($1, $2, $3, $4)`,
		image.ID, image.SectorID, image.Path, image.CapturedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("seed image: %w", err)
	}
	return image, nil
}

// CountRows returns the number of rows in table.
func CountRows(ctx context.Context, db *sqlx.DB, table string) (int, error) {
	var n int
	if err := db.GetContext(ctx, &n, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
