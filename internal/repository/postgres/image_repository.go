package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/parking-occupancy/internal/domain"
	"github.com/parking-occupancy/internal/domain/repository"
)

type imageRepository struct {
	db *DB
}

// NewImageRepository creates a sector image repository.
func NewImageRepository(db *DB) repository.ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, image *domain.Image) error {
	if image.ID == uuid.Nil {
		image.ID = uuid.New()
	}
	if image.CapturedAt.IsZero() {
		image.CapturedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO images (id, sector_id, path, captured_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, image.ID, image.SectorID, image.Path, image.CapturedAt)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return domain.ErrDuplicate
	case isForeignKeyViolation(err):
		return domain.ErrSectorNotFound
	default:
		return fmt.Errorf("insert image: %w", err)
	}
}

func (r *imageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Image, error) {
	query := `SELECT id, sector_id, path, captured_at FROM images WHERE id = $1`

	var image domain.Image
	err := r.db.GetContext(ctx, &image, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get image: %w", err)
	}
	return &image, nil
}

func (r *imageRepository) GetLatestBySector(ctx context.Context, sectorID uuid.UUID) (*domain.Image, error) {
	query := `
		SELECT id, sector_id, path, captured_at
		FROM images
		WHERE sector_id = $1
		ORDER BY captured_at DESC, id DESC
		LIMIT 1
	`

	var image domain.Image
	err := r.db.GetContext(ctx, &image, query, sectorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNoImage
	}
	if err != nil {
		return nil, fmt.Errorf("get latest image: %w", err)
	}
	return &image, nil
}
