package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/parking-occupancy/internal/domain"
	"github.com/parking-occupancy/internal/domain/repository"
	"go.uber.org/zap"
)

type spotRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewSpotRepository creates a spot repository.
func NewSpotRepository(db *DB, logger *zap.Logger) repository.SpotRepository {
	return &spotRepository{db: db, logger: logger}
}

// sectorSpotRow flattens a spots row joined with its sector_spots row.
type sectorSpotRow struct {
	SectorID uuid.UUID `db:"sector_id"`
	domain.Spot
	domain.BoundingBox
}

func (row sectorSpotRow) toDomain() domain.SectorSpot {
	return domain.SectorSpot{
		SectorID: row.SectorID,
		Spot:     row.Spot,
		Geometry: row.BoundingBox,
	}
}

func (r *spotRepository) ListBySector(ctx context.Context, sectorID uuid.UUID) ([]domain.SectorSpot, error) {
	query := `
		SELECT
			ss.sector_id,
			s.id, s.active, s.is_full, s.last_park, s.updated_at,
			ss.box_left, ss.box_top, ss.box_right, ss.box_bottom
		FROM sector_spots ss
		JOIN spots s ON s.id = ss.spot_id
		WHERE ss.sector_id = $1
		ORDER BY ss.ordinal, s.id
	`

	var rows []sectorSpotRow
	if err := r.db.SelectContext(ctx, &rows, query, sectorID); err != nil {
		return nil, fmt.Errorf("list sector spots: %w", err)
	}

	spots := make([]domain.SectorSpot, len(rows))
	for i, row := range rows {
		spots[i] = row.toDomain()
	}
	return spots, nil
}

func (r *spotRepository) ReplaceSectorSpots(ctx context.Context, sectorID uuid.UUID, geometries []domain.BoundingBox) ([]domain.SectorSpot, error) {
	now := time.Now().UTC()
	created := make([]domain.SectorSpot, 0, len(geometries))

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		// sector_spots rows go with their spots through ON DELETE CASCADE.
		res, err := tx.ExecContext(ctx, `
			DELETE FROM spots
			WHERE id IN (SELECT spot_id FROM sector_spots WHERE sector_id = $1)
		`, sectorID)
		if err != nil {
			return fmt.Errorf("delete sector spots: %w", err)
		}
		if removed, err := res.RowsAffected(); err == nil {
			r.logger.Debug("removed previous sector spots",
				zap.String("sector_id", sectorID.String()),
				zap.Int64("count", removed),
			)
		}

		for i, geometry := range geometries {
			spot := domain.Spot{ID: uuid.New(), Active: true, UpdatedAt: now}

			if _, err := tx.ExecContext(ctx, `
				INSERT INTO spots (id, active, is_full, last_park, updated_at)
				VALUES ($1, $2, $3, $4, $5)
			`, spot.ID, spot.Active, spot.Full, spot.LastPark, spot.UpdatedAt); err != nil {
				return fmt.Errorf("insert spot: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				INSERT INTO sector_spots (spot_id, sector_id, box_left, box_top, box_right, box_bottom, ordinal)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, spot.ID, sectorID, geometry.Left, geometry.Top, geometry.Right, geometry.Bottom, i); err != nil {
				if isForeignKeyViolation(err) {
					return domain.ErrSectorNotFound
				}
				return fmt.Errorf("insert sector spot: %w", err)
			}

			created = append(created, domain.SectorSpot{SectorID: sectorID, Spot: spot, Geometry: geometry})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *spotRepository) ApplyReconciliation(ctx context.Context, result *domain.Reconciliation) error {
	if result == nil || !result.HasChanges() {
		return nil
	}

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, spot := range result.Updated {
			if _, err := tx.ExecContext(ctx, `
				UPDATE spots
				SET is_full = $2, last_park = $3, updated_at = $4
				WHERE id = $1
			`, spot.ID, spot.Full, spot.LastPark, result.At); err != nil {
				return fmt.Errorf("update spot %s: %w", spot.ID, err)
			}
		}

		for _, event := range result.Events {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO parking_events (id, spot_id, sector_id, parking_start, parking_end)
				VALUES ($1, $2, $3, $4, $5)
			`, event.ID, event.SpotID, event.SectorID, event.ParkingStart, event.ParkingEnd); err != nil {
				return fmt.Errorf("insert parking event: %w", err)
			}
		}
		return nil
	})
}
