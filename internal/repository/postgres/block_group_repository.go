package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/basket-ranking/internal/domain"
	"github.com/basket-ranking/internal/domain/repository"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type blockGroupRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewBlockGroupRepository - GeoLocator поверх PostGIS-таблицы block_groups
func NewBlockGroupRepository(db *DB) repository.GeoLocator {
	return &blockGroupRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

// Locate возвращает block group, содержащую точку
func (r *blockGroupRepository) Locate(ctx context.Context, point domain.GeoPoint) (*domain.GeoAttributes, error) {
	query := `
		WITH point AS (
			SELECT ST_SetSRID(ST_MakePoint($1, $2), 4326) AS geom
		)
		SELECT
			bg.geoid                          AS block_group,
			COALESCE(bg.nbhd_long, '')        AS neighborhood_long,
			COALESCE(bg.nbhd_short, '')       AS neighborhood_short,
			COALESCE(bg.council_district, '') AS council_district,
			COALESCE(bg.urban_village, '')    AS urban_village,
			COALESCE(bg.zipcode, '')          AS zipcode
		FROM block_groups bg, point
		WHERE bg.geom && point.geom
		  AND ST_Contains(bg.geom, point.geom)
		ORDER BY bg.geoid
		LIMIT 1
	`

	var attrs domain.GeoAttributes
	err := r.db.GetContext(ctx, &attrs, query, point.Lon, point.Lat)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("block group for %s: %w", point, domain.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to locate block group",
			zap.Float64("lat", point.Lat),
			zap.Float64("lon", point.Lon),
			zap.Error(err),
		)
		return nil, fmt.Errorf("locate block group: %w", err)
	}

	return &attrs, nil
}
