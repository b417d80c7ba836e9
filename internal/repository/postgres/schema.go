package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// schema is idempotent; block_groups needs PostGIS.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS origins (
		origin_id TEXT PRIMARY KEY,
		lat       DOUBLE PRECISION NOT NULL,
		lon       DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS destinations (
		place_id TEXT PRIMARY KEY,
		name     TEXT NOT NULL DEFAULT '',
		lat      DOUBLE PRECISION NOT NULL,
		lon      DOUBLE PRECISION NOT NULL,
		category TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_destinations_category ON destinations (category)`,
	`CREATE TABLE IF NOT EXISTS basket_runs (
		run_id               UUID PRIMARY KEY,
		provider             TEXT NOT NULL,
		mode                 TEXT NOT NULL,
		units                TEXT NOT NULL,
		ok_count             INTEGER NOT NULL DEFAULT 0,
		not_found_count      INTEGER NOT NULL DEFAULT 0,
		provider_error_count INTEGER NOT NULL DEFAULT 0,
		created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS distance_records (
		run_id         UUID NOT NULL REFERENCES basket_runs (run_id) ON DELETE CASCADE,
		origin_id      TEXT NOT NULL,
		destination_id TEXT NOT NULL,
		category       TEXT NOT NULL,
		distance       DOUBLE PRECISION,
		duration       DOUBLE PRECISION,
		status         TEXT NOT NULL,
		PRIMARY KEY (run_id, origin_id, destination_id)
	)`,
	`CREATE EXTENSION IF NOT EXISTS postgis`,
	`CREATE TABLE IF NOT EXISTS block_groups (
		geoid            TEXT PRIMARY KEY,
		nbhd_long        TEXT,
		nbhd_short       TEXT,
		council_district TEXT,
		urban_village    TEXT,
		zipcode          TEXT,
		geom             geometry(MultiPolygon, 4326) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_block_groups_geom ON block_groups USING GIST (geom)`,
}

// Migrate создаёт таблицы, если их ещё нет.
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}
	db.logger.Info("Database schema ensured", zap.Int("statements", len(schema)))
	return nil
}
