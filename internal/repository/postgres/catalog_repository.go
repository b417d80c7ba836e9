package postgres

import (
	"context"
	"fmt"

	"github.com/basket-ranking/internal/domain"
	"github.com/basket-ranking/internal/domain/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type originRow struct {
	ID  string  `db:"origin_id"`
	Lat float64 `db:"lat"`
	Lon float64 `db:"lon"`
}

type destinationRow struct {
	ID       string  `db:"place_id"`
	Name     string  `db:"name"`
	Lat      float64 `db:"lat"`
	Lon      float64 `db:"lon"`
	Category string  `db:"category"`
}

type originRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewOriginRepository создает новый экземпляр OriginRepository
func NewOriginRepository(db *DB) repository.OriginRepository {
	return &originRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

// List возвращает block group по кодам; пустой ids - все.
func (r *originRepository) List(ctx context.Context, ids []string) ([]domain.Origin, error) {
	query := `SELECT origin_id, lat, lon FROM origins ORDER BY origin_id`
	args := []interface{}{}
	if len(ids) > 0 {
		query = `SELECT origin_id, lat, lon FROM origins WHERE origin_id = ANY($1) ORDER BY origin_id`
		args = append(args, pq.Array(ids))
	}

	var rows []originRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.Error("Failed to list origins", zap.Int("ids", len(ids)), zap.Error(err))
		return nil, fmt.Errorf("list origins: %w", err)
	}

	out := make([]domain.Origin, len(rows))
	for i, row := range rows {
		out[i] = domain.Origin{
			ID:       row.ID,
			Location: domain.GeoPoint{Lat: row.Lat, Lon: row.Lon},
		}
	}
	return out, nil
}

type destinationRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewDestinationRepository создает новый экземпляр DestinationRepository
func NewDestinationRepository(db *DB) repository.DestinationRepository {
	return &destinationRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

// List возвращает каталог назначений, отфильтрованный по категориям.
func (r *destinationRepository) List(ctx context.Context, categories []domain.Category) ([]domain.Destination, error) {
	query := `SELECT place_id, name, lat, lon, category FROM destinations ORDER BY place_id`
	args := []interface{}{}
	if len(categories) > 0 {
		labels := make([]string, len(categories))
		for i, c := range categories {
			labels[i] = string(c)
		}
		query = `SELECT place_id, name, lat, lon, category FROM destinations WHERE category = ANY($1) ORDER BY place_id`
		args = append(args, pq.Array(labels))
	}

	var rows []destinationRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.Error("Failed to list destinations", zap.Error(err))
		return nil, fmt.Errorf("list destinations: %w", err)
	}

	out := make([]domain.Destination, 0, len(rows))
	for _, row := range rows {
		cat, err := domain.ParseCategory(row.Category)
		if err != nil {
			// строки с чужими категориями в каталоге не участвуют
			r.logger.Warn("Skipping destination with unknown category",
				zap.String("place_id", row.ID),
				zap.String("category", row.Category))
			continue
		}
		out = append(out, domain.Destination{
			ID:       row.ID,
			Name:     row.Name,
			Location: domain.GeoPoint{Lat: row.Lat, Lon: row.Lon},
			Category: cat,
		})
	}
	return out, nil
}

// CountByCategory - размер каталога по категориям.
func (r *destinationRepository) CountByCategory(ctx context.Context) (map[domain.Category]int, error) {
	var rows []struct {
		Category string `db:"category"`
		Count    int    `db:"count"`
	}
	query := `SELECT category, COUNT(*) AS count FROM destinations GROUP BY category`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		r.logger.Error("Failed to count destinations", zap.Error(err))
		return nil, fmt.Errorf("count destinations: %w", err)
	}

	out := make(map[domain.Category]int, len(rows))
	for _, row := range rows {
		out[domain.Category(row.Category)] = row.Count
	}
	return out, nil
}
