package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/basket-ranking/internal/domain"
	"github.com/basket-ranking/internal/domain/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// insertBatchSize keeps a multi-row insert well under the 65535 parameter limit.
const insertBatchSize = 1000

type runRow struct {
	ID                 uuid.UUID `db:"run_id"`
	Provider           string    `db:"provider"`
	Mode               string    `db:"mode"`
	Units              string    `db:"units"`
	OKCount            int       `db:"ok_count"`
	NotFoundCount      int       `db:"not_found_count"`
	ProviderErrorCount int       `db:"provider_error_count"`
	CreatedAt          time.Time `db:"created_at"`
}

type recordRow struct {
	RunID uuid.UUID `db:"run_id"`
	domain.DistanceRecord
}

type runRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewRunRepository создает новый экземпляр RunRepository
func NewRunRepository(db *DB) repository.RunRepository {
	return &runRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

// Save пишет прогон и его записи в одной транзакции
func (r *runRepository) Save(ctx context.Context, run *domain.Run, records []domain.DistanceRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO basket_runs (run_id, provider, mode, units, ok_count, not_found_count, provider_error_count, created_at)
		VALUES (:run_id, :provider, :mode, :units, :ok_count, :not_found_count, :provider_error_count, :created_at)`,
		runRow{
			ID:                 run.ID,
			Provider:           run.Provider,
			Mode:               string(run.Mode),
			Units:              string(run.Units),
			OKCount:            run.Counts.OK,
			NotFoundCount:      run.Counts.NotFound,
			ProviderErrorCount: run.Counts.ProviderError,
			CreatedAt:          run.CreatedAt,
		})
	if err != nil {
		r.logger.Error("Failed to insert run", zap.String("run_id", run.ID.String()), zap.Error(err))
		return fmt.Errorf("insert run: %w", err)
	}

	for start := 0; start < len(records); start += insertBatchSize {
		end := min(start+insertBatchSize, len(records))
		batch := make([]recordRow, 0, end-start)
		for _, rec := range records[start:end] {
			batch = append(batch, recordRow{RunID: run.ID, DistanceRecord: rec})
		}

		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO distance_records (run_id, origin_id, destination_id, category, distance, duration, status)
			VALUES (:run_id, :origin_id, :destination_id, :category, :distance, :duration, :status)`,
			batch)
		if err != nil {
			r.logger.Error("Failed to insert distance records",
				zap.String("run_id", run.ID.String()),
				zap.Int("offset", start),
				zap.Error(err))
			return fmt.Errorf("insert distance records: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// Get возвращает метаданные прогона
func (r *runRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, `
		SELECT run_id, provider, mode, units, ok_count, not_found_count, provider_error_count, created_at
		FROM basket_runs
		WHERE run_id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get run", zap.String("run_id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("get run: %w", err)
	}

	return &domain.Run{
		ID:       row.ID,
		Provider: row.Provider,
		Mode:     domain.TravelMode(row.Mode),
		Units:    domain.UnitSystem(row.Units),
		Counts: domain.StatusCounts{
			OK:            row.OKCount,
			NotFound:      row.NotFoundCount,
			ProviderError: row.ProviderErrorCount,
		},
		CreatedAt: row.CreatedAt,
	}, nil
}

// Records возвращает таблицу расстояний прогона
func (r *runRepository) Records(ctx context.Context, id uuid.UUID) ([]domain.DistanceRecord, error) {
	var records []domain.DistanceRecord
	err := r.db.SelectContext(ctx, &records, `
		SELECT origin_id, destination_id, category, distance, duration, status
		FROM distance_records
		WHERE run_id = $1
		ORDER BY origin_id, destination_id`, id)
	if err != nil {
		r.logger.Error("Failed to load distance records", zap.String("run_id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("load distance records: %w", err)
	}
	return records, nil
}
