package repository

import (
	"context"

	"github.com/basket-ranking/internal/domain"
	"github.com/google/uuid"
)

// RunRepository хранит таблицы расстояний, чтобы ранжирование и корзину
// можно было пересобрать без повторных запросов к провайдеру.
type RunRepository interface {
	// Save сохраняет метаданные и все записи прогона в одной транзакции
	Save(ctx context.Context, run *domain.Run, records []domain.DistanceRecord) error

	// Get возвращает метаданные прогона или domain.ErrNotFound
	Get(ctx context.Context, id uuid.UUID) (*domain.Run, error)

	// Records возвращает записи прогона
	Records(ctx context.Context, id uuid.UUID) ([]domain.DistanceRecord, error)
}
