package repository

import (
	"context"

	"github.com/basket-ranking/internal/domain"
)

// DistanceProvider измеряет расстояние между двумя точками.
type DistanceProvider interface {
	// Name идентифицирует провайдера в логах, метриках и метаданных прогона
	Name() string

	// Measure возвращает измерение для одной пары
	Measure(ctx context.Context, origin, destination domain.GeoPoint) (domain.Measurement, error)
}

// DistanceMatrixProvider - провайдер с пакетным запросом один-ко-многим.
// Результат имеет ту же длину и порядок, что и destinations.
type DistanceMatrixProvider interface {
	DistanceProvider

	MeasureMany(ctx context.Context, origin domain.GeoPoint, destinations []domain.GeoPoint) ([]domain.Measurement, error)
}
