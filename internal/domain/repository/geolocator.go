package repository

import (
	"context"

	"github.com/basket-ranking/internal/domain"
)

// GeoLocator определяет block group и районные атрибуты точки.
// Точка вне покрытия даёт domain.ErrNotFound, а не пустой результат.
type GeoLocator interface {
	Locate(ctx context.Context, point domain.GeoPoint) (*domain.GeoAttributes, error)
}
