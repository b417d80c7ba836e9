package repository

import (
	"context"

	"github.com/basket-ranking/internal/domain"
)

// OriginRepository - каталог block group.
type OriginRepository interface {
	// List возвращает origins; пустой ids означает все
	List(ctx context.Context, ids []string) ([]domain.Origin, error)
}

// DestinationRepository - каталог точек интереса.
type DestinationRepository interface {
	// List возвращает назначения; пустой categories означает все категории
	List(ctx context.Context, categories []domain.Category) ([]domain.Destination, error)

	// CountByCategory - размер каталога по категориям
	CountByCategory(ctx context.Context) (map[domain.Category]int, error)
}
