package repository

import (
	"context"
	"time"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	// Get получает значение из кеша по ключу; промах - (nil, nil)
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет значение из кеша
	Delete(ctx context.Context, key string) error

	// Exists проверяет существование ключа
	Exists(ctx context.Context, key string) (bool, error)

	// GetMany читает ключи одним запросом; промахи - nil на своей позиции
	GetMany(ctx context.Context, keys []string) ([][]byte, error)

	// SetMany пишет пары ключ/значение одним pipeline
	SetMany(ctx context.Context, values map[string][]byte, ttl time.Duration) error
}
