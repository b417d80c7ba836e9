package infrastructure

import (
	"fmt"

	"github.com/basket-ranking/internal/config"
	"github.com/basket-ranking/internal/domain/repository"
	"github.com/basket-ranking/internal/infrastructure/geodesic"
	"github.com/basket-ranking/internal/infrastructure/googlematrix"
	"github.com/basket-ranking/internal/repository/cache"
	"go.uber.org/zap"
)

// NewDistanceProvider собирает провайдер по конфигурации.
// cacheRepo == nil или выключенный кеш - провайдер без Redis-декоратора.
func NewDistanceProvider(cfg *config.Config, cacheRepo repository.CacheRepository, logger *zap.Logger) (repository.DistanceProvider, error) {
	var provider repository.DistanceProvider
	switch cfg.Provider.Kind {
	case config.ProviderGeodesic:
		// геодезия дешевле Redis, кешировать нечего
		return geodesic.NewProvider(cfg.Provider.Units, cfg.Provider.Mode), nil
	case config.ProviderGoogle:
		provider = googlematrix.NewClient(&cfg.Provider, logger)
	default:
		return nil, fmt.Errorf("unknown provider kind %q", cfg.Provider.Kind)
	}

	if cacheRepo == nil || !cfg.Cache.Enabled {
		return provider, nil
	}

	logger.Info("Distance cache enabled",
		zap.String("provider", provider.Name()),
		zap.Duration("ttl", cfg.Cache.DistanceTTL))
	return cache.NewDistanceCache(provider, cacheRepo, cfg.Provider.Mode, cfg.Provider.Units, cfg.Cache.DistanceTTL, logger), nil
}
