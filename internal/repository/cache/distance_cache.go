package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/basket-ranking/internal/domain"
	"github.com/basket-ranking/internal/domain/repository"
	"github.com/basket-ranking/internal/pkg/metrics"
	"go.uber.org/zap"
)

// DistanceCache - декоратор провайдера, кеширующий измерения пар в Redis.
// Кешируются только OK и NOT_FOUND: PROVIDER_ERROR должен перезапрашиваться.
type DistanceCache struct {
	next  repository.DistanceProvider
	cache repository.CacheRepository
	mode  domain.TravelMode
	units domain.UnitSystem
	ttl   time.Duration

	logger *zap.Logger
}

func NewDistanceCache(
	next repository.DistanceProvider,
	cache repository.CacheRepository,
	mode domain.TravelMode,
	units domain.UnitSystem,
	ttl time.Duration,
	logger *zap.Logger,
) *DistanceCache {
	return &DistanceCache{
		next:   next,
		cache:  cache,
		mode:   mode,
		units:  units,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *DistanceCache) Name() string {
	return c.next.Name()
}

func (c *DistanceCache) key(origin, destination domain.GeoPoint) string {
	return fmt.Sprintf("distance:%s:%s:%s:%s:%s", c.next.Name(), c.mode, c.units, origin, destination)
}

func (c *DistanceCache) Measure(ctx context.Context, origin, destination domain.GeoPoint) (domain.Measurement, error) {
	res, err := c.MeasureMany(ctx, origin, []domain.GeoPoint{destination})
	if err != nil {
		return domain.Measurement{}, err
	}
	return res[0], nil
}

// MeasureMany отдаёт попадания из кеша и запрашивает у провайдера только промахи.
// Ошибки Redis не роняют измерение: запрос уходит в провайдер целиком.
func (c *DistanceCache) MeasureMany(ctx context.Context, origin domain.GeoPoint, destinations []domain.GeoPoint) ([]domain.Measurement, error) {
	keys := make([]string, len(destinations))
	for i, d := range destinations {
		keys[i] = c.key(origin, d)
	}

	out := make([]domain.Measurement, len(destinations))
	cached, err := c.cache.GetMany(ctx, keys)
	if err != nil {
		c.logger.Warn("Distance cache unavailable, measuring without it", zap.Error(err))
		cached = make([][]byte, len(destinations))
	}

	var missIdx []int
	for i, raw := range cached {
		if raw == nil {
			missIdx = append(missIdx, i)
			continue
		}
		if err := json.Unmarshal(raw, &out[i]); err != nil || !out[i].Status.IsValid() {
			c.logger.Warn("Dropping corrupt cache entry", zap.String("key", keys[i]))
			out[i] = domain.Measurement{}
			missIdx = append(missIdx, i)
		}
	}

	metrics.CacheHitsTotal.Add(float64(len(destinations) - len(missIdx)))
	metrics.CacheMissesTotal.Add(float64(len(missIdx)))

	if len(missIdx) == 0 {
		return out, nil
	}

	missing := make([]domain.GeoPoint, len(missIdx))
	for j, i := range missIdx {
		missing[j] = destinations[i]
	}

	measured, err := c.measure(ctx, origin, missing)
	if err != nil {
		return nil, err
	}

	toStore := make(map[string][]byte, len(missIdx))
	for j, i := range missIdx {
		out[i] = measured[j]
		if measured[j].Status == domain.StatusProviderError {
			continue
		}
		raw, err := json.Marshal(measured[j])
		if err != nil {
			continue
		}
		toStore[keys[i]] = raw
	}

	if err := c.cache.SetMany(ctx, toStore, c.ttl); err != nil {
		c.logger.Warn("Failed to store distances in cache", zap.Error(err))
	}

	return out, nil
}

func (c *DistanceCache) measure(ctx context.Context, origin domain.GeoPoint, destinations []domain.GeoPoint) ([]domain.Measurement, error) {
	if batch, ok := c.next.(repository.DistanceMatrixProvider); ok {
		res, err := batch.MeasureMany(ctx, origin, destinations)
		if err != nil {
			return nil, err
		}
		if len(res) != len(destinations) {
			return nil, fmt.Errorf("%w: %d measurements for %d destinations",
				domain.ErrMalformedResponse, len(res), len(destinations))
		}
		return res, nil
	}

	out := make([]domain.Measurement, len(destinations))
	for i, d := range destinations {
		m, err := c.next.Measure(ctx, origin, d)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}
