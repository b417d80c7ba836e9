package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/basket-ranking/internal/domain"
	"github.com/basket-ranking/internal/domain/repository"
	"github.com/basket-ranking/internal/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MatrixBuilder строит таблицу расстояний origins x destinations.
// На каждый origin - один пакетный запрос к провайдеру; ошибка запроса
// переводит записи только этого origin в PROVIDER_ERROR.
type MatrixBuilder struct {
	provider    repository.DistanceProvider
	concurrency int
	logger      *zap.Logger
}

func NewMatrixBuilder(provider repository.DistanceProvider, concurrency int, logger *zap.Logger) *MatrixBuilder {
	if concurrency < 1 {
		concurrency = 1
	}
	return &MatrixBuilder{
		provider:    provider,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Provider returns the provider the builder measures with.
func (b *MatrixBuilder) Provider() repository.DistanceProvider {
	return b.provider
}

// Build returns exactly one record per (origin, destination) pair, grouped by
// origin in input order. Invalid or duplicated input is rejected before any
// provider call. After ctx is done no new batches start and every origin
// without a result is emitted as PROVIDER_ERROR.
func (b *MatrixBuilder) Build(
	ctx context.Context,
	origins []domain.Origin,
	destinations []domain.Destination,
) ([]domain.DistanceRecord, error) {
	if err := domain.ValidateOrigins(origins); err != nil {
		return nil, err
	}
	if err := domain.ValidateDestinations(destinations); err != nil {
		return nil, err
	}
	if len(origins) == 0 || len(destinations) == 0 {
		return []domain.DistanceRecord{}, nil
	}

	started := time.Now()
	points := make([]domain.GeoPoint, len(destinations))
	for i, d := range destinations {
		points[i] = d.Location
	}

	b.logger.Info("Building distance matrix",
		zap.String("provider", b.provider.Name()),
		zap.Int("origins", len(origins)),
		zap.Int("destinations", len(destinations)),
		zap.Int("concurrency", b.concurrency))

	// каждый воркер пишет только в свой слот
	results := make([][]domain.DistanceRecord, len(origins))
	var degraded atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(b.concurrency)

	for i, origin := range origins {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			recs, ok := b.measureOrigin(ctx, origin, destinations, points)
			if !ok {
				degraded.Add(1)
			}
			results[i] = recs
			return nil
		})
	}
	_ = g.Wait()

	records := make([]domain.DistanceRecord, 0, len(origins)*len(destinations))
	skipped := 0
	for i, recs := range results {
		if recs == nil {
			skipped++
			recs = failedRecords(origins[i].ID, destinations)
		}
		records = append(records, recs...)
	}

	if skipped > 0 {
		b.logger.Warn("Distance matrix build interrupted, unmeasured origins marked PROVIDER_ERROR",
			zap.Int("skipped_origins", skipped),
			zap.Error(ctx.Err()))
	}

	counts := domain.CountStatuses(records)
	metrics.RecordsTotal.WithLabelValues(string(domain.StatusOK)).Add(float64(counts.OK))
	metrics.RecordsTotal.WithLabelValues(string(domain.StatusNotFound)).Add(float64(counts.NotFound))
	metrics.RecordsTotal.WithLabelValues(string(domain.StatusProviderError)).Add(float64(counts.ProviderError))
	metrics.DegradedOriginsTotal.Add(float64(degraded.Load()) + float64(skipped))
	metrics.RunDurationMs.Observe(float64(time.Since(started).Milliseconds()))

	b.logger.Info("Distance matrix built",
		zap.Int("records", len(records)),
		zap.Int("ok", counts.OK),
		zap.Int("not_found", counts.NotFound),
		zap.Int("provider_error", counts.ProviderError),
		zap.Int64("degraded_origins", degraded.Load()),
		zap.Duration("elapsed", time.Since(started)))

	return records, nil
}

// measureOrigin returns false when the origin's batch failed.
func (b *MatrixBuilder) measureOrigin(
	ctx context.Context,
	origin domain.Origin,
	destinations []domain.Destination,
	points []domain.GeoPoint,
) ([]domain.DistanceRecord, bool) {
	measurements, err := b.measure(ctx, origin.Location, points)
	if err == nil && len(measurements) != len(points) {
		err = fmt.Errorf("%w: %d measurements for %d destinations",
			domain.ErrMalformedResponse, len(measurements), len(points))
	}
	if err != nil {
		b.logger.Warn("Origin batch failed, marking records PROVIDER_ERROR",
			zap.String("origin_id", origin.ID),
			zap.String("provider", b.provider.Name()),
			zap.Error(err))
		return failedRecords(origin.ID, destinations), false
	}

	recs := make([]domain.DistanceRecord, len(destinations))
	for j, dest := range destinations {
		recs[j] = domain.NewDistanceRecord(origin.ID, dest, measurements[j])
	}
	return recs, true
}

// measure prefers the provider's batch call and falls back to one call per pair.
func (b *MatrixBuilder) measure(ctx context.Context, origin domain.GeoPoint, points []domain.GeoPoint) ([]domain.Measurement, error) {
	if mp, ok := b.provider.(repository.DistanceMatrixProvider); ok {
		return mp.MeasureMany(ctx, origin, points)
	}

	out := make([]domain.Measurement, len(points))
	for i, p := range points {
		m, err := b.provider.Measure(ctx, origin, p)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

func failedRecords(originID string, destinations []domain.Destination) []domain.DistanceRecord {
	recs := make([]domain.DistanceRecord, len(destinations))
	for j, dest := range destinations {
		recs[j] = domain.FailedRecord(originID, dest)
	}
	return recs
}
