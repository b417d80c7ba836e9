package geodesic

import (
	"context"

	"github.com/basket-ranking/internal/domain"
)

const providerName = "geodesic"

// Provider считает расстояние по большому кругу локально, без сети.
// Для валидных координат всегда возвращает OK.
type Provider struct {
	units domain.UnitSystem
	mode  domain.TravelMode
}

// NewProvider: units выбирает мили или километры, mode - скорость для оценки времени.
func NewProvider(units domain.UnitSystem, mode domain.TravelMode) *Provider {
	return &Provider{units: units, mode: mode}
}

func (p *Provider) Name() string {
	return providerName
}

func (p *Provider) Measure(ctx context.Context, origin, destination domain.GeoPoint) (domain.Measurement, error) {
	if err := ctx.Err(); err != nil {
		return domain.Measurement{}, err
	}
	if err := origin.Validate(); err != nil {
		return domain.Measurement{}, err
	}
	if err := destination.Validate(); err != nil {
		return domain.Measurement{}, err
	}
	return p.measure(origin, destination), nil
}

func (p *Provider) MeasureMany(ctx context.Context, origin domain.GeoPoint, destinations []domain.GeoPoint) ([]domain.Measurement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := origin.Validate(); err != nil {
		return nil, err
	}
	out := make([]domain.Measurement, len(destinations))
	for i, d := range destinations {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		out[i] = p.measure(origin, d)
	}
	return out, nil
}

func (p *Provider) measure(origin, destination domain.GeoPoint) domain.Measurement {
	miles := origin.DistanceTo(destination)

	m := domain.Measurement{Status: domain.StatusOK, Distance: miles}
	if p.units == domain.UnitsMetric {
		m.Distance = origin.DistanceKm(destination)
	}

	// duration in seconds, same unit as the remote provider
	if speed := p.mode.AverageSpeedMph(); speed > 0 {
		sec := miles / speed * 3600
		m.Duration = &sec
	}
	return m
}
