package usecase_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/basket-ranking/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockMatrixProvider is a mock of DistanceMatrixProvider
type MockMatrixProvider struct {
	mock.Mock
}

func (m *MockMatrixProvider) Name() string {
	return "mock-matrix"
}

func (m *MockMatrixProvider) Measure(ctx context.Context, origin, destination domain.GeoPoint) (domain.Measurement, error) {
	args := m.Called(ctx, origin, destination)
	return args.Get(0).(domain.Measurement), args.Error(1)
}

func (m *MockMatrixProvider) MeasureMany(ctx context.Context, origin domain.GeoPoint, destinations []domain.GeoPoint) ([]domain.Measurement, error) {
	args := m.Called(ctx, origin, destinations)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Measurement), args.Error(1)
}

// MockPairProvider has no batch endpoint
type MockPairProvider struct {
	mock.Mock
}

func (m *MockPairProvider) Name() string {
	return "mock-pair"
}

func (m *MockPairProvider) Measure(ctx context.Context, origin, destination domain.GeoPoint) (domain.Measurement, error) {
	args := m.Called(ctx, origin, destination)
	return args.Get(0).(domain.Measurement), args.Error(1)
}

// tableProvider answers from a lookup keyed by destination and tracks concurrency.
type tableProvider struct {
	distances map[domain.GeoPoint]float64
	delay     time.Duration
	inFlight  atomic.Int32
	maxSeen   atomic.Int32
	mu        sync.Mutex
	calls     []domain.GeoPoint
}

func (p *tableProvider) Name() string { return "table" }

func (p *tableProvider) Measure(ctx context.Context, origin, destination domain.GeoPoint) (domain.Measurement, error) {
	res, err := p.MeasureMany(ctx, origin, []domain.GeoPoint{destination})
	if err != nil {
		return domain.Measurement{}, err
	}
	return res[0], nil
}

func (p *tableProvider) MeasureMany(ctx context.Context, origin domain.GeoPoint, destinations []domain.GeoPoint) ([]domain.Measurement, error) {
	n := p.inFlight.Add(1)
	defer p.inFlight.Add(-1)
	for {
		seen := p.maxSeen.Load()
		if n <= seen || p.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}

	p.mu.Lock()
	p.calls = append(p.calls, origin)
	p.mu.Unlock()

	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	out := make([]domain.Measurement, len(destinations))
	for i, d := range destinations {
		dist, ok := p.distances[d]
		if !ok {
			out[i] = domain.Measurement{Status: domain.StatusNotFound}
			continue
		}
		out[i] = domain.Measurement{Status: domain.StatusOK, Distance: dist}
	}
	return out, nil
}

// MockOriginRepository is a mock of OriginRepository
type MockOriginRepository struct {
	mock.Mock
}

func (m *MockOriginRepository) List(ctx context.Context, ids []string) ([]domain.Origin, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Origin), args.Error(1)
}

// MockDestinationRepository is a mock of DestinationRepository
type MockDestinationRepository struct {
	mock.Mock
}

func (m *MockDestinationRepository) List(ctx context.Context, categories []domain.Category) ([]domain.Destination, error) {
	args := m.Called(ctx, categories)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Destination), args.Error(1)
}

func (m *MockDestinationRepository) CountByCategory(ctx context.Context) (map[domain.Category]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.Category]int), args.Error(1)
}

// MockRunRepository is a mock of RunRepository
type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) Save(ctx context.Context, run *domain.Run, records []domain.DistanceRecord) error {
	args := m.Called(ctx, run, records)
	return args.Error(0)
}

func (m *MockRunRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Run), args.Error(1)
}

func (m *MockRunRepository) Records(ctx context.Context, id uuid.UUID) ([]domain.DistanceRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DistanceRecord), args.Error(1)
}

// MockGeoLocator is a mock of GeoLocator
type MockGeoLocator struct {
	mock.Mock
}

func (m *MockGeoLocator) Locate(ctx context.Context, point domain.GeoPoint) (*domain.GeoAttributes, error) {
	args := m.Called(ctx, point)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GeoAttributes), args.Error(1)
}

func ptrFloat64(v float64) *float64 {
	return &v
}
