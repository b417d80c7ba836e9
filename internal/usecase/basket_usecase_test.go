package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/basket-ranking/internal/domain"
	"github.com/basket-ranking/internal/usecase"
	"github.com/basket-ranking/internal/usecase/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type basketFixture struct {
	provider *MockMatrixProvider
	origins  *MockOriginRepository
	dests    *MockDestinationRepository
	runs     *MockRunRepository
	locator  *MockGeoLocator
	uc       *usecase.BasketUseCase
}

func newBasketFixture(defaultQuota domain.Quota) *basketFixture {
	f := &basketFixture{
		provider: &MockMatrixProvider{},
		origins:  &MockOriginRepository{},
		dests:    &MockDestinationRepository{},
		runs:     &MockRunRepository{},
		locator:  &MockGeoLocator{},
	}
	logger := zap.NewNop()
	builder := usecase.NewMatrixBuilder(f.provider, 2, logger)
	f.uc = usecase.NewBasketUseCase(
		builder, f.origins, f.dests, f.runs, f.locator,
		domain.TravelModeCar, domain.UnitsImperial, defaultQuota, logger,
	)
	return f
}

func TestBasketUseCase_BuildRun(t *testing.T) {
	ctx := context.Background()

	t.Run("builds, stores and sizes the basket", func(t *testing.T) {
		f := newBasketFixture(nil)
		f.origins.On("List", mock.Anything, []string{"O1"}).Return([]domain.Origin{{ID: "O1", Location: locO1}}, nil)
		f.dests.On("List", mock.Anything, []domain.Category{domain.CategoryGrocery, domain.CategoryPark}).Return(o1Destinations(), nil)
		f.provider.On("MeasureMany", mock.Anything, locO1, o1Points()).Return([]domain.Measurement{
			{Status: domain.StatusOK, Distance: 1.2},
			{Status: domain.StatusOK, Distance: 0.4},
			{Status: domain.StatusOK, Distance: 0.9},
		}, nil)
		f.runs.On("Save", mock.Anything, mock.MatchedBy(func(r *domain.Run) bool {
			return r.Provider == "mock-matrix" && r.Mode == domain.TravelModeCar && r.Counts.OK == 3
		}), mock.MatchedBy(func(recs []domain.DistanceRecord) bool {
			return len(recs) == 3
		})).Return(nil)

		resp, err := f.uc.BuildRun(ctx, dto.BuildRunRequest{
			OriginIDs:  []string{"O1"},
			Categories: []string{"grocery", "Park"},
			Quota:      map[string]int{"grocery": 1, "park": 1},
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, resp.RunID)
		assert.Equal(t, 1, resp.Origins)
		assert.Equal(t, 3, resp.Destinations)
		assert.Equal(t, domain.StatusCounts{OK: 3}, resp.Counts)
		require.NotNil(t, resp.BasketSize)
		assert.Equal(t, 2, *resp.BasketSize)

		f.runs.AssertExpectations(t)
		f.provider.AssertExpectations(t)
	})

	t.Run("unknown category rejected before loading", func(t *testing.T) {
		f := newBasketFixture(nil)
		_, err := f.uc.BuildRun(ctx, dto.BuildRunRequest{Categories: []string{"casino"}})
		assert.True(t, errors.Is(err, domain.ErrUnknownCategory))
		f.origins.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("negative quota rejected", func(t *testing.T) {
		f := newBasketFixture(nil)
		_, err := f.uc.BuildRun(ctx, dto.BuildRunRequest{Quota: map[string]int{"park": -2}})
		assert.True(t, errors.Is(err, domain.ErrInvalidQuota))
	})

	t.Run("points are geocoded into origins", func(t *testing.T) {
		f := newBasketFixture(nil)
		inside := domain.GeoPoint{Lat: 47.61, Lon: -122.33}
		outside := domain.GeoPoint{Lat: 10, Lon: 10}
		f.locator.On("Locate", mock.Anything, inside).Return(&domain.GeoAttributes{BlockGroup: "530330001001"}, nil)
		f.locator.On("Locate", mock.Anything, outside).Return(nil, domain.ErrNotFound)
		f.dests.On("List", mock.Anything, []domain.Category{}).Return(o1Destinations()[:1], nil)
		f.provider.On("MeasureMany", mock.Anything, inside, []domain.GeoPoint{locG1}).
			Return([]domain.Measurement{{Status: domain.StatusOK, Distance: 1}}, nil)
		f.runs.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		resp, err := f.uc.BuildRun(ctx, dto.BuildRunRequest{
			Points: []dto.Point{{Lat: 47.61, Lon: -122.33}, {Lat: 10, Lon: 10}, {Lat: 47.61, Lon: -122.33}},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Origins)
		assert.Equal(t, []int{1}, resp.SkippedPoints)
		assert.Nil(t, resp.BasketSize)
		f.origins.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("save failure propagates", func(t *testing.T) {
		f := newBasketFixture(nil)
		f.origins.On("List", mock.Anything, []string(nil)).Return([]domain.Origin{}, nil)
		f.dests.On("List", mock.Anything, []domain.Category{}).Return([]domain.Destination{}, nil)
		f.runs.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("db down"))

		_, err := f.uc.BuildRun(ctx, dto.BuildRunRequest{})
		assert.ErrorContains(t, err, "db down")
	})
}

func TestBasketUseCase_RebuildBasket(t *testing.T) {
	ctx := context.Background()
	runID := uuid.New()
	stored := []domain.DistanceRecord{
		okRecord("O1", "G1", domain.CategoryGrocery, 1.2),
		okRecord("O1", "G2", domain.CategoryGrocery, 0.4),
		okRecord("O1", "P1", domain.CategoryPark, 0.9),
		{OriginID: "O2", DestinationID: "G1", Category: domain.CategoryGrocery, Status: domain.StatusProviderError},
	}

	t.Run("new quota without re-querying", func(t *testing.T) {
		f := newBasketFixture(nil)
		f.runs.On("Get", mock.Anything, runID).Return(&domain.Run{ID: runID}, nil)
		f.runs.On("Records", mock.Anything, runID).Return(stored, nil)

		resp, err := f.uc.RebuildBasket(ctx, runID, dto.BasketRequest{Quota: map[string]int{"grocery": 2}})
		require.NoError(t, err)
		assert.Equal(t, []string{"O1:G2", "O1:G1"}, destinationIDs(resp.Entries))
		assert.Equal(t, map[string]map[domain.Category]int{"O2": {domain.CategoryGrocery: 2}}, resp.Shortfall)
		f.provider.AssertNotCalled(t, "MeasureMany", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty quota falls back to default", func(t *testing.T) {
		f := newBasketFixture(domain.Quota{domain.CategoryPark: 1})
		f.runs.On("Get", mock.Anything, runID).Return(&domain.Run{ID: runID}, nil)
		f.runs.On("Records", mock.Anything, runID).Return(stored, nil)

		resp, err := f.uc.RebuildBasket(ctx, runID, dto.BasketRequest{})
		require.NoError(t, err)
		assert.Equal(t, []string{"O1:P1"}, destinationIDs(resp.Entries))
		assert.Equal(t, domain.Quota{domain.CategoryPark: 1}, resp.Quota)
	})

	t.Run("unknown run", func(t *testing.T) {
		f := newBasketFixture(nil)
		f.runs.On("Get", mock.Anything, runID).Return(nil, domain.ErrNotFound)

		_, err := f.uc.RebuildBasket(ctx, runID, dto.BasketRequest{Quota: map[string]int{"grocery": 1}})
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestBasketUseCase_RankedRecords(t *testing.T) {
	f := newBasketFixture(nil)
	runID := uuid.New()
	f.runs.On("Get", mock.Anything, runID).Return(&domain.Run{ID: runID}, nil)
	f.runs.On("Records", mock.Anything, runID).Return([]domain.DistanceRecord{
		okRecord("O1", "G1", domain.CategoryGrocery, 1.2),
		okRecord("O1", "G2", domain.CategoryGrocery, 0.4),
	}, nil)

	resp, err := f.uc.RankedRecords(context.Background(), runID)
	require.NoError(t, err)
	require.Len(t, resp.Records, 2)
	assert.Equal(t, "G2", resp.Records[0].DestinationID)
	assert.Equal(t, 1, resp.Records[0].Rank)
}

func TestBasketUseCase_Measure(t *testing.T) {
	f := newBasketFixture(nil)
	f.provider.On("Measure", mock.Anything, locO1, locG1).
		Return(domain.Measurement{Status: domain.StatusOK, Distance: 0.8}, nil)

	resp, err := f.uc.Measure(context.Background(), dto.MeasureRequest{
		Origin:      dto.Point{Lat: locO1.Lat, Lon: locO1.Lon},
		Destination: dto.Point{Lat: locG1.Lat, Lon: locG1.Lon},
	})
	require.NoError(t, err)
	assert.Equal(t, "mock-matrix", resp.Provider)
	require.NotNil(t, resp.Distance)
	assert.Equal(t, 0.8, *resp.Distance)

	_, err = f.uc.Measure(context.Background(), dto.MeasureRequest{Origin: dto.Point{Lat: 200}})
	assert.True(t, errors.Is(err, domain.ErrInvalidCoordinate))
}

func TestBasketUseCase_Locate(t *testing.T) {
	f := newBasketFixture(nil)
	p := domain.GeoPoint{Lat: 47.61, Lon: -122.33}
	f.locator.On("Locate", mock.Anything, p).Return(&domain.GeoAttributes{BlockGroup: "530330001001", Zipcode: "98101"}, nil)

	resp, err := f.uc.Locate(context.Background(), dto.LocateRequest{Lat: 47.61, Lon: -122.33})
	require.NoError(t, err)
	assert.Equal(t, "98101", resp.Attributes.Zipcode)

	far := domain.GeoPoint{Lat: 0, Lon: 0}
	f.locator.On("Locate", mock.Anything, far).Return(nil, domain.ErrNotFound)
	_, err = f.uc.Locate(context.Background(), dto.LocateRequest{})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestBasketUseCase_Categories(t *testing.T) {
	f := newBasketFixture(nil)
	f.dests.On("CountByCategory", mock.Anything).Return(map[domain.Category]int{domain.CategoryGrocery: 12}, nil)

	cats, err := f.uc.Categories(context.Background())
	require.NoError(t, err)
	assert.Len(t, cats, len(domain.ValidCategories()))
	assert.Equal(t, domain.CategoryGrocery, cats[0].Category)
	assert.Equal(t, 12, cats[0].Destinations)
	assert.Equal(t, 0, cats[1].Destinations)
}
