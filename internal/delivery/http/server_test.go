package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/basket-ranking/internal/config"
	httpDelivery "github.com/basket-ranking/internal/delivery/http"
	"github.com/basket-ranking/internal/delivery/http/handler"
	"github.com/basket-ranking/internal/pkg/metrics"
	"github.com/basket-ranking/internal/usecase/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubBasket answers every call with an empty successful result
type stubBasket struct{}

func (stubBasket) Measure(context.Context, dto.MeasureRequest) (*dto.MeasureResponse, error) {
	return &dto.MeasureResponse{}, nil
}
func (stubBasket) BuildRun(context.Context, dto.BuildRunRequest) (*dto.BuildRunResponse, error) {
	return &dto.BuildRunResponse{}, nil
}
func (stubBasket) RankedRecords(_ context.Context, id uuid.UUID) (*dto.RankedResponse, error) {
	return &dto.RankedResponse{RunID: id}, nil
}
func (stubBasket) RebuildBasket(_ context.Context, id uuid.UUID, _ dto.BasketRequest) (*dto.BasketResponse, error) {
	return &dto.BasketResponse{RunID: id}, nil
}
func (stubBasket) Locate(context.Context, dto.LocateRequest) (*dto.LocateResponse, error) {
	return &dto.LocateResponse{}, nil
}
func (stubBasket) Categories(context.Context) ([]dto.CategoryInfo, error) { return nil, nil }
func (stubBasket) Enqueue(context.Context, dto.BuildRunRequest) (*dto.EnqueueResponse, error) {
	return &dto.EnqueueResponse{JobID: uuid.New()}, nil
}

func newTestServer() *httpDelivery.Server {
	cfg := &config.Config{}
	logger := zap.NewNop()
	return httpDelivery.NewServer(cfg, logger,
		handler.NewBasketHandler(stubBasket{}, stubBasket{}, logger),
		handler.NewHealthHandler(nil, logger),
	)
}

func TestServer_Routes(t *testing.T) {
	app := newTestServer().App()
	runID := uuid.NewString()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/v1/health", http.StatusOK},
		{http.MethodGet, "/api/v1/categories", http.StatusOK},
		{http.MethodPost, "/api/v1/distances/measure", http.StatusOK},
		{http.MethodPost, "/api/v1/runs", http.StatusOK},
		{http.MethodPost, "/api/v1/runs/async", http.StatusAccepted},
		{http.MethodGet, "/api/v1/runs/" + runID + "/ranked", http.StatusOK},
		{http.MethodPost, "/api/v1/runs/" + runID + "/basket", http.StatusOK},
		{http.MethodPost, "/api/v1/locate", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(tt.method, tt.path, nil), -1)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	resp, err := newTestServer().App().Test(httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ROUTE_NOT_FOUND", body["error"]["code"])
}

func TestServer_Metrics(t *testing.T) {
	metrics.JobsTotal.WithLabelValues("succeeded").Inc()

	resp, err := newTestServer().App().Test(httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "basket_build_jobs_total")
}
