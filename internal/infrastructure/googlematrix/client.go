package googlematrix

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/basket-ranking/internal/config"
	"github.com/basket-ranking/internal/domain"
	"github.com/basket-ranking/internal/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const providerName = "google"

// statuses of a single element that mean "no route for this pair"
var notFoundStatuses = map[string]bool{
	"NOT_FOUND":                 true,
	"ZERO_RESULTS":              true,
	"MAX_ROUTE_LENGTH_EXCEEDED": true,
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLimiter shares a rate limiter between clients.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithBackoff overrides the initial retry delay.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		c.backoff = d
	}
}

// Client - провайдер расстояний поверх Google Distance Matrix API.
// Один GET на origin, назначения бьются на пачки по maxElements.
// Безопасен для конкурентного использования.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	mode        domain.TravelMode
	units       domain.UnitSystem
	maxElements int
	maxAttempts int
	backoff     time.Duration
	limiter     *rate.Limiter
	logger      *zap.Logger
}

// NewClient создает клиент Distance Matrix API
func NewClient(cfg *config.ProviderConfig, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		mode:        cfg.Mode,
		units:       cfg.Units,
		maxElements: cfg.MaxElements,
		maxAttempts: cfg.MaxRetries + 1,
		backoff:     200 * time.Millisecond,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxElements <= 0 {
		c.maxElements = 25
	}
	if c.maxAttempts < 1 {
		c.maxAttempts = 1
	}
	return c
}

func (c *Client) Name() string {
	return providerName
}

// Measure - одна пара, тот же путь что и MeasureMany.
func (c *Client) Measure(ctx context.Context, origin, destination domain.GeoPoint) (domain.Measurement, error) {
	res, err := c.MeasureMany(ctx, origin, []domain.GeoPoint{destination})
	if err != nil {
		return domain.Measurement{}, err
	}
	return res[0], nil
}

// MeasureMany returns one measurement per destination, in input order.
// Any failed chunk fails the whole call: the caller degrades the origin.
func (c *Client) MeasureMany(
	ctx context.Context,
	origin domain.GeoPoint,
	destinations []domain.GeoPoint,
) ([]domain.Measurement, error) {
	if err := origin.Validate(); err != nil {
		return nil, err
	}
	for _, d := range destinations {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}

	out := make([]domain.Measurement, 0, len(destinations))
	for start := 0; start < len(destinations); start += c.maxElements {
		end := min(start+c.maxElements, len(destinations))

		started := time.Now()
		row, err := c.fetchRow(ctx, origin, destinations[start:end])
		metrics.ProviderDurationMs.WithLabelValues(providerName).Observe(float64(time.Since(started).Milliseconds()))
		if err != nil {
			metrics.ProviderRequestsTotal.WithLabelValues(providerName, "error").Inc()
			return nil, err
		}
		metrics.ProviderRequestsTotal.WithLabelValues(providerName, "ok").Inc()
		out = append(out, row...)
	}

	return out, nil
}

// fetchRow выполняет один запрос origin -> пачка назначений
func (c *Client) fetchRow(
	ctx context.Context,
	origin domain.GeoPoint,
	destinations []domain.GeoPoint,
) ([]domain.Measurement, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrProviderUnavailable, err)
	}

	endpoint := c.buildURL(origin, destinations)

	c.logger.Debug("Calling Distance Matrix API",
		zap.String("origin", origin.String()),
		zap.Int("destinations_count", len(destinations)),
		zap.String("mode", c.mode.ProviderMode()))

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, endpoint)
	})
	if err != nil {
		return nil, c.classify(err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		c.logger.Error("Failed to decode response", zap.Error(err))
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrMalformedResponse, err)
	}

	return c.parse(&mr, len(destinations))
}

func (c *Client) buildURL(origin domain.GeoPoint, destinations []domain.GeoPoint) string {
	dests := make([]string, len(destinations))
	for i, d := range destinations {
		dests[i] = d.String()
	}

	q := url.Values{}
	q.Set("units", string(c.units))
	q.Set("mode", c.mode.ProviderMode())
	q.Set("origins", origin.String())
	q.Set("destinations", strings.Join(dests, "|"))
	q.Set("key", c.apiKey)

	return c.baseURL + "?" + q.Encode()
}

// parse converts the response body into measurements. Distances arrive in
// meters regardless of the units parameter and are converted here.
func (c *Client) parse(mr *matrixResponse, want int) ([]domain.Measurement, error) {
	if mr.Status != "OK" {
		c.logger.Error("Distance Matrix API returned non-OK status",
			zap.String("status", mr.Status),
			zap.String("error_message", mr.ErrorMessage))
		return nil, &domain.ProviderRejectedError{Status: mr.Status, Message: mr.ErrorMessage}
	}

	if len(mr.Rows) != 1 {
		return nil, fmt.Errorf("%w: expected 1 row, got %d", domain.ErrMalformedResponse, len(mr.Rows))
	}
	elements := mr.Rows[0].Elements
	if len(elements) != want {
		return nil, fmt.Errorf("%w: expected %d elements, got %d", domain.ErrMalformedResponse, want, len(elements))
	}

	out := make([]domain.Measurement, len(elements))
	for i, el := range elements {
		switch {
		case el.Status == "OK":
			if el.Distance == nil {
				return nil, fmt.Errorf("%w: element %d is OK without distance", domain.ErrMalformedResponse, i)
			}
			m := domain.Measurement{
				Status:   domain.StatusOK,
				Distance: c.units.FromMeters(el.Distance.Value),
			}
			if el.Duration != nil {
				sec := el.Duration.Value
				m.Duration = &sec
			}
			out[i] = m
		case notFoundStatuses[el.Status]:
			out[i] = domain.Measurement{Status: domain.StatusNotFound}
		default:
			return nil, fmt.Errorf("%w: element %d has status %q", domain.ErrMalformedResponse, i, el.Status)
		}
	}

	return out, nil
}

type matrixResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Rows         []struct {
		Elements []matrixElement `json:"elements"`
	} `json:"rows"`
}

type matrixElement struct {
	Status   string      `json:"status"`
	Distance *valueField `json:"distance"`
	Duration *valueField `json:"duration"`
}

type valueField struct {
	Value float64 `json:"value"`
	Text  string  `json:"text"`
}
