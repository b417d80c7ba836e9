package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "basket_provider_requests_total",
		Help: "Distance provider batch requests by provider and outcome",
	}, []string{"provider", "outcome"})
	ProviderDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "basket_provider_duration_ms",
		Help:    "Distance provider batch duration in milliseconds",
		Buckets: []float64{1, 5, 10, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"provider"})
	RecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "basket_distance_records_total",
		Help: "Distance records produced by status",
	}, []string{"status"})
	DegradedOriginsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "basket_degraded_origins_total",
		Help: "Origins whose batch failed and was marked PROVIDER_ERROR",
	})
	RunDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "basket_run_duration_ms",
		Help:    "Distance matrix build duration in milliseconds",
		Buckets: []float64{10, 100, 1000, 10000, 60000, 300000, 1800000},
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "basket_distance_cache_hits_total",
		Help: "Distance cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "basket_distance_cache_misses_total",
		Help: "Distance cache misses",
	})
	JobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "basket_build_jobs_total",
		Help: "Build jobs consumed from the stream by outcome",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(ProviderRequestsTotal)
	prometheus.MustRegister(ProviderDurationMs)
	prometheus.MustRegister(RecordsTotal)
	prometheus.MustRegister(DegradedOriginsTotal)
	prometheus.MustRegister(RunDurationMs)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(JobsTotal)
}

// Handler отдаёт зарегистрированные метрики для /metrics.
func Handler() http.Handler { return promhttp.Handler() }
