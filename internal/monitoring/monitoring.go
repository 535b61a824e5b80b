// FilePath: internal/monitoring/monitoring.go
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Service exposes the hub's operational metrics
type Service struct {
	registry *prometheus.Registry

	ingestionSuccess *prometheus.CounterVec
	ingestionErrors  *prometheus.CounterVec
	batchSize        prometheus.Histogram
	queryRequests    *prometheus.CounterVec
	queryDuration    *prometheus.HistogramVec
	rateLimited      prometheus.Counter
}

// NewService creates the metric collectors on a private registry
func NewService() *Service {
	registry := prometheus.NewRegistry()

	s := &Service{
		registry: registry,
		ingestionSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hub_metric_ingestion_success_total",
			Help: "Successful metric ingestions by mode and metric type",
		}, []string{"mode", "metric_type"}),
		ingestionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hub_metric_ingestion_errors_total",
			Help: "Failed metric ingestions by mode",
		}, []string{"mode"}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hub_metric_ingestion_batch_size",
			Help:    "Number of points per batch ingestion",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		queryRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hub_metric_query_requests_total",
			Help: "Aggregation queries by statistic",
		}, []string{"statistic"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hub_metric_query_duration_seconds",
			Help:    "Aggregation query latency by outcome",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hub_rate_limited_requests_total",
			Help: "Requests rejected by admission control",
		}),
	}

	registry.MustRegister(
		s.ingestionSuccess,
		s.ingestionErrors,
		s.batchSize,
		s.queryRequests,
		s.queryDuration,
		s.rateLimited,
	)
	return s
}

// Handler serves the registry in Prometheus exposition format
func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// RecordIngestion counts one successful ingestion
func (s *Service) RecordIngestion(mode, metricType string) {
	s.ingestionSuccess.WithLabelValues(mode, metricType).Inc()
}

// RecordIngestionError counts one failed ingestion
func (s *Service) RecordIngestionError(mode string) {
	s.ingestionErrors.WithLabelValues(mode).Inc()
}

// RecordBatch observes the size of one batch ingestion
func (s *Service) RecordBatch(size int) {
	s.batchSize.Observe(float64(size))
}

// RecordQuery counts one aggregation query and observes its latency
func (s *Service) RecordQuery(statistic string, duration time.Duration, err error) {
	s.queryRequests.WithLabelValues(statistic).Inc()
	status := "success"
	if err != nil {
		status = "failure"
	}
	s.queryDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordRateLimited counts one admission rejection
func (s *Service) RecordRateLimited() {
	s.rateLimited.Inc()
}
