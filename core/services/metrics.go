package services

import (
	"context"
	"maps"
	"net/http"
	"sync"
	"time"

	"github.com/mudler/thinkstream/pkg/reasoning"
	"github.com/mudler/thinkstream/pkg/reasoning/stream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsService exports classifier and API metrics through OpenTelemetry to
// a Prometheus registry of its own. It implements stream.Observer.
type MetricsService struct {
	provider *sdkmetric.MeterProvider
	registry *prometheus.Registry

	Meter          metric.Meter
	ApiTimeMetric  metric.Float64Histogram
	EventsMetric   metric.Int64Counter
	FailuresMetric metric.Int64Counter

	stats *RequestStats
}

var _ stream.Observer = (*MetricsService)(nil)

// NewMetricsService bootstraps the OpenTelemetry pipeline for Prometheus export.
// If it does not return an error, make sure to call Shutdown for proper cleanup.
func NewMetricsService() (*MetricsService, error) {
	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, err
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter("github.com/mudler/thinkstream")

	apiTimeMetric, err := meter.Float64Histogram("api_call", metric.WithDescription("api calls"), metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	eventsMetric, err := meter.Int64Counter("reasoning_events", metric.WithDescription("classified stream events"))
	if err != nil {
		return nil, err
	}
	failuresMetric, err := meter.Int64Counter("reasoning_decode_failures", metric.WithDescription("payload lines that failed to decode"))
	if err != nil {
		return nil, err
	}

	return &MetricsService{
		provider:       provider,
		registry:       registry,
		Meter:          meter,
		ApiTimeMetric:  apiTimeMetric,
		EventsMetric:   eventsMetric,
		FailuresMetric: failuresMetric,
		stats:          NewRequestStats(),
	}, nil
}

func (m *MetricsService) ObserveAPICall(method string, path string, status int, duration time.Duration) {
	opts := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
	)
	m.ApiTimeMetric.Record(context.Background(), duration.Seconds(), opts)
	m.stats.RecordRequest(path, status < 400, duration)
}

func (m *MetricsService) ObserveEvent(kind stream.EventKind, state reasoning.ThinkingState) {
	m.EventsMetric.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("kind", kind.String()),
		attribute.String("state", state.String()),
	))
}

func (m *MetricsService) ObserveDecodeFailure(error) {
	m.FailuresMetric.Add(context.Background(), 1)
}

// Handler serves the Prometheus exposition of the service's registry.
func (m *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *MetricsService) Stats() *RequestStats {
	return m.stats
}

func (m *MetricsService) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}

// RequestStats keeps in-memory request counters per endpoint.
type RequestStats struct {
	mu           sync.RWMutex
	endpoints    map[string]int64
	successCount int64
	failureCount int64
	totalTime    time.Duration
}

type StatsSnapshot struct {
	Endpoints       map[string]int64 `json:"endpoints"`
	TotalRequests   int64            `json:"total_requests"`
	SuccessRate     float64          `json:"success_rate"`
	AverageDuration float64          `json:"average_duration_seconds"`
}

func NewRequestStats() *RequestStats {
	return &RequestStats{endpoints: make(map[string]int64)}
}

func (s *RequestStats) RecordRequest(endpoint string, success bool, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if endpoint != "" {
		s.endpoints[endpoint]++
	}
	if success {
		s.successCount++
	} else {
		s.failureCount++
	}
	s.totalTime += duration
}

func (s *RequestStats) Snapshot() StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := s.successCount + s.failureCount
	snap := StatsSnapshot{
		Endpoints:     maps.Clone(s.endpoints),
		TotalRequests: total,
	}
	if total > 0 {
		snap.SuccessRate = float64(s.successCount) / float64(total) * 100.0
		snap.AverageDuration = s.totalTime.Seconds() / float64(total)
	}
	return snap
}

func (s *RequestStats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.endpoints = make(map[string]int64)
	s.successCount = 0
	s.failureCount = 0
	s.totalTime = 0
}
