package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/husseinvr97/fasee7System-sub002/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for HTTP traffic,
// streak updates and signal delivery.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	updatesTotal      *prometheus.CounterVec
	thresholdsTotal   *prometheus.CounterVec
	resetsTotal       prometheus.Counter
	signalHandlerTime *prometheus.HistogramVec
	relayTotal        *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	updatesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consecutivity_updates_total",
		Help: "Streak updates persisted, by tracking kind",
	}, []string{"kind"})

	thresholdsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consecutivity_thresholds_total",
		Help: "Threshold signals emitted, by tracking kind and threshold",
	}, []string{"kind", "threshold"})

	resetsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "consecutivity_resets_total",
		Help: "Full per-student tracking resets",
	})

	signalHandlerTime := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "signal_handler_duration_seconds",
		Help:    "Duration of synchronous signal handlers",
		Buckets: prometheus.DefBuckets,
	}, []string{"signal", "outcome"})

	relayTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_relay_total",
		Help: "Signal relay outcomes",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, updatesTotal, thresholdsTotal, resetsTotal, signalHandlerTime, relayTotal, goroutines)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		updatesTotal:      updatesTotal,
		thresholdsTotal:   thresholdsTotal,
		resetsTotal:       resetsTotal,
		signalHandlerTime: signalHandlerTime,
		relayTotal:        relayTotal,
	}
}

// Registry exposes the underlying registry for tests and embedding.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordConsecutivityUpdate counts a persisted streak update.
func (m *MetricsService) RecordConsecutivityUpdate(kind models.TrackingKind) {
	if m == nil {
		return
	}
	m.updatesTotal.WithLabelValues(string(kind)).Inc()
}

// RecordThresholdReached counts an emitted threshold signal.
func (m *MetricsService) RecordThresholdReached(kind models.TrackingKind, threshold models.ThresholdKind) {
	if m == nil {
		return
	}
	m.thresholdsTotal.WithLabelValues(string(kind), string(threshold)).Inc()
}

// RecordReset counts a full tracking reset.
func (m *MetricsService) RecordReset() {
	if m == nil {
		return
	}
	m.resetsTotal.Inc()
}

// ObserveSignalHandler implements events.HandlerObserver.
func (m *MetricsService) ObserveSignalHandler(signal string, duration time.Duration, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.signalHandlerTime.WithLabelValues(signal, outcome).Observe(duration.Seconds())
}

// RecordSignalRelay implements events.RelayObserver.
func (m *MetricsService) RecordSignalRelay(outcome string) {
	if m == nil {
		return
	}
	m.relayTotal.WithLabelValues(outcome).Inc()
}
