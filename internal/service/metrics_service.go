package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for HTTP traffic, the cache and the complaint workflow.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Histogram
	cacheWrite      prometheus.Histogram
	cacheLookups    *prometheus.CounterVec
	complaints      prometheus.Counter
	statusUpdates   *prometheus.CounterVec
	assignments     prometheus.Counter
	messages        prometheus.Counter
	streams         prometheus.Gauge
	auditDropped    prometheus.Counter
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Latency for cache lookups",
			Buckets: prometheus.DefBuckets,
		}),
		cacheWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Latency for cache set operations",
			Buckets: prometheus.DefBuckets,
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups partitioned by result",
		}, []string{"result"}),
		complaints: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "complaints_created_total",
			Help: "Complaints submitted",
		}),
		statusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "complaint_status_updates_total",
			Help: "Complaint status updates by target status",
		}, []string{"status"}),
		assignments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "complaint_assignments_total",
			Help: "Assignments created",
		}),
		messages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "messages_created_total",
			Help: "Chat messages posted",
		}),
		streams: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "message_streams_active",
			Help: "Open websocket message streams",
		}),
		auditDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audit_logs_dropped_total",
			Help: "Audit entries that could not be queued",
		}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		m.requestDuration, m.requestTotal,
		m.cacheLatency, m.cacheWrite, m.cacheLookups,
		m.complaints, m.statusUpdates, m.assignments, m.messages, m.streams, m.auditDropped,
		goroutines,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
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

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup result.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
	}
}

// ObserveCacheWrite tracks the duration of cache writes.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ComplaintCreated counts a submitted complaint.
func (m *MetricsService) ComplaintCreated() {
	if m == nil {
		return
	}
	m.complaints.Inc()
}

// StatusUpdated counts a status transition.
func (m *MetricsService) StatusUpdated(status string) {
	if m == nil {
		return
	}
	m.statusUpdates.WithLabelValues(status).Inc()
}

// AssignmentCreated counts an assignment.
func (m *MetricsService) AssignmentCreated() {
	if m == nil {
		return
	}
	m.assignments.Inc()
}

// MessageCreated counts a chat message.
func (m *MetricsService) MessageCreated() {
	if m == nil {
		return
	}
	m.messages.Inc()
}

// StreamOpened tracks a websocket stream being opened.
func (m *MetricsService) StreamOpened() {
	if m == nil {
		return
	}
	m.streams.Inc()
}

// StreamClosed tracks a websocket stream being closed.
func (m *MetricsService) StreamClosed() {
	if m == nil {
		return
	}
	m.streams.Dec()
}

// AuditDropped counts an audit entry that was lost.
func (m *MetricsService) AuditDropped() {
	if m == nil {
		return
	}
	m.auditDropped.Inc()
}
