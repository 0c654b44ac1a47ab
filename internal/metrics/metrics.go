// Package metrics manages the service's Prometheus metrics: HTTP
// traffic, loader submissions/polls, ledger writes, and system metrics.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Manager is a singleton that owns the Prometheus registry and all
// metric families.
type Manager struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	submissionsTotal *prometheus.CounterVec
	pollsTotal       *prometheus.CounterVec
	ledgerWrites     *prometheus.CounterVec
	ledgerDuration   prometheus.Histogram

	systemCPUUsage    *prometheus.GaugeVec
	systemMemoryUsage *prometheus.GaugeVec
	goGoroutines      prometheus.Gauge

	initialized bool
	mu          sync.Mutex
}

var (
	instance *Manager
	once     sync.Once
)

// GetInstance returns the singleton metrics manager.
func GetInstance() *Manager {
	once.Do(func() {
		instance = &Manager{
			registry: prometheus.NewRegistry(),
		}
	})
	return instance
}

// Registry returns the registry for the /metrics handler.
func (m *Manager) Registry() *prometheus.Registry {
	m.Initialize()
	return m.registry
}

// Initialize registers all metric families (thread-safe, idempotent).
func (m *Manager) Initialize() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return
	}

	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	m.submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loader_submissions_total",
			Help: "Total number of loader job submissions",
		},
		[]string{"result"},
	)

	m.pollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loader_polls_total",
			Help: "Total number of loader status polls by detail status",
		},
		[]string{"detail_status"},
	)

	m.ledgerWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_writes_total",
			Help: "Total number of status ledger upserts",
		},
		[]string{"result"},
	)

	m.ledgerDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ledger_write_duration_seconds",
			Help:    "Duration of status ledger upserts in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	m.systemCPUUsage = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "system_cpu_usage_percent",
			Help: "Current CPU usage percentage",
		},
		[]string{"core"},
	)

	m.systemMemoryUsage = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "system_memory_usage_bytes",
			Help: "Current memory usage in bytes",
		},
		[]string{"type"},
	)

	m.goGoroutines = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "go_goroutines_current",
			Help: "Current number of goroutines",
		},
	)

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.submissionsTotal,
		m.pollsTotal,
		m.ledgerWrites,
		m.ledgerDuration,
		m.systemCPUUsage,
		m.systemMemoryUsage,
		m.goGoroutines,
	)

	m.initialized = true
}

// RecordHTTPRequest records metrics for an HTTP request.
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	m := GetInstance()
	m.Initialize()

	status := strconv.Itoa(statusCode)
	m.httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// RecordSubmission records the outcome of one loader job submission.
func RecordSubmission(result string) {
	m := GetInstance()
	m.Initialize()
	m.submissionsTotal.WithLabelValues(result).Inc()
}

// RecordPoll records one loader status poll by its detail status.
func RecordPoll(detailStatus string) {
	m := GetInstance()
	m.Initialize()
	m.pollsTotal.WithLabelValues(detailStatus).Inc()
}

// RecordLedgerWrite records the outcome and duration of an upsert.
func RecordLedgerWrite(result string, duration time.Duration) {
	m := GetInstance()
	m.Initialize()
	m.ledgerWrites.WithLabelValues(result).Inc()
	m.ledgerDuration.Observe(duration.Seconds())
}
