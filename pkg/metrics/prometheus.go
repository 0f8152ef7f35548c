// Package metrics provides Prometheus metrics for the gigmatch service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the gigmatch service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Matching
	performancesScored *prometheus.CounterVec
	scoringLatency     prometheus.Histogram
	scoreCacheHits     prometheus.Counter
	scoreCacheMisses   prometheus.Counter
	scoreCacheSize     prometheus.Gauge

	// Scheduling
	gridsBuilt           prometheus.Counter
	itinerariesGenerated prometheus.Counter
	itinerarySlots       prometheus.Histogram
	itineraryLatency     prometheus.Histogram
	conflictsDetected    prometheus.Counter
	calendarExports      prometheus.Counter

	// Catalog
	festivalsTotal      prometheus.Gauge
	festivalUpserts     prometheus.Counter
	catalogQueryLatency prometheus.Histogram

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gigmatch",
		subsystem:        "engine",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: buckets,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	m.performancesScored = m.counterVec("performances_scored_total",
		"Performances scored, by resulting match type", "match_type")
	m.scoringLatency = m.histogram("scoring_latency_milliseconds",
		"Time to score one lineup against one profile in milliseconds", m.histogramBuckets)
	m.scoreCacheHits = m.counter("score_cache_hits_total", "Score cache hits")
	m.scoreCacheMisses = m.counter("score_cache_misses_total", "Score cache misses")
	m.scoreCacheSize = m.gauge("score_cache_entries", "Entries held by the score cache")

	m.gridsBuilt = m.counter("grids_built_total", "Schedule grids built")
	m.itinerariesGenerated = m.counter("itineraries_generated_total", "Itineraries generated")
	m.itinerarySlots = m.histogram("itinerary_slots",
		"Performances admitted per itinerary", []float64{0, 1, 2, 4, 8, 16, 32, 64})
	m.itineraryLatency = m.histogram("itinerary_latency_milliseconds",
		"Time to generate one itinerary in milliseconds", m.histogramBuckets)
	m.conflictsDetected = m.counter("conflicts_detected_total", "Schedule conflicts reported")
	m.calendarExports = m.counter("calendar_exports_total", "Itineraries exported as iCalendar")

	m.festivalsTotal = m.gauge("festivals_total", "Festivals held in the catalog")
	m.festivalUpserts = m.counter("festival_upserts_total", "Festival catalog writes")
	m.catalogQueryLatency = m.histogram("catalog_query_latency_milliseconds",
		"Festival catalog lookup latency in milliseconds", m.histogramBuckets)

	m.workerCount = m.gauge("worker_count", "Configured scoring workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Scoring workers currently busy")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds",
		"Time a worker spends on one performance in milliseconds", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Scoring batches aborted")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		ConstLabels: m.constLabels,
		Buckets:     []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordPerformanceScored counts one scored performance under its match type.
func RecordPerformanceScored(matchType string) {
	globalManager.performancesScored.WithLabelValues(matchType).Inc()
}

// RecordScoringLatency records lineup scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordScoreCacheHit increments the score cache hit counter.
func RecordScoreCacheHit() {
	globalManager.scoreCacheHits.Inc()
}

// RecordScoreCacheMiss increments the score cache miss counter.
func RecordScoreCacheMiss() {
	globalManager.scoreCacheMisses.Inc()
}

// UpdateScoreCacheSize sets the number of cached scores.
func UpdateScoreCacheSize(size int64) {
	globalManager.scoreCacheSize.Set(float64(size))
}

// RecordGridBuilt increments the grids built counter.
func RecordGridBuilt() {
	globalManager.gridsBuilt.Inc()
}

// RecordItineraryGenerated records one itinerary, its admitted slot count and
// how long it took.
func RecordItineraryGenerated(slots int, latencyMs float64) {
	globalManager.itinerariesGenerated.Inc()
	globalManager.itinerarySlots.Observe(float64(slots))
	globalManager.itineraryLatency.Observe(latencyMs)
}

// RecordConflictsDetected adds n reported conflicts.
func RecordConflictsDetected(n int) {
	globalManager.conflictsDetected.Add(float64(n))
}

// RecordCalendarExport increments the calendar export counter.
func RecordCalendarExport() {
	globalManager.calendarExports.Inc()
}

// UpdateFestivalsTotal sets the number of festivals in the catalog.
func UpdateFestivalsTotal(count int) {
	globalManager.festivalsTotal.Set(float64(count))
}

// RecordFestivalUpsert increments the catalog write counter.
func RecordFestivalUpsert() {
	globalManager.festivalUpserts.Inc()
}

// RecordCatalogQueryLatency records a catalog lookup latency in milliseconds.
func RecordCatalogQueryLatency(latencyMs float64) {
	globalManager.catalogQueryLatency.Observe(latencyMs)
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records per-item worker latency in milliseconds.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
