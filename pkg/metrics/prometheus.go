// Package metrics provides Prometheus metrics for the teamforge service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Team balancing
	balanceRuns     *prometheus.CounterVec
	balanceDuration prometheus.Histogram
	teamSpread      prometheus.Gauge

	// Draft sessions
	draftsStarted   prometheus.Counter
	draftsCompleted prometheus.Counter
	activeDrafts    prometheus.Gauge
	picks           prometheus.Counter
	skips           *prometheus.CounterVec
	draftRejections *prometheus.CounterVec

	// XP pipeline
	xpEventsProcessed prometheus.Counter
	xpEventsDuplicate prometheus.Counter
	scoringErrors     prometheus.Counter
	scoringLatency    prometheus.Histogram
	totalParticipants prometheus.Gauge

	// Repository
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerIdleCount         prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Archive
	archiveWrites *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "teamforge",
		subsystem:        "classroom",
		histogramBuckets: prometheus.DefBuckets,
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
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.balanceRuns = m.counterVec("balance_runs_total", "Team balancing runs by outcome", "outcome")
	m.balanceDuration = m.histogram("balance_duration_milliseconds", "Time spent forming teams", m.histogramBuckets)
	m.teamSpread = m.gauge("team_strength_spread", "Max minus min average strength of the last formation")

	m.draftsStarted = m.counter("drafts_started_total", "Draft sessions created")
	m.draftsCompleted = m.counter("drafts_completed_total", "Draft sessions that reached completed")
	m.activeDrafts = m.gauge("drafts_active", "Draft sessions currently stored")
	m.picks = m.counter("draft_picks_total", "Accepted draft picks")
	m.skips = m.counterVec("draft_skips_total", "Skipped draft turns", "reason")
	m.draftRejections = m.counterVec("draft_rejections_total", "Rejected draft operations by error kind", "kind")

	m.xpEventsProcessed = m.counter("xp_events_processed_total", "XP events scored and applied")
	m.xpEventsDuplicate = m.counter("xp_events_duplicate_total", "XP events dropped as duplicates")
	m.scoringErrors = m.counter("scoring_errors_total", "XP scoring failures")
	m.scoringLatency = m.histogram("scoring_latency_milliseconds", "XP scoring latency", m.histogramBuckets)
	m.totalParticipants = m.gauge("participants_total", "Participants on the XP leaderboard")

	m.repositoryUpdateLatency = m.histogram("repository_update_latency_milliseconds", "XP store write latency", m.histogramBuckets)
	m.repositoryQueryLatency = m.histogram("repository_query_latency_milliseconds", "XP store read latency", m.histogramBuckets)

	m.queueSize = m.gauge("queue_size", "XP events waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "XP queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "XP queue fill ratio")
	m.queueEnqueued = m.counter("queue_enqueued_total", "XP events enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "XP events dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "XP events rejected by a full or closed queue")

	m.workerCount = m.gauge("worker_count", "XP workers started")
	m.workerActiveCount = m.gauge("worker_active_count", "XP workers processing an event")
	m.workerIdleCount = m.gauge("worker_idle_count", "XP workers waiting for events")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Per-event worker latency", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Events a worker failed to apply")

	m.archiveWrites = m.counterVec("archive_writes_total", "Archive writes by record kind and outcome", "kind", "outcome")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and type", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap in use")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "Last GC pause",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Balancing.

// RecordBalanceRun counts one balancing run; outcome is "ok" or an error kind.
func RecordBalanceRun(outcome string) {
	globalManager.balanceRuns.WithLabelValues(outcome).Inc()
}

// RecordBalanceDuration records how long a balancing run took.
func RecordBalanceDuration(ms float64) {
	globalManager.balanceDuration.Observe(ms)
}

// UpdateTeamSpread sets the strength spread of the latest formation.
func UpdateTeamSpread(spread float64) {
	globalManager.teamSpread.Set(spread)
}

// Drafts.

// RecordDraftStarted increments the started drafts counter.
func RecordDraftStarted() {
	globalManager.draftsStarted.Inc()
}

// RecordDraftCompleted increments the completed drafts counter.
func RecordDraftCompleted() {
	globalManager.draftsCompleted.Inc()
}

// UpdateActiveDrafts sets the number of stored drafts.
func UpdateActiveDrafts(count int) {
	globalManager.activeDrafts.Set(float64(count))
}

// RecordPick increments the accepted picks counter.
func RecordPick() {
	globalManager.picks.Inc()
}

// RecordSkip counts a skipped turn; reason is "timeout" or "manual".
func RecordSkip(reason string) {
	globalManager.skips.WithLabelValues(reason).Inc()
}

// RecordDraftRejection counts a rejected draft operation.
func RecordDraftRejection(kind string) {
	globalManager.draftRejections.WithLabelValues(kind).Inc()
}

// XP.

// RecordXPEventProcessed increments the processed XP events counter.
func RecordXPEventProcessed() {
	globalManager.xpEventsProcessed.Inc()
}

// RecordXPEventDuplicate increments the duplicate XP events counter.
func RecordXPEventDuplicate() {
	globalManager.xpEventsDuplicate.Inc()
}

// RecordScoringError increments the scoring errors counter.
func RecordScoringError() {
	globalManager.scoringErrors.Inc()
}

// RecordScoringLatency records scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// UpdateTotalParticipants sets the leaderboard size.
func UpdateTotalParticipants(count int) {
	globalManager.totalParticipants.Set(float64(count))
}

// Repository.

// RecordRepositoryUpdateLatency records XP store write latency.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records XP store read latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// Queue.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Workers.

// UpdateWorkerCount sets the number of started workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// UpdateWorkerIdleCount sets the number of idle workers.
func UpdateWorkerIdleCount(count int) {
	globalManager.workerIdleCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records per-event worker latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// Archive.

// RecordArchiveWrite counts an archive write; kind is "teams" or "draft".
func RecordArchiveWrite(kind, outcome string) {
	globalManager.archiveWrites.WithLabelValues(kind, outcome).Inc()
}

// HTTP.

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
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// System.

// UpdateSystemMemoryUsage sets the heap usage in bytes.
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
