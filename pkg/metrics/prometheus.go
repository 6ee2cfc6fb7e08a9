// Package metrics provides Prometheus metrics for the scorecard service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the scorecard service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Round lifecycle
	roundsStarted   prometheus.Counter
	roundsEnded     prometheus.Counter
	roundsDiscarded prometheus.Counter
	activeRounds    prometheus.Gauge

	// Round operations
	scoresRecorded     prometheus.Counter
	scoresEdited       prometheus.Counter
	playersRemoved     prometheus.Counter
	idempotentReplays  prometheus.Counter
	operationErrors    *prometheus.CounterVec
	operationLatency   *prometheus.HistogramVec
	snapshotsRejected  prometheus.Counter
	snapshotsRestored  prometheus.Counter
	websocketClients   prometheus.Gauge
	websocketDropped   prometheus.Counter
	websocketBroadcast prometheus.Counter

	// Snapshot persistence
	snapshotWrites   *prometheus.CounterVec
	snapshotFailures *prometheus.CounterVec
	snapshotLatency  prometheus.Histogram

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueue       prometheus.Counter
	queueDequeue       prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount  prometheus.Gauge
	workerErrors prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

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
		namespace:        "scorecard",
		subsystem:        "rounds",
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

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.roundsStarted = m.counter("started_total", "Total number of rounds started")
	m.roundsEnded = m.counter("ended_total", "Total number of rounds that reached their end")
	m.roundsDiscarded = m.counter("discarded_total", "Total number of rounds discarded before or after ending")
	m.activeRounds = m.gauge("active", "Number of rounds currently held by the service")

	m.scoresRecorded = m.counter("scores_recorded_total", "Total number of hole scores recorded")
	m.scoresEdited = m.counter("scores_edited_total", "Total number of recorded scores edited")
	m.playersRemoved = m.counter("players_removed_total", "Total number of players removed from rounds")
	m.idempotentReplays = m.counter("idempotent_replays_total", "Total number of retried score submissions answered without applying them")
	m.operationErrors = m.counterVec("operation_errors_total", "Rejected round operations by operation and error kind", "operation", "kind")
	m.operationLatency = m.histogramVec("operation_latency_milliseconds", "Round operation latency in milliseconds", "operation")
	m.snapshotsRestored = m.counter("snapshots_restored_total", "Total number of rounds restored from snapshots at startup")
	m.snapshotsRejected = m.counter("snapshots_rejected_total", "Total number of stored snapshots skipped because they failed validation")

	m.websocketClients = m.gauge("websocket_subscribers", "Number of connected scoreboard subscribers")
	m.websocketDropped = m.counter("websocket_dropped_total", "Total number of subscribers dropped for falling behind")
	m.websocketBroadcast = m.counter("websocket_broadcasts_total", "Total number of round updates published to subscribers")

	m.snapshotWrites = m.counterVec("snapshot_writes_total", "Snapshot store operations by kind", "op")
	m.snapshotFailures = m.counterVec("snapshot_failures_total", "Failed snapshot store operations by kind", "op")
	m.snapshotLatency = m.histogram("snapshot_latency_milliseconds", "Snapshot store latency in milliseconds")

	m.queueSize = m.gauge("snapshot_queue_size", "Current number of pending snapshot jobs")
	m.queueCapacity = m.gauge("snapshot_queue_capacity", "Capacity of the snapshot queue")
	m.queueEnqueue = m.counter("snapshot_queue_enqueued_total", "Total number of snapshot jobs enqueued")
	m.queueDequeue = m.counter("snapshot_queue_dequeued_total", "Total number of snapshot jobs dequeued")
	m.queueEnqueueErrors = m.counter("snapshot_queue_enqueue_errors_total", "Total number of snapshot jobs rejected by the queue")

	m.workerCount = m.gauge("snapshot_workers", "Number of running snapshot workers")
	m.workerErrors = m.counter("snapshot_worker_errors_total", "Total number of snapshot jobs that failed in a worker")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		"endpoint", "method", "status_code")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap memory currently allocated in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of running goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "Average garbage collection pause in milliseconds")
}

// RecordRoundStarted increments the rounds started counter.
func RecordRoundStarted() { globalManager.roundsStarted.Inc() }

// RecordRoundEnded increments the rounds ended counter.
func RecordRoundEnded() { globalManager.roundsEnded.Inc() }

// RecordRoundDiscarded increments the rounds discarded counter.
func RecordRoundDiscarded() { globalManager.roundsDiscarded.Inc() }

// UpdateActiveRounds sets the number of rounds held in memory.
func UpdateActiveRounds(count int) { globalManager.activeRounds.Set(float64(count)) }

// RecordScoreRecorded increments the recorded scores counter.
func RecordScoreRecorded() { globalManager.scoresRecorded.Inc() }

// RecordScoreEdited increments the edited scores counter.
func RecordScoreEdited() { globalManager.scoresEdited.Inc() }

// RecordPlayerRemoved increments the removed players counter.
func RecordPlayerRemoved() { globalManager.playersRemoved.Inc() }

// RecordIdempotentReplay increments the replayed submissions counter.
func RecordIdempotentReplay() { globalManager.idempotentReplays.Inc() }

// RecordOperationError counts a rejected operation.
func RecordOperationError(operation, kind string) {
	globalManager.operationErrors.WithLabelValues(operation, kind).Inc()
}

// RecordOperationLatency records how long a round operation took.
func RecordOperationLatency(operation string, latencyMs float64) {
	globalManager.operationLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordSnapshotRestored counts a round restored at startup.
func RecordSnapshotRestored() { globalManager.snapshotsRestored.Inc() }

// RecordSnapshotRejected counts a stored snapshot that failed validation.
func RecordSnapshotRejected() { globalManager.snapshotsRejected.Inc() }

// UpdateWebsocketSubscribers sets the number of connected subscribers.
func UpdateWebsocketSubscribers(count int) { globalManager.websocketClients.Set(float64(count)) }

// RecordWebsocketDropped counts a subscriber dropped for being too slow.
func RecordWebsocketDropped() { globalManager.websocketDropped.Inc() }

// RecordWebsocketBroadcast counts a published round update.
func RecordWebsocketBroadcast() { globalManager.websocketBroadcast.Inc() }

// RecordSnapshotWrite counts a successful snapshot store operation ("save" or "delete").
func RecordSnapshotWrite(op string, latencyMs float64) {
	globalManager.snapshotWrites.WithLabelValues(op).Inc()
	globalManager.snapshotLatency.Observe(latencyMs)
}

// RecordSnapshotFailure counts a failed snapshot store operation.
func RecordSnapshotFailure(op string) { globalManager.snapshotFailures.WithLabelValues(op).Inc() }

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueue.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeue.Inc() }

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateSystemMemoryUsage sets the allocated heap size.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime observes the average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
