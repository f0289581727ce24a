// Package metrics provides Prometheus metrics for the termstake service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ledger metrics
	stakesCreated  prometheus.Counter
	termsMarked    prometheus.Counter
	settlements    *prometheus.CounterVec
	payoutTotal    *prometheus.CounterVec
	activeStakes   prometheus.Gauge

	// Bonus pool metrics
	poolBalance   prometheus.Gauge
	poolCredits   prometheus.Counter
	poolDebits    prometheus.Counter
	poolShortfall prometheus.Counter

	// Governance metrics
	proposalsCreated  prometheus.Counter
	proposalsExecuted *prometheus.CounterVec
	adminCount        prometheus.Gauge

	// Sequencer metrics
	commandQueueDepth prometheus.Gauge
	commandLatency    prometheus.Histogram
	commandRejections prometheus.Counter

	// Chain metrics
	chainHeight prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorsByComponent *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "termstake",
		subsystem:        "ledger",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.stakesCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stakes_created_total",
		Help:      "Total number of stakes created",
	})

	m.termsMarked = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "terms_marked_total",
		Help:      "Total number of terms marked learned",
	})

	m.settlements = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "settlements_total",
			Help:      "Total number of terminal stake settlements by outcome",
		},
		[]string{"outcome"},
	)

	m.payoutTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "payout_microunits_total",
			Help:      "Total payout volume in microunits by outcome",
		},
		[]string{"outcome"},
	)

	m.activeStakes = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_stakes",
		Help:      "Current number of stakes in Active status",
	})

	m.poolBalance = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pool_balance_microunits",
		Help:      "Current bonus pool balance in microunits",
	})

	m.poolCredits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pool_credits_microunits_total",
		Help:      "Lifetime microunits credited to the bonus pool",
	})

	m.poolDebits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pool_debits_microunits_total",
		Help:      "Lifetime microunits debited from the bonus pool",
	})

	m.poolShortfall = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pool_shortfall_total",
		Help:      "Total number of settlements rejected for insufficient pool balance",
	})

	m.proposalsCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "proposals_created_total",
		Help:      "Total number of governance proposals created",
	})

	m.proposalsExecuted = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "proposals_executed_total",
			Help:      "Total number of governance proposals executed by action kind",
		},
		[]string{"action"},
	)

	m.adminCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "admin_count",
		Help:      "Current number of governance admins",
	})

	m.commandQueueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "command_queue_depth",
		Help:      "Current depth of the sequencer command queue",
	})

	m.commandLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "command_latency_milliseconds",
		Help:      "Histogram of end-to-end command latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.commandRejections = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "command_rejections_total",
		Help:      "Total number of commands rejected for backpressure",
	})

	m.chainHeight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "chain_height",
		Help:      "Current logical block height",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_total",
			Help:      "Total errors by component and kind",
		},
		[]string{"component", "kind"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_usage_bytes",
		Help:      "Current heap allocation in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutines",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "gc_pause_ms",
		Help:      "Average garbage collection pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Package-level helpers recording against the global manager.

// RecordStakeCreated increments the stakes-created counter.
func RecordStakeCreated() {
	globalManager.stakesCreated.Inc()
}

// RecordTermMarked increments the terms-marked counter.
func RecordTermMarked() {
	globalManager.termsMarked.Inc()
}

// RecordSettlement records a terminal settlement and its payout volume.
// Outcome is one of "bonus", "penalty", "early_exit".
func RecordSettlement(outcome string, payout uint64) {
	globalManager.settlements.WithLabelValues(outcome).Inc()
	globalManager.payoutTotal.WithLabelValues(outcome).Add(float64(payout))
}

// UpdateActiveStakes sets the active stake gauge.
func UpdateActiveStakes(count int) {
	globalManager.activeStakes.Set(float64(count))
}

// UpdatePoolBalance sets the bonus pool balance gauge.
func UpdatePoolBalance(balance uint64) {
	globalManager.poolBalance.Set(float64(balance))
}

// RecordPoolCredit adds to the lifetime pool credit counter.
func RecordPoolCredit(amount uint64) {
	globalManager.poolCredits.Add(float64(amount))
}

// RecordPoolDebit adds to the lifetime pool debit counter.
func RecordPoolDebit(amount uint64) {
	globalManager.poolDebits.Add(float64(amount))
}

// RecordPoolShortfall counts a settlement rejected for pool exhaustion.
func RecordPoolShortfall() {
	globalManager.poolShortfall.Inc()
}

// RecordProposalCreated increments the proposals-created counter.
func RecordProposalCreated() {
	globalManager.proposalsCreated.Inc()
}

// RecordProposalExecuted counts an executed proposal by action kind.
func RecordProposalExecuted(action string) {
	globalManager.proposalsExecuted.WithLabelValues(action).Inc()
}

// UpdateAdminCount sets the governance admin gauge.
func UpdateAdminCount(count int) {
	globalManager.adminCount.Set(float64(count))
}

// UpdateCommandQueueDepth sets the sequencer queue depth gauge.
func UpdateCommandQueueDepth(depth int) {
	globalManager.commandQueueDepth.Set(float64(depth))
}

// RecordCommandLatency records end-to-end command latency.
func RecordCommandLatency(latencyMs float64) {
	globalManager.commandLatency.Observe(latencyMs)
}

// RecordCommandRejection counts a command rejected for backpressure.
func RecordCommandRejection() {
	globalManager.commandRejections.Inc()
}

// UpdateChainHeight sets the logical block height gauge.
func UpdateChainHeight(height uint64) {
	globalManager.chainHeight.Set(float64(height))
}

// RecordHTTPRequest records an HTTP request by endpoint, method, and status.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordError counts an error by component and kind.
func RecordError(component, kind string) {
	globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
}

// UpdateSystemMemoryUsage sets the heap allocation gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records an average GC pause observation.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
