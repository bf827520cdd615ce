package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Checkout outcomes.
const (
	OutcomeCompleted    = "completed"
	OutcomeWithWarnings = "completed_with_warnings"
	OutcomeRejected     = "rejected"
	OutcomeFailed       = "failed"
)

// Outbox relay outcomes.
const (
	RelayPublished = "published"
	RelayRetried   = "retried"
	RelayAbandoned = "abandoned"
)

// Cache tiers.
const (
	TierRedis  = "redis"
	TierMemory = "memory"
)

// CoreMetrics records checkout, stock, cache, and transaction telemetry.
// A nil *CoreMetrics is valid and records nothing.
type CoreMetrics struct {
	checkouts        *prometheus.CounterVec
	checkoutDuration prometheus.Histogram
	syncFailures     prometheus.Counter
	stockClamps      prometheus.Counter
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	cacheFallbacks   prometheus.Counter
	txRetries        prometheus.Counter
	outboxRelayed    *prometheus.CounterVec
	outboxLag        prometheus.Histogram
}

// NewCoreMetrics registers the core metrics on the provided registerer.
func NewCoreMetrics(reg prometheus.Registerer) *CoreMetrics {
	if reg == nil {
		return &CoreMetrics{}
	}
	m := &CoreMetrics{
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkout_total",
			Help: "Checkouts processed, by outcome.",
		}, []string{"outcome"}),
		checkoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "checkout_duration_seconds",
			Help:    "Duration of checkout requests in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		syncFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventory_sync_failures_total",
			Help: "Per-line stock decrements that failed after an order was persisted.",
		}),
		stockClamps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stock_clamped_total",
			Help: "Stock deltas clamped at zero.",
		}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Cache hits, by tier.",
		}, []string{"tier"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Cache misses, by tier.",
		}, []string{"tier"}),
		cacheFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_fallbacks_total",
			Help: "Switches from the external cache to the in-process tier.",
		}),
		txRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tx_retries_total",
			Help: "Units of work retried after a transient database error.",
		}),
		outboxRelayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "outbox_relayed_total",
			Help: "Outbox rows handled by the relay, by event type and outcome.",
		}, []string{"event_type", "outcome"}),
		outboxLag: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "outbox_publish_lag_seconds",
			Help:    "Seconds between an outbox row being written and its publish.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 15, 60, 300},
		}),
	}
	reg.MustRegister(
		m.checkouts,
		m.checkoutDuration,
		m.syncFailures,
		m.stockClamps,
		m.cacheHits,
		m.cacheMisses,
		m.cacheFallbacks,
		m.txRetries,
		m.outboxRelayed,
		m.outboxLag,
	)
	return m
}

// ObserveCheckout records a checkout outcome and its duration.
func (m *CoreMetrics) ObserveCheckout(outcome string, duration time.Duration) {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.WithLabelValues(normalizeLabel(outcome)).Inc()
	m.checkoutDuration.Observe(duration.Seconds())
}

// IncSyncFailure counts a failed post-order stock decrement.
func (m *CoreMetrics) IncSyncFailure() {
	if m == nil || m.syncFailures == nil {
		return
	}
	m.syncFailures.Inc()
}

// IncStockClamp counts a delta that was clamped at zero.
func (m *CoreMetrics) IncStockClamp() {
	if m == nil || m.stockClamps == nil {
		return
	}
	m.stockClamps.Inc()
}

// IncCacheHit counts a hit on the given tier.
func (m *CoreMetrics) IncCacheHit(tier string) {
	if m == nil || m.cacheHits == nil {
		return
	}
	m.cacheHits.WithLabelValues(normalizeLabel(tier)).Inc()
}

// IncCacheMiss counts a miss on the given tier.
func (m *CoreMetrics) IncCacheMiss(tier string) {
	if m == nil || m.cacheMisses == nil {
		return
	}
	m.cacheMisses.WithLabelValues(normalizeLabel(tier)).Inc()
}

// IncCacheFallback counts a switch to the in-process tier.
func (m *CoreMetrics) IncCacheFallback() {
	if m == nil || m.cacheFallbacks == nil {
		return
	}
	m.cacheFallbacks.Inc()
}

// IncTxRetry counts a retried unit of work.
func (m *CoreMetrics) IncTxRetry() {
	if m == nil || m.txRetries == nil {
		return
	}
	m.txRetries.Inc()
}

// IncOutboxRelay counts one relayed outbox row.
func (m *CoreMetrics) IncOutboxRelay(eventType, outcome string) {
	if m == nil || m.outboxRelayed == nil {
		return
	}
	m.outboxRelayed.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}

// ObserveOutboxLag records how long a row waited before it was published.
func (m *CoreMetrics) ObserveOutboxLag(lag time.Duration) {
	if m == nil || m.outboxLag == nil || lag < 0 {
		return
	}
	m.outboxLag.Observe(lag.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
