package observability

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RPCMetrics wraps the collectors tracking JSON-RPC handler activity.
type RPCMetrics struct {
	requests  *prometheus.CounterVec
	errors    *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	throttles *prometheus.CounterVec
}

// LedgerMetrics captures the health of the reward ledger itself: points
// minted, points burned through redemption, and the live supply.
type LedgerMetrics struct {
	minted   prometheus.Counter
	redeemed prometheus.Counter
	supply   prometheus.Gauge
}

var (
	rpcMetricsOnce sync.Once
	rpcRegistry    *RPCMetrics

	ledgerMetricsOnce sync.Once
	ledgerRegistry    *LedgerMetrics
)

// RPC returns the lazily-initialised metrics registry used to record
// JSON-RPC request activity.
func RPC() *RPCMetrics {
	rpcMetricsOnce.Do(func() {
		rpcRegistry = &RPCMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "ledger",
				Subsystem: "rpc",
				Name:      "requests_total",
				Help:      "Total JSON-RPC requests segmented by method and outcome.",
			}, []string{"method", "outcome"}),
			errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "ledger",
				Subsystem: "rpc",
				Name:      "errors_total",
				Help:      "Total JSON-RPC errors segmented by method and error code.",
			}, []string{"method", "code"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "ledger",
				Subsystem: "rpc",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for JSON-RPC handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method"}),
			throttles: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "ledger",
				Subsystem: "rpc",
				Name:      "throttles_total",
				Help:      "Count of requests rejected due to rate limiting.",
			}, []string{"reason"}),
		}
		prometheus.MustRegister(
			rpcRegistry.requests,
			rpcRegistry.errors,
			rpcRegistry.latency,
			rpcRegistry.throttles,
		)
	})
	return rpcRegistry
}

// Observe records the outcome of a JSON-RPC call. A zero code means the call
// succeeded; any non-zero code is counted as an error.
func (m *RPCMetrics) Observe(method string, code int, duration time.Duration) {
	if m == nil {
		return
	}
	method = strings.TrimSpace(method)
	if method == "" {
		method = "unknown"
	}
	outcome := "success"
	if code != 0 {
		outcome = "error"
		m.errors.WithLabelValues(method, fmt.Sprintf("%d", code)).Inc()
	}
	m.requests.WithLabelValues(method, outcome).Inc()
	m.latency.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordThrottle increments the throttle counter. Reasons should be stable
// strings such as "rate_limit" so dashboards remain consistent.
func (m *RPCMetrics) RecordThrottle(reason string) {
	if m == nil {
		return
	}
	if reason = strings.TrimSpace(reason); reason == "" {
		reason = "unspecified"
	}
	m.throttles.WithLabelValues(reason).Inc()
}

// Ledger returns the singleton metrics registry for ledger state changes.
func Ledger() *LedgerMetrics {
	ledgerMetricsOnce.Do(func() {
		ledgerRegistry = &LedgerMetrics{
			minted: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "ledger",
				Subsystem: "rewards",
				Name:      "points_minted_total",
				Help:      "Total points minted across all contribution rewards.",
			}),
			redeemed: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "ledger",
				Subsystem: "rewards",
				Name:      "points_redeemed_total",
				Help:      "Total points burned through benefit redemptions.",
			}),
			supply: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "ledger",
				Subsystem: "rewards",
				Name:      "supply_points",
				Help:      "Current total point supply.",
			}),
		}
		prometheus.MustRegister(
			ledgerRegistry.minted,
			ledgerRegistry.redeemed,
			ledgerRegistry.supply,
		)
	})
	return ledgerRegistry
}

// RecordMint adds minted points to the counter and supply gauge.
func (m *LedgerMetrics) RecordMint(points uint64) {
	if m == nil || points == 0 {
		return
	}
	m.minted.Add(float64(points))
	m.supply.Add(float64(points))
}

// RecordRedemption adds burned points to the counter and lowers the supply gauge.
func (m *LedgerMetrics) RecordRedemption(points uint64) {
	if m == nil || points == 0 {
		return
	}
	m.redeemed.Add(float64(points))
	m.supply.Sub(float64(points))
}

// SetSupply pins the supply gauge to an absolute value, used at startup to
// seed the gauge from persisted state.
func (m *LedgerMetrics) SetSupply(points uint64) {
	if m == nil {
		return
	}
	m.supply.Set(float64(points))
}
