// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Scan metrics
	AccountsFetched    prometheus.Counter
	AccountsDecoded    prometheus.Counter
	DecodeFailures     *prometheus.CounterVec
	ZeroPriceBinArrays prometheus.Counter
	ScanRunsTotal      *prometheus.CounterVec
	ScanDuration       prometheus.Histogram
	LastScanSlot       prometheus.Gauge

	// Latency metrics
	RPCCallLatency *prometheus.HistogramVec

	// Health metrics
	LastSuccessfulScan prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "dlmm_binscan"
	}
	factory := promauto.With(reg)

	return &Metrics{
		AccountsFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "accounts_fetched_total",
			Help:      "Total number of program accounts returned by the RPC node",
		}),
		AccountsDecoded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "accounts_decoded_total",
			Help:      "Total number of accounts decoded as bin arrays",
		}),
		DecodeFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "decode_failures_total",
			Help:      "Total number of accounts that failed to decode by reason",
		}, []string{"reason"}),
		ZeroPriceBinArrays: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "zero_price_bin_arrays_total",
			Help:      "Total number of bin arrays holding at least one zero price bin",
		}),
		ScanRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "runs_total",
			Help:      "Total number of scan runs by status",
		}, []string{"status"}),
		ScanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "duration_seconds",
			Help:      "Scan execution duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 180, 300},
		}),
		LastScanSlot: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "last_slot",
			Help:      "Context slot of the last scan, 0 when unknown",
		}),

		RPCCallLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		LastSuccessfulScan: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_scan_timestamp",
			Help:      "Unix timestamp of last successful scan",
		}),
	}
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", prometheus.DefaultRegisterer)

// WriteTextfile writes every metric in the default registry to path in the
// text exposition format, for the node exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

// RecordAccountsFetched adds n fetched accounts.
func RecordAccountsFetched(n int) {
	DefaultMetrics.AccountsFetched.Add(float64(n))
}

// RecordAccountDecoded increments the decoded accounts counter.
func RecordAccountDecoded() {
	DefaultMetrics.AccountsDecoded.Inc()
}

// RecordDecodeFailure records an account that could not be decoded.
func RecordDecodeFailure(reason string) {
	DefaultMetrics.DecodeFailures.WithLabelValues(reason).Inc()
}

// RecordZeroPrice increments the zero price bin arrays counter.
func RecordZeroPrice() {
	DefaultMetrics.ZeroPriceBinArrays.Inc()
}

// RecordScanRun records a finished scan.
func RecordScanRun(status string, durationSeconds float64, slot int64, finishedUnix int64) {
	DefaultMetrics.ScanRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.ScanDuration.Observe(durationSeconds)
	if status == "success" {
		DefaultMetrics.LastScanSlot.Set(float64(slot))
		DefaultMetrics.LastSuccessfulScan.Set(float64(finishedUnix))
	}
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}
