package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RPCFailures counts recorded endpoint failures per chain and endpoint URL.
	RPCFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "defolio_rpc_failures_total",
		Help: "Recorded RPC endpoint failures.",
	}, []string{"chain", "endpoint"})

	// RPCRotations counts endpoint rotations per chain.
	RPCRotations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "defolio_rpc_rotations_total",
		Help: "RPC endpoint rotations triggered by sustained failures.",
	}, []string{"chain"})

	// AdapterFailures counts (chain, adapter) combinations that exhausted retries.
	AdapterFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "defolio_adapter_failures_total",
		Help: "Protocol adapter calls that failed after all retries.",
	}, []string{"chain", "protocol"})

	// AggregationDuration observes end-to-end portfolio aggregation latency.
	AggregationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "defolio_aggregation_duration_seconds",
		Help:    "Portfolio aggregation duration.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	})
)
