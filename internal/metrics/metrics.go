package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChecksTotal tracks health evaluations by mode and outcome
	ChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodehealth_checks_total",
			Help: "Total number of health checks served",
		},
		[]string{"node", "mode", "verdict"},
	)

	// RPCCallsTotal tracks outgoing calls per provider and method
	RPCCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodehealth_rpc_calls_total",
			Help: "Total number of RPC calls",
		},
		[]string{"provider", "method"},
	)

	// RPCErrorsTotal tracks failed outgoing calls per provider and method
	RPCErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodehealth_rpc_errors_total",
			Help: "Total number of RPC errors",
		},
		[]string{"provider", "method"},
	)

	// RPCLatency tracks RPC call latency
	RPCLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nodehealth_rpc_latency_seconds",
			Help:    "RPC call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "method"},
	)

	// LocalBlock tracks the local node's chain head
	LocalBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nodehealth_local_block",
			Help: "Latest block height reported by the local node",
		},
		[]string{"node"},
	)

	// NetworkBlock tracks the reference chain head per network
	NetworkBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nodehealth_network_block",
			Help: "Latest block height reported by the network reference",
		},
		[]string{"network"},
	)

	// SyncCurrentBlock tracks currentBlock of the last syncing status
	SyncCurrentBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nodehealth_sync_current_block",
			Help: "currentBlock of the last observed syncing status",
		},
		[]string{"node"},
	)

	// FrozenSeconds tracks how long the sync has shown no progress
	FrozenSeconds = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nodehealth_sync_frozen_seconds",
			Help: "Seconds since sync progress was last observed",
		},
		[]string{"node"},
	)

	// ReferenceCacheTotal tracks network reference cache lookups
	ReferenceCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodehealth_reference_cache_total",
			Help: "Network reference cache lookups by result",
		},
		[]string{"result"},
	)

	// JournalErrorsTotal tracks verdicts that could not be journaled
	JournalErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nodehealth_journal_errors_total",
			Help: "Total number of verdicts that failed to be recorded",
		},
	)

	// DBConnectionPoolUsage tracks the journal's connection pool usage
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nodehealth_db_connection_pool_usage_percent",
			Help: "Percentage of the journal connection pool in use",
		},
	)

	// ProviderAvailable tracks whether an endpoint is considered available (1) or not (0)
	ProviderAvailable = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nodehealth_provider_available",
			Help: "Whether the endpoint is available: error rate at most 50%",
		},
		[]string{"provider"},
	)

	// ProviderErrorRate tracks the fraction of failed calls per endpoint
	ProviderErrorRate = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nodehealth_provider_error_rate",
			Help: "Fraction of calls to the endpoint that failed",
		},
		[]string{"provider"},
	)

	// ProviderAverageLatency tracks the mean latency of successful calls per endpoint
	ProviderAverageLatency = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nodehealth_provider_average_latency_seconds",
			Help: "Mean latency of successful calls to the endpoint",
		},
		[]string{"provider"},
	)

	// ProviderLastSuccess tracks when an endpoint last answered successfully
	ProviderLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nodehealth_provider_last_success_timestamp_seconds",
			Help: "Unix time of the last successful call to the endpoint",
		},
		[]string{"provider"},
	)
)
