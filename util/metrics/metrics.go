package metrics

import "github.com/prometheus/client_golang/prometheus"

// RegisterPrometheusMetrics register all prometheus metrics with the global
// metrics handler.
func RegisterPrometheusMetrics() {
	prometheus.Register(CommitTimeSeconds)
	prometheus.Register(CumulativeCommitTime)
	prometheus.Register(CumulativeTxns)
	prometheus.Register(CommittedTxnsPerBlock)
	prometheus.Register(CurrentHeightGauge)
	prometheus.Register(AlreadyStoredCounter)
	prometheus.Register(RollbackCounter)
}

// Prometheus metric names broken out for reuse.
const (
	CommitTimeName            = "average_commit_time_sec"
	CumulativeCommitTimeName  = "cumulative_commit_time_sec"
	CommittedTxnsPerBlockName = "average_committed_tx_per_block"
	CumulativeTxnsName        = "cumulative_committed_tx"
	CurrentHeightGaugeName    = "current_height"
	AlreadyStoredName         = "already_stored_total"
	RollbackName              = "rollbacks_total"
)

// Initialize the prometheus objects.
var (
	// AllMetricNames is a reference for all the custom metric names.
	AllMetricNames = []string{
		CommitTimeName,
		CumulativeCommitTimeName,
		CommittedTxnsPerBlockName,
		CumulativeTxnsName,
		CurrentHeightGaugeName,
		AlreadyStoredName,
		RollbackName}

	CommitTimeSeconds = prometheus.NewSummary(
		prometheus.SummaryOpts{
			Subsystem: "ledgerdb",
			Name:      CommitTimeName,
			Help:      "Total time in seconds to store a block and its transactions.",
		})

	CumulativeCommitTime = prometheus.NewCounter(
		prometheus.CounterOpts{
			Subsystem: "ledgerdb",
			Name:      CumulativeCommitTimeName,
			Help:      "Total time in seconds spent committing blocks.",
		})

	CommittedTxnsPerBlock = prometheus.NewSummary(
		prometheus.SummaryOpts{
			Subsystem: "ledgerdb",
			Name:      CommittedTxnsPerBlockName,
			Help:      "Transactions per block.",
		})

	CumulativeTxns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Subsystem: "ledgerdb",
			Name:      CumulativeTxnsName,
			Help:      "Cumulative transactions committed.",
		})

	CurrentHeightGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Subsystem: "ledgerdb",
			Name:      CurrentHeightGaugeName,
			Help:      "The most recent block height committed.",
		})

	// AlreadyStoredCounter counts idempotent inserts that found the record
	// already stored, by collection.
	AlreadyStoredCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: "ledgerdb",
			Name:      AlreadyStoredName,
			Help:      "Records that were already stored when inserted again.",
		}, []string{"collection"})

	RollbackCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Subsystem: "ledgerdb",
			Name:      RollbackName,
			Help:      "Interrupted commits rolled back at startup.",
		})
)
