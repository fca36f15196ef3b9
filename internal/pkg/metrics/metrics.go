package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Package-level collectors, registered on the default registry and exposed
// through the /metrics endpoint.
var ( //nolint:gochecknoglobals // Prometheus collectors are process-wide
	RefreshTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unipool_refresh_total",
		Help: "Number of portfolio refresh passes started.",
	})

	RefreshFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unipool_refresh_failures_total",
		Help: "Number of portfolio refresh passes that aborted with an error.",
	})

	ReadFieldFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unipool_read_field_failures_total",
		Help: "Per-field failures observed while reading the pool view surface.",
	}, []string{"field"})

	PriceFetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unipool_price_fetch_failures_total",
		Help: "Number of price oracle requests that failed and degraded to zero prices.",
	})

	PortfolioValueUSD = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "unipool_portfolio_value_usd",
		Help: "Total portfolio value in USD from the last completed refresh.",
	})

	TransactionsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unipool_transactions_submitted_total",
		Help: "Transactions submitted to the chain, by action kind.",
	}, []string{"kind"})

	TransactionsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unipool_transactions_failed_total",
		Help: "Transactions that reverted or could not be confirmed, by action kind.",
	}, []string{"kind"})
)
