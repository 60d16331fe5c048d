// Package metrics registers the bot's Prometheus instruments:
//
//   - bot_scans_total                      – completed daily scans
//   - bot_scan_duration_seconds           – scan wall time
//   - bot_scan_universe_size              – raw universe size at last scan
//   - bot_scan_exclusions_total{reason}   – symbols dropped during annotation
//   - bot_watchlist_size                  – entries in the published watchlist
//   - bot_watchlist_reads_total{result}   – cache reads split hit/miss
//   - bot_risk_decisions_total{outcome,reason} – governor verdicts
//   - bot_orders_total{side}              – orders forwarded to the broker
//   - bot_account_fetch_failures_total    – account snapshot fetch failures
//   - bot_equity_usd                      – last seen account equity
//
// Served by the host process at /metrics in Prometheus text format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_scans_total",
		Help: "Completed daily momentum scans",
	})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bot_scan_duration_seconds",
		Help:    "Daily scan wall time",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	})

	ScanUniverseSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bot_scan_universe_size",
		Help: "Raw universe size at the last scan",
	})

	ScanExclusions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_scan_exclusions_total",
		Help: "Symbols excluded during annotation, by reason",
	}, []string{"reason"})

	WatchlistSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bot_watchlist_size",
		Help: "Entries in the most recently published watchlist",
	})

	WatchlistReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_watchlist_reads_total",
		Help: "Watchlist store reads split by hit/miss",
	}, []string{"result"})

	RiskDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_risk_decisions_total",
		Help: "Risk governor verdicts by outcome and reject reason",
	}, []string{"outcome", "reason"})

	OrdersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_orders_total",
		Help: "Orders forwarded to the broker",
	}, []string{"side"})

	AccountFetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_account_fetch_failures_total",
		Help: "Account snapshot fetch failures",
	})

	Equity = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bot_equity_usd",
		Help: "Last seen account equity in USD",
	})
)
