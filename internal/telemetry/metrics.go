package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EngineRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analytics_engine_runs_total",
		Help: "Total number of analytics engine runs",
	}, []string{"operation"})

	EngineRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "analytics_engine_run_duration_seconds",
		Help:    "Duration of analytics engine runs",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	SnapshotLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "analytics_snapshot_load_duration_seconds",
		Help:    "Duration of inventory snapshot fan-out loads",
		Buckets: prometheus.DefBuckets,
	})

	SafetyStockWritesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "safety_stock_writes_total",
		Help: "Total number of applied safety stock write-backs",
	})

	SafetyStockWriteFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "safety_stock_write_failures_total",
		Help: "Total number of failed safety stock write-backs",
	})

	AnomaliesDetectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anomalies_detected_total",
		Help: "Total number of anomalies detected",
	}, []string{"type", "severity"})
)
