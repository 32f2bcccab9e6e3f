// Package telemetry provides Prometheus metrics for the refresh pipeline.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "brandpulse"

var (
	// RowsTotal tracks harmonizer rows by batch kind and outcome (valid, empty, invalid).
	RowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "harmonizer",
			Name:      "rows_total",
			Help:      "Total number of sheet rows processed by batch kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// RefreshTotal tracks refresh cycles by status
	RefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "runs_total",
			Help:      "Total number of refresh cycles by status",
		},
		[]string{"status"},
	)

	// RefreshDuration tracks refresh cycle duration in seconds
	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "duration_seconds",
			Help:      "Duration of refresh cycles in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	// FetchTotal tracks sheet downloads by tab and status
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "requests_total",
			Help:      "Total number of sheet downloads by tab and status",
		},
		[]string{"tab", "status"},
	)

	DatasetRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "records",
			Help:      "Number of daily records in the current dataset",
		},
	)

	DatasetWarnings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "warnings",
			Help:      "Number of data-quality warnings in the current dataset",
		},
	)

	// DatasetLastUpdated is the unix time of the last successful refresh
	DatasetLastUpdated = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "last_updated_timestamp_seconds",
			Help:      "Unix time of the last successful refresh",
		},
	)

	// ExportedRecords tracks records pushed to the sink
	ExportedRecords = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "records_total",
			Help:      "Total number of daily records pushed to the sink",
		},
	)
)
