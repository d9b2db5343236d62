// Package metrics provides Prometheus metrics for the indexing pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DocumentsIndexed counts index upserts by source and outcome
	// (ok, empty, failed).
	DocumentsIndexed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_documents_indexed_total",
			Help: "Total number of documents written to the full-text index",
		},
		[]string{"source", "result"},
	)

	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashboard_extraction_duration_seconds",
			Help:    "Duration of text extraction per document in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"method"},
	)

	// OCRRuns counts OCR attempts by strategy (copy, ocrmypdf, raster, text)
	// and result.
	OCRRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_ocr_runs_total",
			Help: "Total number of OCR attempts",
		},
		[]string{"strategy", "result"},
	)

	SearchQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_search_queries_total",
			Help: "Total number of search queries by the phase that produced results",
		},
		[]string{"phase"},
	)

	EntityRebuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_entity_rebuilds_total",
			Help: "Total number of entity registry rebuilds",
		},
		[]string{"result"},
	)

	EntitiesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashboard_entities",
			Help: "Number of entities after the last rebuild",
		},
	)

	EventHandlerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_event_handler_failures_total",
			Help: "Total number of event handlers that returned an error or panicked",
		},
		[]string{"event"},
	)
)
