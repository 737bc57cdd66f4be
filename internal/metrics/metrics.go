// Package metrics exposes Prometheus instrumentation for the engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BooksExtracted counts completed book extractions.
	BooksExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "book_engine_books_extracted_total",
		Help: "Number of books successfully extracted.",
	})

	// ExtractionDuration tracks how long extraction takes.
	ExtractionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "book_engine_extraction_duration_seconds",
		Help:    "Duration of book extraction.",
		Buckets: prometheus.DefBuckets,
	})

	// TurnsResolved counts resolved session turns by consequence event type.
	TurnsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "book_engine_turns_resolved_total",
		Help: "Number of session turns resolved.",
	}, []string{"event_type"})

	// GeneratorFallbacks counts turns that fell back to templated text.
	GeneratorFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "book_engine_generator_fallbacks_total",
		Help: "Number of turns that used the templated fallback.",
	})

	// HTTPRequests counts HTTP requests by method, path, and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "book_engine_http_requests_total",
		Help: "Number of HTTP requests served.",
	}, []string{"method", "path", "status"})
)
