package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the stack pipeline.
type Metrics struct {
	Registry            *prometheus.Registry
	CapturesTotal       *prometheus.CounterVec
	BooksRecognized     prometheus.Counter
	VisionCallDuration  prometheus.Histogram
	RecognitionCacheHit prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	captures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackscan_captures_total",
			Help: "Total stack capture requests by outcome.",
		},
		[]string{"outcome"},
	)
	booksRecognized := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stackscan_books_recognized_total",
			Help: "Total book records appended from recognized stacks.",
		},
	)
	visionDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stackscan_vision_call_duration_seconds",
			Help:    "Latency of vision model calls.",
			Buckets: prometheus.DefBuckets,
		},
	)
	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stackscan_recognition_cache_hits_total",
			Help: "Captures answered from the recognition cache.",
		},
	)

	registry.MustRegister(captures, booksRecognized, visionDuration, cacheHits)

	return &Metrics{
		Registry:            registry,
		CapturesTotal:       captures,
		BooksRecognized:     booksRecognized,
		VisionCallDuration:  visionDuration,
		RecognitionCacheHit: cacheHits,
	}
}

// ObserveVisionCall records the duration of one vision model round trip.
func (m *Metrics) ObserveVisionCall(start time.Time) {
	m.VisionCallDuration.Observe(time.Since(start).Seconds())
}
