// Package observability provides Prometheus metrics for the DigitNet-Go service.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry *prometheus.Registry

	PredictionTotal      *prometheus.CounterVec
	FeedbackTotal        *prometheus.CounterVec
	PredictionConfidence prometheus.Histogram
	InferenceDuration    prometheus.Histogram
	ModelLoadedGauge     prometheus.Gauge
}

// NewMetrics creates a new instance of Metrics, initializing and registering
// all metric collectors.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	m := &Metrics{registry: registry}

	m.PredictionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digitnet_predictions_total",
			Help: "Total number of prediction requests partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	m.FeedbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digitnet_feedback_total",
			Help: "Total number of feedback requests partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	m.PredictionConfidence = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "digitnet_prediction_confidence",
			Help:    "Confidence distribution of successful predictions.",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	m.InferenceDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "digitnet_inference_duration_seconds",
			Help:    "Time taken to run model inference.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10), // 1ms to ~1s
		},
	)

	m.ModelLoadedGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "digitnet_model_loaded",
			Help: "1 when the classifier model is loaded and ready.",
		},
	)

	collectors := []prometheus.Collector{
		m.PredictionTotal,
		m.FeedbackTotal,
		m.PredictionConfidence,
		m.InferenceDuration,
		m.ModelLoadedGauge,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics collector: %w", err)
		}
	}

	return m, nil
}

// Handler returns an HTTP handler exposing the registry in Prometheus format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
