package core

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder exports operation timings and outcome counters
// through a prometheus registry. It satisfies MetricsRecorder so deployments
// that scrape metrics can swap it in for the expvar recorder.
type PrometheusMetricsRecorder struct {
	durations *prometheus.HistogramVec
	results   *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder constructs a recorder and registers its
// collectors with the supplied registerer. Pass prometheus.DefaultRegisterer
// for the process-global registry.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pantrycore",
		Subsystem: "service",
		Name:      "operation_duration_seconds",
		Help:      "Duration of core service operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	results := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pantrycore",
		Subsystem: "service",
		Name:      "operation_results_total",
		Help:      "Outcome counts of core service operations.",
	}, []string{"operation", "status"})
	for _, c := range []prometheus.Collector{durations, results} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return &PrometheusMetricsRecorder{durations: durations, results: results}, nil
}

// Observe records a service operation outcome.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
	r.results.WithLabelValues(operation, status).Inc()
}
