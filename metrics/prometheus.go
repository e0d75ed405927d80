package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type PrometheusRecorder struct {
	counters  *prometheus.CounterVec
	histogram *prometheus.HistogramVec
}

// NewPrometheusRecorder registers and returns the payorder metric set.
// Counters are labeled by event type and operation.
func NewPrometheusRecorder() Recorder {
	counters := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payorder",
			Name:      "events_total",
			Help:      "payment order event counters",
		},
		[]string{"type", "operation"},
	)

	histogram := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "payorder",
			Name:      "latency_seconds",
			Help:      "payment order operation latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	prometheus.MustRegister(counters, histogram)

	return &PrometheusRecorder{
		counters:  counters,
		histogram: histogram,
	}
}

func (p *PrometheusRecorder) IncCounter(name string, labels map[string]string) {
	p.counters.With(prometheus.Labels{
		"type":      name,
		"operation": labels["operation"],
	}).Inc()
}

func (p *PrometheusRecorder) ObserveLatency(name string, d time.Duration, labels map[string]string) {
	operation := labels["operation"]
	if operation == "" {
		operation = name
	}
	p.histogram.With(prometheus.Labels{
		"operation": operation,
	}).Observe(d.Seconds())
}
