// Package metrics exposes Prometheus instrumentation for the HTTP encode
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects the counters and histograms of the encode service.
type Metrics struct {
	EncodeRequests prometheus.Counter
	EncodeFailures prometheus.Counter
	EncodeDuration prometheus.Histogram
	ChunksEncoded  prometheus.Counter

	HTTPRequests *prometheus.CounterVec
}

// New creates and registers all metrics on reg. Pass a fresh
// prometheus.NewRegistry per server instance.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		EncodeRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "ggmsg_encode_requests_total",
			Help: "Total number of encode requests received",
		}),
		EncodeFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "ggmsg_encode_failures_total",
			Help: "Total number of encode requests that failed",
		}),
		EncodeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ggmsg_encode_duration_seconds",
			Help:    "Wall-clock duration of encode requests",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		ChunksEncoded: factory.NewCounter(prometheus.CounterOpts{
			Name: "ggmsg_chunks_encoded_total",
			Help: "Total number of message chunks encoded to audio",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ggmsg_http_requests_total",
			Help: "HTTP requests by endpoint and status code",
		}, []string{"endpoint", "status"}),
	}
}
