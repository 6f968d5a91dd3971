package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	DisclosureStatus = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finsignal",
			Subsystem: "dart",
			Name:      "responses_total",
			Help:      "Disclosure provider responses by endpoint and status code",
		},
		[]string{"endpoint", "status"},
	)

	QuoteLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "finsignal",
			Subsystem: "yahoo",
			Name:      "latency_seconds",
			Help:      "Latency of quote provider calls",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	NarrationOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finsignal",
			Subsystem: "chat",
			Name:      "answers_total",
			Help:      "Chat answers by source (model or fallback)",
		},
		[]string{"source"},
	)
)

// Register adds the provider metrics to the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(DisclosureStatus, QuoteLatency, NarrationOutcomes)
	})
}
