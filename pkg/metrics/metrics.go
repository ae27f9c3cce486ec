package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	StoreFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cocktails", Name: "store_fetches_total", Help: "Number of store fetches by collection and result."},
		[]string{"collection", "result"},
	)
	DocumentsStreamed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cocktails", Name: "documents_streamed_total", Help: "Number of documents read from the store by collection."},
		[]string{"collection"},
	)
	StoreFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "cocktails", Name: "store_fetch_duration_seconds", Help: "Time to open a store fetch.", Buckets: prometheus.DefBuckets},
		[]string{"collection"},
	)
	Aggregations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cocktails", Name: "aggregations_total", Help: "Number of aggregate queries by execution mode (native, local)."},
		[]string{"mode"},
	)
	ProjectionFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cocktails", Name: "projection_failures_total", Help: "Number of documents failing recipe projection by policy."},
		[]string{"policy"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cocktails", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cocktails", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(StoreFetches)
	reg.MustRegister(DocumentsStreamed)
	reg.MustRegister(StoreFetchDuration)
	reg.MustRegister(Aggregations)
	reg.MustRegister(ProjectionFailures)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
