package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "toolforge"

// Result labels shared by the pipeline counters
const (
	ResultHit     = "hit"
	ResultMiss    = "miss"
	ResultError   = "error"
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	registry = prometheus.NewRegistry()

	Classifications = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Number of classified prompts, partitioned by classification.",
		},
		[]string{"classification"},
	)

	DedupLookups = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dedup_lookups_total",
			Help:      "Number of semantic dedup lookups, partitioned by result.",
		},
		[]string{"result"},
	)

	Generations = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Number of artifact generations, partitioned by category and result.",
		},
		[]string{"category", "result"},
	)

	Moderations = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moderations_total",
			Help:      "Number of moderation transitions, partitioned by target status and result.",
		},
		[]string{"status", "result"},
	)

	LLMCallDuration = promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_call_duration_seconds",
			Help:      "Latency of outbound model calls, partitioned by role.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"role"},
	)

	HTTPRequests = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Number of served HTTP requests, partitioned by method, route pattern and status code.",
		},
		[]string{"method", "route", "code"},
	)
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Registry returns the registry all toolforge collectors are registered to
func Registry() *prometheus.Registry {
	return registry
}

// Handler serves the registry in the Prometheus exposition format
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}
