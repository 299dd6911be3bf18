// Package observability provides Prometheus metrics for the Spark
// client and an instrumented HTTP transport.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/liugddx/spark-go/pkg/api"
)

// LLMBuckets defines histogram buckets suited for LLM inference latencies,
// ranging from 10ms to 120s.
var LLMBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal counts provider calls by operation, model, and outcome.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spark_client_requests_total",
			Help: "Provider calls",
		},
		[]string{"operation", "model", "outcome"},
	)

	// RequestDuration records provider call duration in seconds by operation and model.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spark_client_request_duration_seconds",
			Help:    "Provider call duration",
			Buckets: LLMBuckets,
		},
		[]string{"operation", "model"},
	)

	// TokensTotal counts tokens processed by kind (prompt/completion).
	TokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spark_client_tokens_total",
			Help: "Token count",
		},
		[]string{"model", "kind"},
	)

	// StreamChunksTotal counts stream chunks delivered to consumers.
	StreamChunksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spark_client_stream_chunks_total",
			Help: "Delivered stream chunks",
		},
		[]string{"model"},
	)

	// StreamsActive tracks streams whose response body is still open.
	StreamsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "spark_streams_active",
			Help: "Active streams",
		},
	)

	// HTTPRequestsTotal counts raw HTTP exchanges by method and status class.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spark_http_requests_total",
			Help: "HTTP requests",
		},
		[]string{"method", "status"},
	)

	// HTTPRequestDuration records time to response headers in seconds.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spark_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: LLMBuckets,
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		TokensTotal,
		StreamChunksTotal,
		StreamsActive,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}

// RecordRequest notes one finished provider call.
func RecordRequest(operation, model, outcome string, elapsed time.Duration) {
	RequestsTotal.WithLabelValues(operation, model, outcome).Inc()
	RequestDuration.WithLabelValues(operation, model).Observe(elapsed.Seconds())
}

// RecordTokens adds usage accounting for one call. Nil usage records
// nothing; Spark omits usage on some error paths.
func RecordTokens(model string, usage *api.Usage) {
	if usage == nil {
		return
	}
	TokensTotal.WithLabelValues(model, "prompt").Add(float64(usage.PromptTokens))
	TokensTotal.WithLabelValues(model, "completion").Add(float64(usage.CompletionTokens))
}

// RecordChunk notes one delivered stream chunk.
func RecordChunk(model string) {
	StreamChunksTotal.WithLabelValues(model).Inc()
}
