package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lokah_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lokah_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lokah_http_requests_in_flight",
			Help: "Function requests currently being served.",
		},
	)

	GatewayCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lokah_gateway_calls_total",
			Help: "Total number of chat-completion calls by task and outcome.",
		},
		[]string{"task", "outcome"},
	)

	GatewayCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lokah_gateway_call_duration_seconds",
			Help:    "Chat-completion call latency in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"task"},
	)

	RepliesNormalizedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lokah_replies_normalized_total",
			Help: "Model outputs by task and normalization result (parsed, repaired, fallback).",
		},
		[]string{"task", "result"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		HTTPRequestsInFlight,
		GatewayCallsTotal,
		GatewayCallDuration,
		RepliesNormalizedTotal,
	)
}
