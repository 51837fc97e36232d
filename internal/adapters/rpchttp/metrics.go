package rpchttp

import "github.com/prometheus/client_golang/prometheus"

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rpcbridge_requests_total",
		Help: "RPC bridge requests by wire format and outcome.",
	}, []string{"format", "outcome"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rpcbridge_request_duration_seconds",
		Help:    "End-to-end RPC bridge request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"format"})
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration)
}
