package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus collectors for command invocations and
// upstream inference requests.
type Metrics struct {
	CommandInvocations *prometheus.CounterVec
	CommandDuration    *prometheus.HistogramVec

	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec

	BridgeRequests *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CommandInvocations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "localai_command_invocations_total",
			Help: "Editor command invocations by command and outcome",
		}, []string{"command", "outcome"}),
		CommandDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "localai_command_duration_seconds",
			Help:    "Time from invocation to editor update or failure",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"command"}),
		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "localai_upstream_requests_total",
			Help: "Requests sent to the inference server by API and status code",
		}, []string{"api", "code"}),
		UpstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "localai_upstream_request_duration_seconds",
			Help:    "Inference server request latency",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"api"}),
		BridgeRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "localai_bridge_requests_total",
			Help: "HTTP bridge requests by route and status code",
		}, []string{"route", "code"}),
	}
}

func (m *Metrics) ObserveCommand(id, outcome string, elapsed time.Duration) {
	m.CommandInvocations.WithLabelValues(id, outcome).Inc()
	m.CommandDuration.WithLabelValues(id).Observe(elapsed.Seconds())
}

// ObserveRequest records one upstream attempt. Status 0 means the request
// never got a response.
func (m *Metrics) ObserveRequest(api string, status int, elapsed time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.UpstreamRequests.WithLabelValues(api, code).Inc()
	m.UpstreamDuration.WithLabelValues(api).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveBridge(route string, status int) {
	m.BridgeRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
