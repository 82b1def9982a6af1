package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// ClientMetrics exposes counters/histograms for backend API calls.
type ClientMetrics struct {
	requestsTotal  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	fallbackTotal  *prometheus.CounterVec
}

func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	m := &ClientMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medcare",
			Subsystem: "api_client",
			Name:      "requests_total",
			Help:      "Total backend API requests by outcome",
		}, []string{"method", "resource", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "medcare",
			Subsystem: "api_client",
			Name:      "request_duration_seconds",
			Help:      "Latency of backend API requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "resource"}),
		fallbackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medcare",
			Subsystem: "chat",
			Name:      "endpoint_attempts_total",
			Help:      "Chat endpoint discovery attempts by outcome",
		}, []string{"endpoint", "outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestLatency, m.fallbackTotal)
	return m
}

// ObserveRequest records one finished request. A zero status means the
// request never produced an HTTP response.
func (m *ClientMetrics) ObserveRequest(method, resource string, status int, seconds float64) {
	if m == nil {
		return
	}
	label := "network_error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.requestsTotal.WithLabelValues(method, resource, label).Inc()
	m.requestLatency.WithLabelValues(method, resource).Observe(seconds)
}

// ObserveEndpointAttempt records a chat endpoint discovery attempt.
func (m *ClientMetrics) ObserveEndpointAttempt(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.fallbackTotal.WithLabelValues(endpoint, outcome).Inc()
}
