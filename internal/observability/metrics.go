package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	commands        *prometheus.CounterVec
	installDuration *prometheus.HistogramVec
	pollAttempts    *prometheus.CounterVec

	clientLatency *prometheus.HistogramVec
	clientErrors  *prometheus.CounterVec
}

var latencyBuckets = []float64{
	0.005, 0.01, 0.025, 0.05,
	0.1, 0.25, 0.5,
	1, 2.5, 5, 10,
}

var metricsSingleton = sync.OnceValue(func() *Metrics {
	return &Metrics{
		apiRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "installdesk",
			Name:      "api_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "installdesk",
			Name:      "api_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   latencyBuckets,
		}, []string{"method", "route"}),
		apiInflight: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "installdesk",
			Name:      "api_inflight_requests",
			Help:      "HTTP requests currently being served.",
		}),
		commands: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "installdesk",
			Name:      "workflow_commands_total",
			Help:      "Workflow commands by verb and result.",
		}, []string{"verb", "result"}),
		installDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "installdesk",
			Name:      "install_duration_seconds",
			Help:      "Time from job trigger to terminal execution.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}, []string{"result"}),
		pollAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "installdesk",
			Name:      "execution_poll_attempts_total",
			Help:      "Job runner execution polls by backend and outcome.",
		}, []string{"backend", "outcome"}),
		clientLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "installdesk",
			Name:      "client_request_duration_seconds",
			Help:      "Outbound call latency by client and operation.",
			Buckets:   latencyBuckets,
		}, []string{"client", "op"}),
		clientErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "installdesk",
			Name:      "client_errors_total",
			Help:      "Outbound call failures by client and operation.",
		}, []string{"client", "op"}),
	}
})

// Current returns the process-wide metrics set, registering it on first use.
func Current() *Metrics {
	return metricsSingleton()
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) ApiInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

func (m *Metrics) IncCommand(verb, result string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(verb, result).Inc()
}

func (m *Metrics) ObserveInstall(result string, dur time.Duration) {
	if m == nil {
		return
	}
	m.installDuration.WithLabelValues(result).Observe(dur.Seconds())
}

func (m *Metrics) IncPollAttempt(backend, outcome string) {
	if m == nil {
		return
	}
	m.pollAttempts.WithLabelValues(backend, outcome).Inc()
}

func (m *Metrics) ObserveClientCall(client, op string, dur time.Duration, err error) {
	if m == nil {
		return
	}
	m.clientLatency.WithLabelValues(client, op).Observe(dur.Seconds())
	if err != nil {
		m.clientErrors.WithLabelValues(client, op).Inc()
	}
}
