// metrics — счётчики Prometheus edge-шлюза.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics — набор коллекторов шлюза. Нулевой *Metrics безопасен: методы ничего не делают.
type Metrics struct {
	gateDecisions  *prometheus.CounterVec
	upstreamErrors *prometheus.CounterVec
	requestDur     *prometheus.HistogramVec
}

// New регистрирует коллекторы в reg (обычно prometheus.DefaultRegisterer).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blastify",
			Name:      "gate_decisions_total",
			Help:      "Edge gate decisions by outcome and action.",
		}, []string{"outcome", "action"}),
		upstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blastify",
			Name:      "upstream_errors_total",
			Help:      "Failed proxy round-trips by upstream.",
		}, []string{"upstream"}),
		requestDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "blastify",
			Name:      "http_request_duration_seconds",
			Help:      "Gateway request latency by method and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}

	reg.MustRegister(m.gateDecisions, m.upstreamErrors, m.requestDur)
	return m
}

func (m *Metrics) GateDecision(outcome, action string) {
	if m == nil {
		return
	}
	m.gateDecisions.WithLabelValues(outcome, action).Inc()
}

func (m *Metrics) UpstreamError(upstream string) {
	if m == nil {
		return
	}
	m.upstreamErrors.WithLabelValues(upstream).Inc()
}

func (m *Metrics) ObserveRequest(method string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	m.requestDur.WithLabelValues(method, strconv.Itoa(status)).Observe(dur.Seconds())
}
