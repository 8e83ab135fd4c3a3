package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its own registry so tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	RateLimitDecisions *prometheus.CounterVec
	AIRequests         *prometheus.CounterVec
	AICostUSD          *prometheus.CounterVec
	FlowSteps          *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		RateLimitDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hireprep_rate_limit_decisions_total",
			Help: "Rate limiter decisions by outcome.",
		}, []string{"outcome"}),
		AIRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hireprep_ai_requests_total",
			Help: "Calls to AI providers by provider and status.",
		}, []string{"provider", "status"}),
		AICostUSD: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hireprep_ai_cost_usd_total",
			Help: "Estimated AI spend in USD by model.",
		}, []string{"model"}),
		FlowSteps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hireprep_flow_steps_total",
			Help: "Submitted wizard steps by user type, step and outcome.",
		}, []string{"user_type", "step", "outcome"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

func (m *Metrics) ObserveRateLimit(allowed bool) {
	if m == nil {
		return
	}
	outcome := "allowed"
	if !allowed {
		outcome = "rejected"
	}
	m.RateLimitDecisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveAIRequest(provider string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.AIRequests.WithLabelValues(provider, status).Inc()
}

func (m *Metrics) ObserveAICost(model string, cost float64) {
	if m == nil || cost <= 0 {
		return
	}
	m.AICostUSD.WithLabelValues(model).Add(cost)
}

func (m *Metrics) ObserveStep(userType string, step string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.FlowSteps.WithLabelValues(userType, step, outcome).Inc()
}
