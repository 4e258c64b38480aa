package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rezkam/monodash/internal/domain"
)

const namespace = "monodash"

// PrometheusRecorder implements todo.Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	commandDuration *prom.HistogramVec
	commandResults  *prom.CounterVec
	todos           *prom.GaugeVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	pr := &PrometheusRecorder{
		commandDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Duration of state service commands",
			Buckets:   prom.DefBuckets,
		}, []string{"command"}),
		commandResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "command_results_total",
			Help:      "State service command counts by outcome",
		}, []string{"command", "outcome"}),
		todos: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "todos",
			Help:      "Todo counts from the latest dashboard summary",
		}, []string{"state"}),
	}
	reg.MustRegister(pr.commandDuration, pr.commandResults, pr.todos)
	return pr
}

// ObserveCommand records one command execution.
func (p *PrometheusRecorder) ObserveCommand(command, outcome string, duration time.Duration) {
	p.commandDuration.WithLabelValues(command).Observe(duration.Seconds())
	p.commandResults.WithLabelValues(command, outcome).Inc()
}

// SetSummary publishes the latest counts as gauges.
func (p *PrometheusRecorder) SetSummary(summary domain.DashboardSummary) {
	p.todos.WithLabelValues("total").Set(float64(summary.Total))
	p.todos.WithLabelValues("active").Set(float64(summary.Active))
	p.todos.WithLabelValues("completed").Set(float64(summary.Completed))
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prom.Registry {
	reg := prom.NewRegistry()
	reg.MustRegister(promcollect.NewGoCollector(), promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
	return reg
}

// Handler returns an HTTP handler exposing the registry.
func Handler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
