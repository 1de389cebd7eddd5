package observability

import (
	"context"

	"github.com/aretw0/roster/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by the store hooks.
type Metrics struct {
	Dispatches       *prometheus.CounterVec
	Workflows        *prometheus.CounterVec
	WorkflowDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roster_dispatch_total",
				Help: "Total number of dispatched actions",
			},
			[]string{"action"},
		),
		Workflows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roster_workflow_total",
				Help: "Total number of finished workflows by outcome",
			},
			[]string{"workflow", "outcome"},
		),
		WorkflowDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "roster_workflow_duration_seconds",
				Help:    "Duration of workflows, remote calls included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"workflow"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Dispatches, m.Workflows, m.WorkflowDuration)
	}
	return m
}

// Hooks returns lifecycle hooks recording into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatch: func(_ context.Context, e *domain.DispatchEvent) {
			m.Dispatches.WithLabelValues(string(e.Action)).Inc()
		},
		OnWorkflowFinish: func(_ context.Context, e *domain.WorkflowEvent) {
			m.Workflows.WithLabelValues(e.Workflow, e.Outcome).Inc()
			m.WorkflowDuration.WithLabelValues(e.Workflow).Observe(e.Duration.Seconds())
		},
	}
}
