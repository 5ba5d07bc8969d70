package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/capstan/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics records task, transaction and rollback activity.
type Metrics struct {
	gatherer prometheus.Gatherer

	taskExecutions *prometheus.CounterVec
	taskDuration   *prometheus.HistogramVec
	transactions   *prometheus.CounterVec
	rollbacks      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg uses a private registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		gatherer: reg,
		taskExecutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "capstan_task_executions_total",
				Help: "Total number of task executions",
			},
			[]string{"task", "outcome"},
		),
		taskDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "capstan_task_duration_seconds",
				Help:    "Duration of task bodies",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"task"},
		),
		transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "capstan_transactions_total",
				Help: "Total number of completed transactions",
			},
			[]string{"outcome"},
		),
		rollbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "capstan_rollbacks_total",
				Help: "Total number of compensations run during rollbacks",
			},
			[]string{"task", "outcome"},
		),
	}
	reg.MustRegister(m.taskExecutions, m.taskDuration, m.transactions, m.rollbacks)
	return m
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTaskFinish: func(ctx context.Context, e *domain.TaskEvent) {
			m.taskExecutions.WithLabelValues(e.Task, outcome(e.Err)).Inc()
			m.taskDuration.WithLabelValues(e.Task).Observe(e.Duration.Seconds())
		},
		OnTransactionCommit: func(ctx context.Context, e *domain.TransactionEvent) {
			m.transactions.WithLabelValues(OutcomeSuccess).Inc()
		},
		OnTransactionRollback: func(ctx context.Context, e *domain.TransactionEvent) {
			m.transactions.WithLabelValues(OutcomeFailure).Inc()
		},
		OnRollbackAction: func(ctx context.Context, e *domain.RollbackEvent) {
			m.rollbacks.WithLabelValues(e.Task, outcome(e.Err)).Inc()
		},
	}
}

// Handler serves the collected metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
