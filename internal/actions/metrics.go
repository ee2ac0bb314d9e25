package actions

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "actionbot_runs_total",
		Help: "Button action runs by final status.",
	}, []string{"status"})

	metricActionsExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "actionbot_actions_executed_total",
		Help: "Actions executed, labelled by type and outcome.",
	}, []string{"action_type", "status"})

	metricRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "actionbot_run_duration_seconds",
		Help:    "Wall time of one button run including configured delays.",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	})

	metricRollbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "actionbot_rollbacks_total",
		Help: "Explicit rollback invocations by action type and outcome.",
	}, []string{"action_type", "status"})

	metricTriggersRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "actionbot_triggers_rejected_total",
		Help: "Button presses rejected before any action ran, by precondition.",
	}, []string{"reason"})
)
