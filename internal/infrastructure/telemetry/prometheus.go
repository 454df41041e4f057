package telemetry

import (
	"context"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"releasegate/internal/ports"
)

const DefaultNamespace = "releasegate"

// PrometheusSink turns readiness events into counters and a score gauge on
// its own registerer, so tests and the HTTP /metrics handler share it.
type PrometheusSink struct {
	gateEvaluations *prometheus.CounterVec
	runStatus       *prometheus.CounterVec
	readinessScore  *prometheus.GaugeVec
}

func NewPrometheusSink(reg prometheus.Registerer, namespace string) *PrometheusSink {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &PrometheusSink{
		// Labels: gate_key, status, environment
		gateEvaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "readiness",
				Name:      "gate_evaluations_total",
				Help:      "Gate evaluations recorded, by resulting gate status",
			},
			[]string{"gate_key", "status", "environment"},
		),
		// Labels: status, environment
		runStatus: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "readiness",
				Name:      "run_status_changes_total",
				Help:      "Release run status updates, by status",
			},
			[]string{"status", "environment"},
		),
		// Labels: environment, version_tag
		readinessScore: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "readiness",
				Name:      "score",
				Help:      "Latest readiness score (0-100) of a release",
			},
			[]string{"environment", "version_tag"},
		),
	}
}

func (s *PrometheusSink) RecordGateEvaluation(_ context.Context, event ports.GateEvaluationEvent) {
	s.gateEvaluations.WithLabelValues(event.GateKey, event.Status, event.Environment).Inc()
}

func (s *PrometheusSink) RecordRunStatus(_ context.Context, event ports.RunStatusEvent) {
	s.runStatus.WithLabelValues(event.Status, event.Environment).Inc()
	s.readinessScore.WithLabelValues(event.Environment, event.VersionTag).Set(float64(event.ReadinessScore))
}
