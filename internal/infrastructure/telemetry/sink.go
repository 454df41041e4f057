package telemetry

import (
	"context"

	"releasegate/internal/ports"
)

// Multi fans every event out to each sink in order.
type Multi []ports.MetricsSink

func NewMulti(sinks ...ports.MetricsSink) Multi {
	out := make(Multi, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			out = append(out, sink)
		}
	}
	return out
}

func (m Multi) RecordGateEvaluation(ctx context.Context, event ports.GateEvaluationEvent) {
	for _, sink := range m {
		sink.RecordGateEvaluation(ctx, event)
	}
}

func (m Multi) RecordRunStatus(ctx context.Context, event ports.RunStatusEvent) {
	for _, sink := range m {
		sink.RecordRunStatus(ctx, event)
	}
}

type Nop struct{}

func (Nop) RecordGateEvaluation(context.Context, ports.GateEvaluationEvent) {}

func (Nop) RecordRunStatus(context.Context, ports.RunStatusEvent) {}
