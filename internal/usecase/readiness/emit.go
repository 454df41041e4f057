package readiness

import (
	"context"
	"fmt"
	"log/slog"

	"releasegate/internal/bootstrap/logging"
	domainreadiness "releasegate/internal/domain/readiness"
	"releasegate/internal/errs"
	"releasegate/internal/ports"
)

// emitGate and emitRun never fail the caller: a panicking sink is recovered
// and logged.
func (s *Service) emitGate(ctx context.Context, run domainreadiness.ReleaseRun, gate domainreadiness.GateResult) {
	s.emit(ctx, "gate_evaluation", func() {
		s.sink.RecordGateEvaluation(ctx, ports.GateEvaluationEvent{
			RunID:       run.PublicID,
			GateKey:     gate.GateKey,
			Status:      string(gate.Status),
			Environment: run.Environment,
			VersionTag:  run.VersionTag,
		})
	})
}

func (s *Service) emitRun(ctx context.Context, run domainreadiness.ReleaseRun, score int) {
	s.emit(ctx, "run_status", func() {
		s.sink.RecordRunStatus(ctx, ports.RunStatusEvent{
			RunID:          run.PublicID,
			Status:         string(run.Status),
			Environment:    run.Environment,
			VersionTag:     run.VersionTag,
			ReadinessScore: score,
		})
	})
}

func (s *Service) emit(ctx context.Context, kind string, record func()) {
	if s.sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logging.Warn(
				logging.WithAttrs(ctx, slog.String("component", "usecase.readiness.metrics")),
				"metrics emission failed",
				slog.String("event", kind),
				slog.Any("err", errs.Loggable(errs.WithStack(fmt.Errorf("metrics sink panic: %v", r)))),
			)
		}
	}()
	record()
}
