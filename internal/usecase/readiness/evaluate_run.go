package readiness

import (
	"context"
	"log/slog"

	"releasegate/internal/bootstrap/logging"
	domainreadiness "releasegate/internal/domain/readiness"
	"releasegate/internal/errs"
)

type RunEvaluation struct {
	Run               domainreadiness.ReleaseRun     `json:"run"`
	ReadinessScore    int                            `json:"readinessScore"`
	BlockingGates     []domainreadiness.BlockingGate `json:"blockingGates"`
	Gates             []domainreadiness.GateResult   `json:"gates"`
	RequiredGates     []string                       `json:"requiredGates"`
	RecommendedStatus domainreadiness.RunStatus      `json:"recommendedStatus"`
}

// EvaluateRun re-scores stale automatic gates, then recomputes the run's
// score, blockers and status. It returns nil when the run does not exist.
// Repeated calls with unchanged metrics write no gate updates.
func (s *Service) EvaluateRun(ctx context.Context, runID string) (*RunEvaluation, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	run, err := s.findRun(ctx, runID)
	if err != nil || run == nil {
		return nil, err
	}

	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "usecase.readiness.evaluate"),
		slog.String("run_id", run.PublicID),
	)

	var (
		result  RunEvaluation
		changed []domainreadiness.GateResult
	)
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		gates, err := s.gates.ListByRunID(txCtx, run.ID)
		if err != nil {
			return errs.Wrap(err, "list gates")
		}

		now := s.now()
		idx := domainreadiness.IndexSnapshot(run.ChecklistSnapshot)
		window := run.ChangeWindow()
		for i, gate := range gates {
			item, ok := idx.Lookup(gate.GateKey)
			if !ok {
				logging.Warn(logCtx, "orphaned gate ignored", slog.String("gate_key", gate.GateKey))
				continue
			}
			if !domainreadiness.ShouldAutoEvaluate(item, gate) {
				continue
			}
			evaluation := domainreadiness.EvaluateCriteria(item.SuccessCriteria, gate.Metrics, window)
			if evaluation.Status == gate.Status {
				continue
			}
			notes := evaluation.Notes()
			updated, err := s.gates.UpsertByRunAndGate(txCtx, run.ID, gate.GateKey, domainreadiness.GatePatch{
				Status:          &evaluation.Status,
				Notes:           &notes,
				LastEvaluatedAt: &now,
			})
			if err != nil {
				return errs.Wrapf(err, "update gate %q", gate.GateKey)
			}
			gates[i] = updated
			changed = append(changed, updated)
		}

		required := domainreadiness.ResolveRequiredGates(run.Metadata.RequiredGates, s.cfg.RequiredGates, idx)
		assessment := domainreadiness.Assess(gates, idx, required)

		metadata := run.Metadata.WithEvaluation(assessment.ReadinessScore, now)
		patch := domainreadiness.RunPatch{Metadata: &metadata}
		if !run.Status.Terminal() {
			patch.Status = &assessment.RecommendedStatus
		}
		if run.StartedAt == nil {
			patch.StartedAt = &now
		}
		updatedRun, err := s.runs.UpdateByPublicID(txCtx, run.PublicID, patch)
		if err != nil {
			return errs.Wrap(err, "update release run")
		}

		result = RunEvaluation{
			Run:               updatedRun,
			ReadinessScore:    assessment.ReadinessScore,
			BlockingGates:     assessment.BlockingGates,
			Gates:             gates,
			RequiredGates:     assessment.RequiredGates,
			RecommendedStatus: assessment.RecommendedStatus,
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if result.BlockingGates == nil {
		result.BlockingGates = []domainreadiness.BlockingGate{}
	}

	logging.Info(
		logCtx,
		"release run evaluated",
		slog.Int("readiness_score", result.ReadinessScore),
		slog.String("recommended_status", string(result.RecommendedStatus)),
		slog.Int("blocking_gates", len(result.BlockingGates)),
		slog.Int("gates_rescored", len(changed)),
	)

	for _, gate := range changed {
		s.emitGate(ctx, result.Run, gate)
	}
	s.emitRun(ctx, result.Run, result.ReadinessScore)
	return &result, nil
}
