package readiness

import (
	"context"
	"log/slog"

	"releasegate/internal/bootstrap/logging"
	domainreadiness "releasegate/internal/domain/readiness"
	"releasegate/internal/errs"
)

// TransitionRun moves a run into a terminal status (completed or cancelled).
// It returns nil when the run does not exist.
func (s *Service) TransitionRun(ctx context.Context, runID string, target string) (*domainreadiness.ReleaseRun, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	to, err := domainreadiness.ParseRunStatus(target)
	if err != nil {
		return nil, err
	}

	run, err := s.findRun(ctx, runID)
	if err != nil || run == nil {
		return nil, err
	}
	if err := domainreadiness.CheckTransition(run.Status, to); err != nil {
		return nil, err
	}

	now := s.now()
	updated, err := s.runs.UpdateByPublicID(ctx, run.PublicID, domainreadiness.RunPatch{
		Status:      &to,
		CompletedAt: &now,
	})
	if err != nil {
		return nil, errs.Wrap(err, "transition release run")
	}

	score := 0
	if updated.Metadata.ReadinessScore != nil {
		score = *updated.Metadata.ReadinessScore
	}
	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "usecase.readiness.transition")),
		"release run transitioned",
		slog.String("run_id", updated.PublicID),
		slog.String("from", string(run.Status)),
		slog.String("to", string(updated.Status)),
	)
	s.emitRun(ctx, updated, score)
	return &updated, nil
}
