package readiness

import (
	"context"
	"errors"
	"strings"

	domainreadiness "releasegate/internal/domain/readiness"
	"releasegate/internal/errs"
	"releasegate/internal/ports"
)

type ListRunsInput struct {
	Environment string
	Statuses    []string
	VersionTag  string
	Limit       int
	Offset      int
}

func (s *Service) ListRuns(ctx context.Context, input ListRunsInput) (ports.RunPage, error) {
	if err := s.ready(ctx); err != nil {
		return ports.RunPage{}, err
	}

	filter := ports.RunFilter{
		VersionTag: domainreadiness.NormalizeVersionTag(input.VersionTag),
	}
	if strings.TrimSpace(input.Environment) != "" {
		filter.Environment = domainreadiness.NormalizeEnvironment(input.Environment, s.cfg.DefaultEnvironment)
	}
	for _, raw := range input.Statuses {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		status, err := domainreadiness.ParseRunStatus(raw)
		if err != nil {
			return ports.RunPage{}, err
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	page, err := s.runs.List(ctx, filter, normalizePage(input.Limit, input.Offset))
	if err != nil {
		return ports.RunPage{}, errs.Wrap(err, "list release runs")
	}
	return page, nil
}

// GetRun returns nil when runID does not resolve to a run.
func (s *Service) GetRun(ctx context.Context, runID string) (*RunWithGates, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	run, err := s.findRun(ctx, runID)
	if err != nil || run == nil {
		return nil, err
	}
	gates, err := s.gates.ListByRunID(ctx, run.ID)
	if err != nil {
		return nil, errs.Wrap(err, "list gates")
	}
	return &RunWithGates{Run: *run, Gates: gates}, nil
}

func (s *Service) findRun(ctx context.Context, runID string) (*domainreadiness.ReleaseRun, error) {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil, nil
	}
	run, err := s.runs.FindByPublicID(ctx, runID)
	if err != nil {
		if errors.Is(err, ports.ErrRunNotFound) {
			return nil, nil
		}
		return nil, errs.Wrap(err, "find release run")
	}
	return &run, nil
}
