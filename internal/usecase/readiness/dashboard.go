package readiness

import (
	"context"
	"strings"

	domainreadiness "releasegate/internal/domain/readiness"
	"releasegate/internal/errs"
	"releasegate/internal/ports"
)

type ActiveRunSummary struct {
	Run            domainreadiness.ReleaseRun `json:"run"`
	ReadinessScore int                        `json:"readinessScore"`
}

type Dashboard struct {
	Environment       string                              `json:"environment,omitempty"`
	StatusBreakdown   map[domainreadiness.RunStatus]int64 `json:"statusBreakdown"`
	ActiveRuns        []ActiveRunSummary                  `json:"activeRuns"`
	RequiredGates     []string                            `json:"requiredGates"`
	CategoryBreakdown map[string]int64                    `json:"categoryBreakdown"`
}

// GetDashboard aggregates run and catalog state. An empty environment covers
// every environment. Scores of active runs are computed from their gates.
func (s *Service) GetDashboard(ctx context.Context, environment string) (Dashboard, error) {
	if err := s.ready(ctx); err != nil {
		return Dashboard{}, err
	}

	env := ""
	if strings.TrimSpace(environment) != "" {
		env = domainreadiness.NormalizeEnvironment(environment, s.cfg.DefaultEnvironment)
	}

	counts, err := s.runs.StatusBreakdown(ctx, env)
	if err != nil {
		return Dashboard{}, errs.Wrap(err, "run status breakdown")
	}
	breakdown := make(map[domainreadiness.RunStatus]int64, len(domainreadiness.RunStatuses))
	for _, status := range domainreadiness.RunStatuses {
		breakdown[status] = counts[status]
	}

	active, err := s.runs.List(ctx, ports.RunFilter{
		Environment: env,
		Statuses:    []domainreadiness.RunStatus{domainreadiness.RunStatusScheduled, domainreadiness.RunStatusInProgress},
	}, ports.Page{Limit: dashboardActiveRuns})
	if err != nil {
		return Dashboard{}, errs.Wrap(err, "list active runs")
	}

	summaries := make([]ActiveRunSummary, 0, len(active.Items))
	for _, run := range active.Items {
		gates, err := s.gates.ListByRunID(ctx, run.ID)
		if err != nil {
			return Dashboard{}, errs.Wrapf(err, "list gates for run %s", run.PublicID)
		}
		summaries = append(summaries, ActiveRunSummary{
			Run:            run,
			ReadinessScore: domainreadiness.ReadinessScore(gates, domainreadiness.IndexSnapshot(run.ChecklistSnapshot)),
		})
	}

	categories, err := s.checklist.CategoryBreakdown(ctx)
	if err != nil {
		return Dashboard{}, errs.Wrap(err, "checklist category breakdown")
	}

	return Dashboard{
		Environment:       env,
		StatusBreakdown:   breakdown,
		ActiveRuns:        summaries,
		RequiredGates:     s.Config().RequiredGates,
		CategoryBreakdown: categories,
	}, nil
}
