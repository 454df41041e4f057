package readiness

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"releasegate/internal/bootstrap/logging"
	domainreadiness "releasegate/internal/domain/readiness"
	"releasegate/internal/errs"
	"releasegate/internal/ports"
)

// InitialGate pre-seeds one gate of a newly scheduled run.
type InitialGate struct {
	Status          string
	OwnerEmail      string
	Metrics         *domainreadiness.GateMetrics
	Notes           string
	LastEvaluatedAt *time.Time
}

type ScheduleReleaseRunInput struct {
	VersionTag        string
	Environment       string
	InitiatedByEmail  string
	InitiatedByName   string
	ScheduledAt       *time.Time
	ChangeWindowStart *time.Time
	ChangeWindowEnd   *time.Time
	SummaryNotes      string
	Metadata          domainreadiness.RunMetadata
	InitialGates      map[string]InitialGate
}

type RunWithGates struct {
	Run   domainreadiness.ReleaseRun   `json:"run"`
	Gates []domainreadiness.GateResult `json:"gates"`
}

// ScheduleReleaseRun snapshots the whole catalog into a new run and creates
// one gate per snapshot item. Validation failures leave no rows behind.
func (s *Service) ScheduleReleaseRun(ctx context.Context, input ScheduleReleaseRunInput) (RunWithGates, error) {
	if err := s.ready(ctx); err != nil {
		return RunWithGates{}, err
	}

	versionTag := domainreadiness.NormalizeVersionTag(input.VersionTag)
	if versionTag == "" {
		return RunWithGates{}, domainreadiness.ErrVersionTagRequired
	}
	initiator := domainreadiness.NormalizeEmail(input.InitiatedByEmail)
	if initiator == "" {
		return RunWithGates{}, domainreadiness.ErrInitiatorRequired
	}
	initial, err := parseInitialGates(input.InitialGates)
	if err != nil {
		return RunWithGates{}, err
	}

	now := s.now()
	scheduledAt := now
	if input.ScheduledAt != nil && !input.ScheduledAt.IsZero() {
		scheduledAt = input.ScheduledAt.UTC()
	}

	var out RunWithGates
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		catalog, err := s.checklist.List(txCtx, ports.ChecklistFilter{}, ports.Page{})
		if err != nil {
			return errs.Wrap(err, "load checklist for snapshot")
		}

		snapshot := make([]domainreadiness.SnapshotItem, 0, len(catalog.Items))
		for _, item := range catalog.Items {
			snapshot = append(snapshot, item.Snapshot())
		}
		idx := domainreadiness.IndexSnapshot(snapshot)

		metadata := input.Metadata.Clone()
		metadata.RequiredGates = domainreadiness.ResolveRequiredGates(nil, s.cfg.RequiredGates, idx)
		if len(metadata.Thresholds) == 0 && len(s.cfg.Thresholds) > 0 {
			metadata.Thresholds = s.Config().Thresholds
		}

		run, err := s.runs.Create(txCtx, domainreadiness.ReleaseRun{
			VersionTag:        versionTag,
			Environment:       domainreadiness.NormalizeEnvironment(input.Environment, s.cfg.DefaultEnvironment),
			Status:            domainreadiness.RunStatusScheduled,
			InitiatedByEmail:  initiator,
			InitiatedByName:   strings.TrimSpace(input.InitiatedByName),
			ScheduledAt:       scheduledAt,
			ChangeWindowStart: utcPtr(input.ChangeWindowStart),
			ChangeWindowEnd:   utcPtr(input.ChangeWindowEnd),
			SummaryNotes:      input.SummaryNotes,
			ChecklistSnapshot: snapshot,
			Metadata:          metadata,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
		if err != nil {
			return errs.Wrap(err, "create release run")
		}

		gates := make([]domainreadiness.GateResult, 0, len(snapshot))
		for _, item := range snapshot {
			seed := initial[item.Slug]
			owner := firstNonEmpty(seed.ownerEmail, item.DefaultOwnerEmail, initiator)
			status := seed.status
			if status == "" {
				status = domainreadiness.GateStatusPending
			}
			itemID := item.ID
			gate := domainreadiness.GateResult{
				RunID:           run.ID,
				ChecklistItemID: &itemID,
				GateKey:         item.Slug,
				Status:          status,
				OwnerEmail:      owner,
				Notes:           seed.notes,
				LastEvaluatedAt: seed.lastEvaluatedAt,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if seed.metrics != nil {
				gate.Metrics = seed.metrics.Clone()
			}
			created, err := s.gates.Create(txCtx, gate)
			if err != nil {
				return errs.Wrapf(err, "create gate %q", item.Slug)
			}
			gates = append(gates, created)
		}

		out = RunWithGates{Run: run, Gates: gates}
		return nil
	}); err != nil {
		return RunWithGates{}, err
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "usecase.readiness.schedule"))
	idx := domainreadiness.IndexSnapshot(out.Run.ChecklistSnapshot)
	for key := range initial {
		if _, ok := idx.Lookup(key); !ok {
			logging.Warn(logCtx, "initial gate ignored: not in checklist snapshot", slog.String("gate_key", key))
		}
	}
	logging.Info(
		logCtx,
		"release run scheduled",
		slog.String("run_id", out.Run.PublicID),
		slog.String("version_tag", out.Run.VersionTag),
		slog.String("environment", out.Run.Environment),
		slog.Int("gates", len(out.Gates)),
	)

	for _, gate := range out.Gates {
		s.emitGate(ctx, out.Run, gate)
	}
	s.emitRun(ctx, out.Run, 0)
	return out, nil
}

type initialGate struct {
	status          domainreadiness.GateStatus
	ownerEmail      string
	metrics         *domainreadiness.GateMetrics
	notes           string
	lastEvaluatedAt *time.Time
}

func parseInitialGates(in map[string]InitialGate) (map[string]initialGate, error) {
	out := make(map[string]initialGate, len(in))
	for key, seed := range in {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		status := domainreadiness.GateStatusPending
		if strings.TrimSpace(seed.Status) != "" {
			parsed, err := domainreadiness.ParseGateStatus(seed.Status)
			if err != nil {
				return nil, errs.Wrapf(err, "initial gate %q", key)
			}
			status = parsed
		}
		out[key] = initialGate{
			status:          status,
			ownerEmail:      domainreadiness.NormalizeEmail(seed.OwnerEmail),
			metrics:         seed.Metrics,
			notes:           seed.Notes,
			lastEvaluatedAt: utcPtr(seed.LastEvaluatedAt),
		}
	}
	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	out := t.UTC()
	return &out
}
