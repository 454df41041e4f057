package readiness

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"releasegate/internal/bootstrap/logging"
	domainreadiness "releasegate/internal/domain/readiness"
	"releasegate/internal/errs"
)

// RecordGateEvaluationInput carries a partial gate update. Nil fields keep
// their stored value.
type RecordGateEvaluationInput struct {
	RunID           string
	GateKey         string
	Status          *string
	OwnerEmail      *string
	Metrics         *domainreadiness.GateMetrics
	Notes           *string
	EvidenceURL     *string
	LastEvaluatedAt *time.Time
}

// RecordGateEvaluation upserts one gate of a run. It returns nil when the run
// does not exist.
func (s *Service) RecordGateEvaluation(ctx context.Context, input RecordGateEvaluationInput) (*domainreadiness.GateResult, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	gateKey := strings.TrimSpace(input.GateKey)
	if gateKey == "" {
		return nil, domainreadiness.ErrGateKeyRequired
	}

	patch := domainreadiness.GatePatch{
		OwnerEmail:  input.OwnerEmail,
		Metrics:     input.Metrics,
		Notes:       input.Notes,
		EvidenceURL: input.EvidenceURL,
	}
	if input.Status != nil {
		status, err := domainreadiness.ParseGateStatus(*input.Status)
		if err != nil {
			return nil, err
		}
		patch.Status = &status
	}
	evaluatedAt := s.now()
	if input.LastEvaluatedAt != nil && !input.LastEvaluatedAt.IsZero() {
		evaluatedAt = input.LastEvaluatedAt.UTC()
	}
	patch.LastEvaluatedAt = &evaluatedAt

	run, err := s.findRun(ctx, input.RunID)
	if err != nil || run == nil {
		return nil, err
	}

	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "usecase.readiness.gate"),
		slog.String("run_id", run.PublicID),
		slog.String("gate_key", gateKey),
	)
	if item, ok := domainreadiness.IndexSnapshot(run.ChecklistSnapshot).Lookup(gateKey); ok {
		itemID := item.ID
		patch.ChecklistItemID = &itemID
	} else {
		logging.Warn(logCtx, "gate key not in run snapshot; it will not count toward readiness")
	}

	gate, err := s.gates.UpsertByRunAndGate(ctx, run.ID, gateKey, patch)
	if err != nil {
		return nil, errs.Wrapf(err, "record gate %q", gateKey)
	}

	logging.Info(logCtx, "gate evaluation recorded", slog.String("status", string(gate.Status)))
	s.emitGate(ctx, *run, gate)
	return &gate, nil
}
