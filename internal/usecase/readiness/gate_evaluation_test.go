package readiness

import (
	"context"
	"errors"
	"testing"
	"time"

	domainreadiness "releasegate/internal/domain/readiness"
)

func TestRecordGateEvaluationMergesSuppliedFields(t *testing.T) {
	svc, sink := setupService(t)
	mustCreateItem(t, svc, CreateChecklistItemInput{Slug: "tests", Title: "Tests", DefaultOwnerEmail: "qa@example.com"})
	scheduled := mustSchedule(t, svc, ScheduleReleaseRunInput{VersionTag: "v1", InitiatedByEmail: "rm@example.com"})
	ctx := context.Background()

	at := time.Date(2026, 4, 30, 9, 30, 0, 0, time.UTC)
	metrics := domainreadiness.ParseGateMetrics(`{"coverage":"0.91","pipeline":"ci-77"}`)
	first, err := svc.RecordGateEvaluation(ctx, RecordGateEvaluationInput{
		RunID:           scheduled.Run.PublicID,
		GateKey:         " tests ",
		Metrics:         &metrics,
		Notes:           strPtr("nightly run"),
		EvidenceURL:     strPtr("https://ci.example.com/77"),
		LastEvaluatedAt: &at,
	})
	if err != nil {
		t.Fatalf("RecordGateEvaluation() error = %v", err)
	}
	if first == nil {
		t.Fatalf("RecordGateEvaluation() = nil")
	}
	if first.Status != domainreadiness.GateStatusPending || first.OwnerEmail != "qa@example.com" {
		t.Fatalf("first = %+v, want status and owner retained", first)
	}
	if first.Metrics.Coverage == nil || *first.Metrics.Coverage != 0.91 {
		t.Fatalf("metrics = %s", first.Metrics.String())
	}
	if first.LastEvaluatedAt == nil || !first.LastEvaluatedAt.Equal(at) {
		t.Fatalf("LastEvaluatedAt = %v, want %v", first.LastEvaluatedAt, at)
	}

	second, err := svc.RecordGateEvaluation(ctx, RecordGateEvaluationInput{
		RunID:   scheduled.Run.PublicID,
		GateKey: "tests",
		Status:  strPtr("PASS"),
	})
	if err != nil {
		t.Fatalf("RecordGateEvaluation(second) error = %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("second write created a new row")
	}
	if second.Status != domainreadiness.GateStatusPass {
		t.Fatalf("status = %s, want pass", second.Status)
	}
	if second.Notes != "nightly run" || second.EvidenceURL != "https://ci.example.com/77" {
		t.Fatalf("unsupplied fields not retained: %+v", second)
	}
	if _, ok := second.Metrics.Extra["pipeline"]; !ok {
		t.Fatalf("metrics not retained: %s", second.Metrics.String())
	}
	if second.LastEvaluatedAt == nil || !second.LastEvaluatedAt.After(at) {
		t.Fatalf("LastEvaluatedAt = %v, want defaulted to now", second.LastEvaluatedAt)
	}

	run, err := svc.GetRun(ctx, scheduled.Run.PublicID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if len(run.Gates) != 1 {
		t.Fatalf("gates = %d, want 1", len(run.Gates))
	}
	last := sink.gates[len(sink.gates)-1]
	if last.GateKey != "tests" || last.Status != "pass" || last.RunID != scheduled.Run.PublicID {
		t.Fatalf("last gate event = %+v", last)
	}
}

func TestRecordGateEvaluationUnknownRunReturnsNil(t *testing.T) {
	svc, sink := setupService(t)

	got, err := svc.RecordGateEvaluation(context.Background(), RecordGateEvaluationInput{
		RunID:   "missing",
		GateKey: "tests",
		Status:  strPtr("pass"),
	})
	if err != nil {
		t.Fatalf("RecordGateEvaluation() error = %v", err)
	}
	if got != nil {
		t.Fatalf("RecordGateEvaluation() = %+v, want nil", got)
	}
	if len(sink.gates) != 0 {
		t.Fatalf("unknown run emitted %d events", len(sink.gates))
	}
}

func TestRecordGateEvaluationValidation(t *testing.T) {
	svc, _ := setupService(t)
	scheduled := mustSchedule(t, svc, ScheduleReleaseRunInput{VersionTag: "v1", InitiatedByEmail: "rm@example.com"})

	if _, err := svc.RecordGateEvaluation(context.Background(), RecordGateEvaluationInput{
		RunID: scheduled.Run.PublicID, GateKey: "  ",
	}); !errors.Is(err, domainreadiness.ErrGateKeyRequired) {
		t.Fatalf("blank gate key error = %v", err)
	}
	if _, err := svc.RecordGateEvaluation(context.Background(), RecordGateEvaluationInput{
		RunID: scheduled.Run.PublicID, GateKey: "tests", Status: strPtr("green"),
	}); !errors.Is(err, domainreadiness.ErrInvalidGateStatus) {
		t.Fatalf("bad status error = %v", err)
	}
}
