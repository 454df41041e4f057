package readiness

import (
	"context"
	"errors"
	"testing"

	domainreadiness "releasegate/internal/domain/readiness"
)

func TestListRunsFilters(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	mustSchedule(t, svc, ScheduleReleaseRunInput{VersionTag: "v1", InitiatedByEmail: "rm@example.com"})
	mustSchedule(t, svc, ScheduleReleaseRunInput{VersionTag: "v2", Environment: "staging", InitiatedByEmail: "rm@example.com"})
	third := mustSchedule(t, svc, ScheduleReleaseRunInput{VersionTag: "v3", InitiatedByEmail: "rm@example.com"})
	mustEvaluate(t, svc, third.Run.PublicID)

	page, err := svc.ListRuns(ctx, ListRunsInput{Environment: "production"})
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if page.Total != 2 || page.Items[0].VersionTag != "v3" {
		t.Fatalf("ListRuns(production) = %+v", page)
	}

	page, err = svc.ListRuns(ctx, ListRunsInput{Statuses: []string{"scheduled"}})
	if err != nil {
		t.Fatalf("ListRuns(status) error = %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("ListRuns(scheduled) total = %d, want 2", page.Total)
	}

	page, err = svc.ListRuns(ctx, ListRunsInput{VersionTag: "V2"})
	if err != nil {
		t.Fatalf("ListRuns(version) error = %v", err)
	}
	if page.Total != 1 || page.Items[0].Environment != "staging" {
		t.Fatalf("ListRuns(version) = %+v", page)
	}

	if _, err := svc.ListRuns(ctx, ListRunsInput{Statuses: []string{"shipping"}}); !errors.Is(err, domainreadiness.ErrInvalidRunStatus) {
		t.Fatalf("ListRuns(bad status) error = %v", err)
	}
}

func TestGetRunUnknownReturnsNil(t *testing.T) {
	svc, _ := setupService(t)

	got, err := svc.GetRun(context.Background(), "missing")
	if err != nil || got != nil {
		t.Fatalf("GetRun() = %v, %v; want nil, nil", got, err)
	}
}

func TestTransitionRun(t *testing.T) {
	svc, sink := setupService(t)
	ctx := context.Background()
	mustCreateItem(t, svc, CreateChecklistItemInput{Slug: "tests", Title: "Tests"})
	scheduled := mustSchedule(t, svc, ScheduleReleaseRunInput{
		VersionTag:       "v1",
		InitiatedByEmail: "rm@example.com",
		InitialGates:     map[string]InitialGate{"tests": {Status: "pass"}},
	})

	if _, err := svc.TransitionRun(ctx, scheduled.Run.PublicID, "completed"); !errors.Is(err, domainreadiness.ErrInvalidTransition) {
		t.Fatalf("complete before ready error = %v", err)
	}
	if _, err := svc.TransitionRun(ctx, scheduled.Run.PublicID, "ready"); !errors.Is(err, domainreadiness.ErrInvalidTransition) {
		t.Fatalf("transition to ready error = %v", err)
	}

	eval := mustEvaluate(t, svc, scheduled.Run.PublicID)
	if eval.Run.Status != domainreadiness.RunStatusReady {
		t.Fatalf("Status = %s, want ready", eval.Run.Status)
	}

	done, err := svc.TransitionRun(ctx, scheduled.Run.PublicID, "completed")
	if err != nil {
		t.Fatalf("TransitionRun() error = %v", err)
	}
	if done.Status != domainreadiness.RunStatusCompleted || done.CompletedAt == nil {
		t.Fatalf("TransitionRun() = %+v", done)
	}
	last := sink.runs[len(sink.runs)-1]
	if last.Status != "completed" || last.ReadinessScore != 100 {
		t.Fatalf("last run event = %+v", last)
	}

	if _, err := svc.TransitionRun(ctx, scheduled.Run.PublicID, "cancelled"); !errors.Is(err, domainreadiness.ErrInvalidTransition) {
		t.Fatalf("cancel after completion error = %v", err)
	}
	missing, err := svc.TransitionRun(ctx, "missing", "cancelled")
	if err != nil || missing != nil {
		t.Fatalf("TransitionRun(missing) = %v, %v; want nil, nil", missing, err)
	}
}
