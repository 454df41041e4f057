package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"releasegate/internal/domain/readiness"
	"releasegate/internal/ports"
)

func newRun(tag string, env string, status readiness.RunStatus, scheduledAt time.Time) readiness.ReleaseRun {
	return readiness.ReleaseRun{
		VersionTag:       tag,
		Environment:      env,
		Status:           status,
		InitiatedByEmail: "rm@example.com",
		ScheduledAt:      scheduledAt,
	}
}

func TestRunCreateRoundTripsSnapshotAndMetadata(t *testing.T) {
	repo := NewRunRepository(setupDB(t))
	ctx := context.Background()

	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	run := newRun("v1.2.0", "production", readiness.RunStatusScheduled, start)
	run.ChangeWindowStart = &start
	run.ChangeWindowEnd = &end
	run.ChecklistSnapshot = []readiness.SnapshotItem{
		{ID: 7, Slug: "tests", Title: "Tests", Weight: 3, SuccessCriteria: readiness.ParseSuccessCriteria(`{"minCoverage":80}`)},
	}
	run.Metadata = readiness.ParseRunMetadata(`{"requiredGates":["tests"],"ticket":"REL-1"}`)

	created, err := repo.Create(ctx, run)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.PublicID == "" || created.ID == 0 {
		t.Fatalf("Create() = %+v", created)
	}

	found, err := repo.FindByPublicID(ctx, created.PublicID)
	if err != nil {
		t.Fatalf("FindByPublicID() error = %v", err)
	}
	if len(found.ChecklistSnapshot) != 1 || found.ChecklistSnapshot[0].Weight != 3 {
		t.Fatalf("FindByPublicID() snapshot = %+v", found.ChecklistSnapshot)
	}
	if c := found.ChecklistSnapshot[0].SuccessCriteria.MinCoverage; c == nil || *c != 80 {
		t.Fatalf("snapshot criteria = %s", found.ChecklistSnapshot[0].SuccessCriteria.String())
	}
	if len(found.Metadata.RequiredGates) != 1 || found.Metadata.RequiredGates[0] != "tests" {
		t.Fatalf("metadata = %s", found.Metadata.String())
	}
	if _, ok := found.Metadata.Extra["ticket"]; !ok {
		t.Fatalf("metadata dropped ticket: %s", found.Metadata.String())
	}
	if found.ChangeWindowEnd == nil || !found.ChangeWindowEnd.Equal(end) {
		t.Fatalf("change window end = %v, want %v", found.ChangeWindowEnd, end)
	}
	if found.StartedAt != nil || found.CompletedAt != nil {
		t.Fatalf("started/completed should be unset: %+v", found)
	}
}

func TestRunFindByPublicIDMissing(t *testing.T) {
	repo := NewRunRepository(setupDB(t))

	if _, err := repo.FindByPublicID(context.Background(), "missing"); !errors.Is(err, ports.ErrRunNotFound) {
		t.Fatalf("FindByPublicID() error = %v, want ErrRunNotFound", err)
	}
	status := readiness.RunStatusReady
	if _, err := repo.UpdateByPublicID(context.Background(), "missing", readiness.RunPatch{Status: &status}); !errors.Is(err, ports.ErrRunNotFound) {
		t.Fatalf("UpdateByPublicID() error = %v, want ErrRunNotFound", err)
	}
}

func TestRunUpdateByPublicIDAppliesPatch(t *testing.T) {
	repo := NewRunRepository(setupDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, newRun("v1", "staging", readiness.RunStatusScheduled, time.Now()))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	status := readiness.RunStatusInProgress
	startedAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	meta := created.Metadata.WithEvaluation(42, startedAt)
	updated, err := repo.UpdateByPublicID(ctx, created.PublicID, readiness.RunPatch{
		Status:    &status,
		StartedAt: &startedAt,
		Metadata:  &meta,
	})
	if err != nil {
		t.Fatalf("UpdateByPublicID() error = %v", err)
	}
	if updated.Status != readiness.RunStatusInProgress {
		t.Fatalf("status = %s", updated.Status)
	}
	if updated.StartedAt == nil || !updated.StartedAt.Equal(startedAt) {
		t.Fatalf("startedAt = %v", updated.StartedAt)
	}
	if updated.Metadata.ReadinessScore == nil || *updated.Metadata.ReadinessScore != 42 {
		t.Fatalf("metadata = %s", updated.Metadata.String())
	}
	if updated.VersionTag != "v1" || updated.Environment != "staging" {
		t.Fatalf("patch touched omitted fields: %+v", updated)
	}
}

func TestRunListFiltersAndOrdersNewestFirst(t *testing.T) {
	repo := NewRunRepository(setupDB(t))
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, run := range []readiness.ReleaseRun{
		newRun("v1", "production", readiness.RunStatusCompleted, base),
		newRun("v2", "production", readiness.RunStatusScheduled, base.Add(time.Hour)),
		newRun("v3", "production", readiness.RunStatusInProgress, base.Add(2*time.Hour)),
		newRun("v3", "staging", readiness.RunStatusScheduled, base.Add(3*time.Hour)),
	} {
		if _, err := repo.Create(ctx, run); err != nil {
			t.Fatalf("Create(%d) error = %v", i, err)
		}
	}

	page, err := repo.List(ctx, ports.RunFilter{
		Environment: "production",
		Statuses:    []readiness.RunStatus{readiness.RunStatusScheduled, readiness.RunStatusInProgress},
	}, ports.Page{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Total != 2 || len(page.Items) != 2 {
		t.Fatalf("List() = %+v", page)
	}
	if page.Items[0].VersionTag != "v3" || page.Items[1].VersionTag != "v2" {
		t.Fatalf("List() order = %s, %s", page.Items[0].VersionTag, page.Items[1].VersionTag)
	}

	page, err = repo.List(ctx, ports.RunFilter{VersionTag: "v3"}, ports.Page{Limit: 1})
	if err != nil {
		t.Fatalf("List(version) error = %v", err)
	}
	if page.Total != 2 || len(page.Items) != 1 || page.Items[0].Environment != "staging" {
		t.Fatalf("List(version) = %+v", page)
	}
}

func TestRunStatusBreakdown(t *testing.T) {
	repo := NewRunRepository(setupDB(t))
	ctx := context.Background()
	now := time.Now()

	for _, run := range []readiness.ReleaseRun{
		newRun("v1", "production", readiness.RunStatusScheduled, now),
		newRun("v2", "production", readiness.RunStatusScheduled, now),
		newRun("v3", "staging", readiness.RunStatusBlocked, now),
	} {
		if _, err := repo.Create(ctx, run); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	all, err := repo.StatusBreakdown(ctx, "")
	if err != nil {
		t.Fatalf("StatusBreakdown() error = %v", err)
	}
	if all[readiness.RunStatusScheduled] != 2 || all[readiness.RunStatusBlocked] != 1 {
		t.Fatalf("StatusBreakdown() = %v", all)
	}

	prod, err := repo.StatusBreakdown(ctx, "production")
	if err != nil {
		t.Fatalf("StatusBreakdown(production) error = %v", err)
	}
	if len(prod) != 1 || prod[readiness.RunStatusScheduled] != 2 {
		t.Fatalf("StatusBreakdown(production) = %v", prod)
	}
}

func TestRunListOrdersSubSecondScheduleTimes(t *testing.T) {
	repo := NewRunRepository(setupDB(t))
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC)
	for _, run := range []readiness.ReleaseRun{
		newRun("newer", "production", readiness.RunStatusScheduled, base.Add(500*time.Millisecond)),
		newRun("older", "production", readiness.RunStatusScheduled, base),
	} {
		if _, err := repo.Create(ctx, run); err != nil {
			t.Fatalf("Create(%s) error = %v", run.VersionTag, err)
		}
	}

	page, err := repo.List(ctx, ports.RunFilter{}, ports.Page{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page.Items) != 2 || page.Items[0].VersionTag != "newer" || page.Items[1].VersionTag != "older" {
		t.Fatalf("List() order = %v, want [newer older]", versionTags(page.Items))
	}
	if !page.Items[1].ScheduledAt.Equal(base) {
		t.Fatalf("ScheduledAt = %v, want %v", page.Items[1].ScheduledAt, base)
	}
}

func TestFormatTimeIsFixedWidth(t *testing.T) {
	whole := formatTime(time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC))
	half := formatTime(time.Date(2026, 3, 1, 12, 0, 5, 500_000_000, time.UTC))
	if len(whole) != len(half) || !(whole < half) {
		t.Fatalf("formatTime() = %q, %q, want equal width and ordered", whole, half)
	}
	if got := parseTime(half); got.Nanosecond() != 500_000_000 {
		t.Fatalf("parseTime(%q) = %v", half, got)
	}
}

func versionTags(runs []readiness.ReleaseRun) []string {
	out := make([]string, 0, len(runs))
	for _, run := range runs {
		out = append(out, run.VersionTag)
	}
	return out
}
