package readiness

import (
	"context"
	"errors"
	"testing"

	domainreadiness "releasegate/internal/domain/readiness"
)

func TestCreateChecklistItemDerivesSlugAndNormalizes(t *testing.T) {
	svc, _ := setupService(t)

	item := mustCreateItem(t, svc, CreateChecklistItemInput{
		Title:             "Load Test Sign-off",
		Category:          " Performance ",
		Weight:            "not a number",
		DefaultOwnerEmail: "Perf@Example.com",
	})
	if item.Slug != "load-test-sign-off" {
		t.Fatalf("Slug = %q", item.Slug)
	}
	if item.Category != "performance" || item.Weight != 1 || item.DefaultOwnerEmail != "perf@example.com" {
		t.Fatalf("item = %+v", item)
	}

	_, err := svc.CreateChecklistItem(context.Background(), CreateChecklistItemInput{Slug: "Load Test Sign-off", Title: "again"})
	if !errors.Is(err, domainreadiness.ErrChecklistSlugExists) {
		t.Fatalf("duplicate error = %v, want ErrChecklistSlugExists", err)
	}
	if _, err := svc.CreateChecklistItem(context.Background(), CreateChecklistItemInput{Slug: "x"}); !errors.Is(err, domainreadiness.ErrTitleRequired) {
		t.Fatalf("missing title error = %v", err)
	}
}

func TestListChecklistReturnsThresholds(t *testing.T) {
	svc, _ := setupService(t)
	mustCreateItem(t, svc, CreateChecklistItemInput{Slug: "a", Title: "A", Category: "quality", Weight: 1})
	mustCreateItem(t, svc, CreateChecklistItemInput{Slug: "b", Title: "B", Category: "quality", Weight: 4})
	mustCreateItem(t, svc, CreateChecklistItemInput{Slug: "c", Title: "C", Category: "ops", Weight: 2.9})

	listing, err := svc.ListChecklist(context.Background(), ListChecklistInput{Category: "quality"})
	if err != nil {
		t.Fatalf("ListChecklist() error = %v", err)
	}
	if listing.Total != 2 || listing.Items[0].Slug != "b" {
		t.Fatalf("ListChecklist() = %+v", listing)
	}
	if listing.Thresholds["minCoverage"] != 0.8 {
		t.Fatalf("Thresholds = %v", listing.Thresholds)
	}

	listing.Thresholds["minCoverage"] = 0
	again, err := svc.ListChecklist(context.Background(), ListChecklistInput{})
	if err != nil {
		t.Fatalf("ListChecklist() error = %v", err)
	}
	if again.Thresholds["minCoverage"] != 0.8 {
		t.Fatalf("engine thresholds mutated through a listing")
	}
	c, _ := gateWeight(again.Items, "c")
	if c != 2 {
		t.Fatalf("weight 2.9 stored as %d, want 2", c)
	}
}

func TestUpdateAndGetChecklistItem(t *testing.T) {
	svc, _ := setupService(t)
	mustCreateItem(t, svc, CreateChecklistItemInput{Slug: "tests", Title: "Tests", Description: "keep me"})
	ctx := context.Background()

	auto := true
	updated, err := svc.UpdateChecklistItem(ctx, UpdateChecklistItemInput{
		Slug:  "tests",
		Patch: domainreadiness.ChecklistPatch{AutoEvaluated: &auto},
	})
	if err != nil {
		t.Fatalf("UpdateChecklistItem() error = %v", err)
	}
	if updated == nil || !updated.AutoEvaluated || updated.Description != "keep me" {
		t.Fatalf("UpdateChecklistItem() = %+v", updated)
	}

	missing, err := svc.UpdateChecklistItem(ctx, UpdateChecklistItemInput{Slug: "nope", Patch: domainreadiness.ChecklistPatch{AutoEvaluated: &auto}})
	if err != nil || missing != nil {
		t.Fatalf("UpdateChecklistItem(missing) = %v, %v; want nil, nil", missing, err)
	}

	got, err := svc.GetChecklistItem(ctx, "tests")
	if err != nil || got == nil || !got.AutoEvaluated {
		t.Fatalf("GetChecklistItem() = %v, %v", got, err)
	}
	none, err := svc.GetChecklistItem(ctx, "nope")
	if err != nil || none != nil {
		t.Fatalf("GetChecklistItem(missing) = %v, %v; want nil, nil", none, err)
	}
}

func TestImportChecklistCreatesAndUpdates(t *testing.T) {
	svc, _ := setupService(t)
	mustCreateItem(t, svc, CreateChecklistItemInput{Slug: "tests", Title: "Tests", Weight: 1})

	result, err := svc.ImportChecklist(context.Background(), []CreateChecklistItemInput{
		{Slug: "tests", Title: "Test suite", Weight: 3},
		{Title: "Security Scan", Category: "security", AutoEvaluated: true},
	})
	if err != nil {
		t.Fatalf("ImportChecklist() error = %v", err)
	}
	if result.Created != 1 || result.Updated != 1 {
		t.Fatalf("ImportChecklist() = %+v", result)
	}

	tests, err := svc.GetChecklistItem(context.Background(), "tests")
	if err != nil || tests == nil {
		t.Fatalf("GetChecklistItem() = %v, %v", tests, err)
	}
	if tests.Title != "Test suite" || tests.Weight != 3 {
		t.Fatalf("tests = %+v", tests)
	}
	scan, err := svc.GetChecklistItem(context.Background(), "security-scan")
	if err != nil || scan == nil || !scan.AutoEvaluated {
		t.Fatalf("security-scan = %v, %v", scan, err)
	}
}

func TestImportChecklistRejectsWholeBatch(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.ImportChecklist(context.Background(), []CreateChecklistItemInput{
		{Slug: "ok", Title: "OK"},
		{Slug: "broken"},
	})
	if !errors.Is(err, domainreadiness.ErrTitleRequired) {
		t.Fatalf("ImportChecklist() error = %v, want ErrTitleRequired", err)
	}
	listing, err := svc.ListChecklist(context.Background(), ListChecklistInput{})
	if err != nil {
		t.Fatalf("ListChecklist() error = %v", err)
	}
	if listing.Total != 0 {
		t.Fatalf("items after rejected import = %d, want 0", listing.Total)
	}
}

func gateWeight(items []domainreadiness.ChecklistItem, slug string) (int, bool) {
	for _, item := range items {
		if item.Slug == slug {
			return item.Weight, true
		}
	}
	return 0, false
}
