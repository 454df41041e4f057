package readiness

import (
	"testing"
	"time"
)

func TestGatePatchApplyKeepsUnsuppliedFields(t *testing.T) {
	at := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	gate := GateResult{
		GateKey:     "security-scan",
		Status:      GateStatusInProgress,
		OwnerEmail:  "sec@example.com",
		Metrics:     GateMetrics{CriticalVulnerabilities: f(0)},
		Notes:       "scan running",
		EvidenceURL: "https://ci.example.com/1",
	}

	waived := GateStatusWaived
	got := GatePatch{Status: &waived, LastEvaluatedAt: &at}.Apply(gate)

	if got.Status != GateStatusWaived {
		t.Fatalf("Status = %q", got.Status)
	}
	if got.OwnerEmail != "sec@example.com" || got.Notes != "scan running" || got.EvidenceURL != "https://ci.example.com/1" {
		t.Fatalf("unsupplied fields changed: %+v", got)
	}
	if got.Metrics.CriticalVulnerabilities == nil || *got.Metrics.CriticalVulnerabilities != 0 {
		t.Fatalf("Metrics changed: %+v", got.Metrics)
	}
	if got.LastEvaluatedAt == nil || !got.LastEvaluatedAt.Equal(at) {
		t.Fatalf("LastEvaluatedAt = %v", got.LastEvaluatedAt)
	}
}

func TestNewGateDefaults(t *testing.T) {
	owner := " QA@Example.com "
	got := NewGate(7, "smoke", GatePatch{OwnerEmail: &owner})
	if got.Status != GateStatusPending {
		t.Fatalf("Status = %q, want pending", got.Status)
	}
	if got.OwnerEmail != "qa@example.com" {
		t.Fatalf("OwnerEmail = %q", got.OwnerEmail)
	}
	if got.RunID != 7 || got.GateKey != "smoke" {
		t.Fatalf("NewGate() = %+v", got)
	}
}

func TestChecklistPatchApply(t *testing.T) {
	item := ChecklistItem{Slug: "smoke", Category: "quality", Title: "Smoke", Weight: 2}
	if !(ChecklistPatch{}).IsEmpty() {
		t.Fatalf("empty patch IsEmpty() = false")
	}

	weight := -3
	category := " Reliability "
	got := ChecklistPatch{Weight: &weight, Category: &category}.Apply(item)
	if got.Weight != 1 {
		t.Fatalf("Weight = %d, want 1", got.Weight)
	}
	if got.Category != "reliability" {
		t.Fatalf("Category = %q", got.Category)
	}
	if got.Title != "Smoke" || got.Slug != "smoke" {
		t.Fatalf("unsupplied fields changed: %+v", got)
	}
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	item := ChecklistItem{
		Slug:            "coverage",
		Weight:          0,
		SuccessCriteria: SuccessCriteria{MinCoverage: f(0.9), RequiredEvidence: []string{"report"}},
	}
	snap := item.Snapshot()
	*item.SuccessCriteria.MinCoverage = 0.5
	item.SuccessCriteria.RequiredEvidence[0] = "changed"

	if *snap.SuccessCriteria.MinCoverage != 0.9 || snap.SuccessCriteria.RequiredEvidence[0] != "report" {
		t.Fatalf("snapshot shares state with catalog item: %+v", snap.SuccessCriteria)
	}
	if snap.Weight != 1 {
		t.Fatalf("snapshot weight = %d, want 1", snap.Weight)
	}
}
