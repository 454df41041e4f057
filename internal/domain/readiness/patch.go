package readiness

import (
	"strings"
	"time"
)

// ChecklistPatch is a partial checklist item update. Nil fields are left
// untouched.
type ChecklistPatch struct {
	Category          *string
	Title             *string
	Description       *string
	AutoEvaluated     *bool
	Weight            *int
	DefaultOwnerEmail *string
	SuccessCriteria   *SuccessCriteria
}

func (p ChecklistPatch) IsEmpty() bool {
	return p.Category == nil &&
		p.Title == nil &&
		p.Description == nil &&
		p.AutoEvaluated == nil &&
		p.Weight == nil &&
		p.DefaultOwnerEmail == nil &&
		p.SuccessCriteria == nil
}

// Normalized returns the patch with the catalog's normalization rules applied
// to the fields it carries.
func (p ChecklistPatch) Normalized() ChecklistPatch {
	out := p
	if p.Category != nil {
		out.Category = ptr(NormalizeCategory(*p.Category))
	}
	if p.Title != nil {
		out.Title = ptr(strings.TrimSpace(*p.Title))
	}
	if p.Weight != nil {
		out.Weight = ptr(NormalizeWeight(*p.Weight))
	}
	if p.DefaultOwnerEmail != nil {
		out.DefaultOwnerEmail = ptr(NormalizeEmail(*p.DefaultOwnerEmail))
	}
	if p.SuccessCriteria != nil {
		out.SuccessCriteria = ptr(p.SuccessCriteria.Clone())
	}
	return out
}

func (p ChecklistPatch) Apply(item ChecklistItem) ChecklistItem {
	p = p.Normalized()
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Title != nil {
		item.Title = *p.Title
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.AutoEvaluated != nil {
		item.AutoEvaluated = *p.AutoEvaluated
	}
	if p.Weight != nil {
		item.Weight = *p.Weight
	}
	if p.DefaultOwnerEmail != nil {
		item.DefaultOwnerEmail = *p.DefaultOwnerEmail
	}
	if p.SuccessCriteria != nil {
		item.SuccessCriteria = *p.SuccessCriteria
	}
	return item
}

// GatePatch is a partial gate update, applied field by field.
type GatePatch struct {
	ChecklistItemID *uint64
	Status          *GateStatus
	OwnerEmail      *string
	Metrics         *GateMetrics
	Notes           *string
	EvidenceURL     *string
	LastEvaluatedAt *time.Time
}

func (p GatePatch) IsEmpty() bool {
	return p.ChecklistItemID == nil &&
		p.Status == nil &&
		p.OwnerEmail == nil &&
		p.Metrics == nil &&
		p.Notes == nil &&
		p.EvidenceURL == nil &&
		p.LastEvaluatedAt == nil
}

// Apply merges the patch onto gate. A gate with no status yet gets pending.
func (p GatePatch) Apply(gate GateResult) GateResult {
	if p.ChecklistItemID != nil {
		id := *p.ChecklistItemID
		gate.ChecklistItemID = &id
	}
	if p.Status != nil {
		gate.Status = *p.Status
	}
	if p.OwnerEmail != nil {
		gate.OwnerEmail = NormalizeEmail(*p.OwnerEmail)
	}
	if p.Metrics != nil {
		gate.Metrics = p.Metrics.Clone()
	}
	if p.Notes != nil {
		gate.Notes = *p.Notes
	}
	if p.EvidenceURL != nil {
		gate.EvidenceURL = strings.TrimSpace(*p.EvidenceURL)
	}
	if p.LastEvaluatedAt != nil {
		at := p.LastEvaluatedAt.UTC()
		gate.LastEvaluatedAt = &at
	}
	if gate.Status == "" {
		gate.Status = GateStatusPending
	}
	return gate
}

// NewGate builds the row created when no gate exists yet for runID/gateKey.
func NewGate(runID uint64, gateKey string, patch GatePatch) GateResult {
	return patch.Apply(GateResult{
		RunID:   runID,
		GateKey: gateKey,
		Status:  GateStatusPending,
	})
}

// RunPatch is a partial run update.
type RunPatch struct {
	Status       *RunStatus
	StartedAt    *time.Time
	CompletedAt  *time.Time
	SummaryNotes *string
	Metadata     *RunMetadata
}

func (p RunPatch) IsEmpty() bool {
	return p.Status == nil && p.StartedAt == nil && p.CompletedAt == nil && p.SummaryNotes == nil && p.Metadata == nil
}

func (p RunPatch) Apply(run ReleaseRun) ReleaseRun {
	if p.Status != nil {
		run.Status = *p.Status
	}
	if p.StartedAt != nil {
		at := p.StartedAt.UTC()
		run.StartedAt = &at
	}
	if p.CompletedAt != nil {
		at := p.CompletedAt.UTC()
		run.CompletedAt = &at
	}
	if p.SummaryNotes != nil {
		run.SummaryNotes = *p.SummaryNotes
	}
	if p.Metadata != nil {
		run.Metadata = p.Metadata.Clone()
	}
	return run
}

func ptr[T any](v T) *T {
	return &v
}
