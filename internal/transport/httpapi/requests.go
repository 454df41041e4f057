package httpapi

import (
	"time"

	domainreadiness "releasegate/internal/domain/readiness"
	"releasegate/internal/usecase/readiness"
)

type CreateChecklistItemRequest struct {
	Slug              string                          `json:"slug"`
	Category          string                          `json:"category"`
	Title             string                          `json:"title" validate:"required"`
	Description       string                          `json:"description"`
	AutoEvaluated     bool                            `json:"autoEvaluated"`
	Weight            any                             `json:"weight"`
	DefaultOwnerEmail string                          `json:"defaultOwnerEmail"`
	SuccessCriteria   domainreadiness.SuccessCriteria `json:"successCriteria"`
}

func (r CreateChecklistItemRequest) ToInput() readiness.CreateChecklistItemInput {
	return readiness.CreateChecklistItemInput{
		Slug:              r.Slug,
		Category:          r.Category,
		Title:             r.Title,
		Description:       r.Description,
		AutoEvaluated:     r.AutoEvaluated,
		Weight:            r.Weight,
		DefaultOwnerEmail: r.DefaultOwnerEmail,
		SuccessCriteria:   r.SuccessCriteria,
	}
}

// UpdateChecklistItemRequest is a partial update; absent fields are kept.
type UpdateChecklistItemRequest struct {
	Category          *string                          `json:"category"`
	Title             *string                          `json:"title"`
	Description       *string                          `json:"description"`
	AutoEvaluated     *bool                            `json:"autoEvaluated"`
	Weight            any                              `json:"weight"`
	DefaultOwnerEmail *string                          `json:"defaultOwnerEmail"`
	SuccessCriteria   *domainreadiness.SuccessCriteria `json:"successCriteria"`
}

func (r UpdateChecklistItemRequest) ToPatch() domainreadiness.ChecklistPatch {
	patch := domainreadiness.ChecklistPatch{
		Category:          r.Category,
		Title:             r.Title,
		Description:       r.Description,
		AutoEvaluated:     r.AutoEvaluated,
		DefaultOwnerEmail: r.DefaultOwnerEmail,
		SuccessCriteria:   r.SuccessCriteria,
	}
	if r.Weight != nil {
		weight := domainreadiness.ParseWeight(r.Weight)
		patch.Weight = &weight
	}
	return patch
}

type InitialGateRequest struct {
	Status          string                       `json:"status"`
	OwnerEmail      string                       `json:"ownerEmail"`
	Metrics         *domainreadiness.GateMetrics `json:"metrics"`
	Notes           string                       `json:"notes"`
	LastEvaluatedAt *time.Time                   `json:"lastEvaluatedAt"`
}

type ScheduleRunRequest struct {
	VersionTag        string                        `json:"versionTag" validate:"required"`
	Environment       string                        `json:"environment"`
	InitiatedByEmail  string                        `json:"initiatedByEmail" validate:"required"`
	InitiatedByName   string                        `json:"initiatedByName"`
	ScheduledAt       *time.Time                    `json:"scheduledAt"`
	ChangeWindowStart *time.Time                    `json:"changeWindowStart"`
	ChangeWindowEnd   *time.Time                    `json:"changeWindowEnd"`
	SummaryNotes      string                        `json:"summaryNotes"`
	Metadata          domainreadiness.RunMetadata   `json:"metadata"`
	InitialGates      map[string]InitialGateRequest `json:"initialGates"`
}

func (r ScheduleRunRequest) ToInput() readiness.ScheduleReleaseRunInput {
	input := readiness.ScheduleReleaseRunInput{
		VersionTag:        r.VersionTag,
		Environment:       r.Environment,
		InitiatedByEmail:  r.InitiatedByEmail,
		InitiatedByName:   r.InitiatedByName,
		ScheduledAt:       r.ScheduledAt,
		ChangeWindowStart: r.ChangeWindowStart,
		ChangeWindowEnd:   r.ChangeWindowEnd,
		SummaryNotes:      r.SummaryNotes,
		Metadata:          r.Metadata,
	}
	if len(r.InitialGates) > 0 {
		input.InitialGates = make(map[string]readiness.InitialGate, len(r.InitialGates))
		for key, gate := range r.InitialGates {
			input.InitialGates[key] = readiness.InitialGate{
				Status:          gate.Status,
				OwnerEmail:      gate.OwnerEmail,
				Metrics:         gate.Metrics,
				Notes:           gate.Notes,
				LastEvaluatedAt: gate.LastEvaluatedAt,
			}
		}
	}
	return input
}

type RecordGateRequest struct {
	Status          *string                      `json:"status"`
	OwnerEmail      *string                      `json:"ownerEmail"`
	Metrics         *domainreadiness.GateMetrics `json:"metrics"`
	Notes           *string                      `json:"notes"`
	EvidenceURL     *string                      `json:"evidenceUrl"`
	LastEvaluatedAt *time.Time                   `json:"lastEvaluatedAt"`
}

func (r RecordGateRequest) ToInput(runID string, gateKey string) readiness.RecordGateEvaluationInput {
	return readiness.RecordGateEvaluationInput{
		RunID:           runID,
		GateKey:         gateKey,
		Status:          r.Status,
		OwnerEmail:      r.OwnerEmail,
		Metrics:         r.Metrics,
		Notes:           r.Notes,
		EvidenceURL:     r.EvidenceURL,
		LastEvaluatedAt: r.LastEvaluatedAt,
	}
}

type TransitionRunRequest struct {
	Status string `json:"status" validate:"required"`
}

type RunListResponse struct {
	Items []domainreadiness.ReleaseRun `json:"items"`
	Total int64                        `json:"total"`
}
