package readiness

import "time"

// ChecklistItem is a reusable gate definition in the catalog.
type ChecklistItem struct {
	ID                uint64          `json:"id"`
	PublicID          string          `json:"publicId"`
	Slug              string          `json:"slug"`
	Category          string          `json:"category"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	AutoEvaluated     bool            `json:"autoEvaluated"`
	Weight            int             `json:"weight"`
	DefaultOwnerEmail string          `json:"defaultOwnerEmail"`
	SuccessCriteria   SuccessCriteria `json:"successCriteria"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// Snapshot copies the item by value for embedding in a run.
func (i ChecklistItem) Snapshot() SnapshotItem {
	return SnapshotItem{
		ID:                i.ID,
		Slug:              i.Slug,
		Category:          i.Category,
		Title:             i.Title,
		Description:       i.Description,
		AutoEvaluated:     i.AutoEvaluated,
		Weight:            NormalizeWeight(i.Weight),
		DefaultOwnerEmail: i.DefaultOwnerEmail,
		SuccessCriteria:   i.SuccessCriteria.Clone(),
	}
}

// SnapshotItem is the frozen copy of a checklist item held by a run. It is
// the only source of weight and criteria for that run's gates.
type SnapshotItem struct {
	ID                uint64          `json:"id"`
	Slug              string          `json:"slug"`
	Category          string          `json:"category"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	AutoEvaluated     bool            `json:"autoEvaluated"`
	Weight            int             `json:"weight"`
	DefaultOwnerEmail string          `json:"defaultOwnerEmail"`
	SuccessCriteria   SuccessCriteria `json:"successCriteria"`
}

type ReleaseRun struct {
	ID                uint64         `json:"id"`
	PublicID          string         `json:"publicId"`
	VersionTag        string         `json:"versionTag"`
	Environment       string         `json:"environment"`
	Status            RunStatus      `json:"status"`
	InitiatedByEmail  string         `json:"initiatedByEmail"`
	InitiatedByName   string         `json:"initiatedByName"`
	ScheduledAt       time.Time      `json:"scheduledAt"`
	StartedAt         *time.Time     `json:"startedAt,omitempty"`
	CompletedAt       *time.Time     `json:"completedAt,omitempty"`
	ChangeWindowStart *time.Time     `json:"changeWindowStart,omitempty"`
	ChangeWindowEnd   *time.Time     `json:"changeWindowEnd,omitempty"`
	SummaryNotes      string         `json:"summaryNotes"`
	ChecklistSnapshot []SnapshotItem `json:"checklistSnapshot"`
	Metadata          RunMetadata    `json:"metadata"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

func (r ReleaseRun) ChangeWindow() ChangeWindow {
	return ChangeWindow{Start: r.ChangeWindowStart, End: r.ChangeWindowEnd}
}

// GateResult is the mutable evaluation record of one gate within a run.
type GateResult struct {
	ID              uint64      `json:"id"`
	PublicID        string      `json:"publicId"`
	RunID           uint64      `json:"runId"`
	ChecklistItemID *uint64     `json:"checklistItemId,omitempty"`
	GateKey         string      `json:"gateKey"`
	Status          GateStatus  `json:"status"`
	OwnerEmail      string      `json:"ownerEmail"`
	Metrics         GateMetrics `json:"metrics"`
	Notes           string      `json:"notes"`
	EvidenceURL     string      `json:"evidenceUrl"`
	LastEvaluatedAt *time.Time  `json:"lastEvaluatedAt,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// BlockingGate is a required gate that keeps a run from being ready.
type BlockingGate struct {
	GateKey    string     `json:"gateKey"`
	Status     GateStatus `json:"status"`
	OwnerEmail string     `json:"ownerEmail"`
	Notes      string     `json:"notes"`
}

type ChangeWindow struct {
	Start *time.Time
	End   *time.Time
}
