package model

// GateResult rows are unique per (run_id, gate_key); upserts conflict on that
// pair.
type GateResult struct {
	GateResultID    uint64  `gorm:"column:gate_result_id;primaryKey;autoIncrement"`
	PublicID        string  `gorm:"column:public_id;type:text;not null;uniqueIndex"`
	RunID           uint64  `gorm:"column:run_id;not null;uniqueIndex:idx_gate_results_run_gate,priority:1"`
	GateKey         string  `gorm:"column:gate_key;type:text;not null;uniqueIndex:idx_gate_results_run_gate,priority:2"`
	ChecklistItemID *uint64 `gorm:"column:checklist_item_id"`
	Status          string  `gorm:"column:status;type:text;not null;index"`
	OwnerEmail      string  `gorm:"column:owner_email;type:text;not null;default:''"`
	MetricsJSON     string  `gorm:"column:metrics_json;type:text;not null;default:'{}'"`
	Notes           string  `gorm:"column:notes;type:text;not null;default:''"`
	EvidenceURL     string  `gorm:"column:evidence_url;type:text;not null;default:''"`
	LastEvaluatedAt *string `gorm:"column:last_evaluated_at;type:text"`
	CreatedAt       string  `gorm:"column:created_at;type:text;not null"`
	UpdatedAt       string  `gorm:"column:updated_at;type:text;not null"`
}

func (GateResult) TableName() string {
	return "gate_results"
}
