package model

type ReleaseRun struct {
	RunID                 uint64  `gorm:"column:run_id;primaryKey;autoIncrement"`
	PublicID              string  `gorm:"column:public_id;type:text;not null;uniqueIndex"`
	VersionTag            string  `gorm:"column:version_tag;type:text;not null;index"`
	Environment           string  `gorm:"column:environment;type:text;not null;index"`
	Status                string  `gorm:"column:status;type:text;not null;index"`
	InitiatedByEmail      string  `gorm:"column:initiated_by_email;type:text;not null"`
	InitiatedByName       string  `gorm:"column:initiated_by_name;type:text;not null;default:''"`
	ScheduledAt           string  `gorm:"column:scheduled_at;type:text;not null"`
	StartedAt             *string `gorm:"column:started_at;type:text"`
	CompletedAt           *string `gorm:"column:completed_at;type:text"`
	ChangeWindowStart     *string `gorm:"column:change_window_start;type:text"`
	ChangeWindowEnd       *string `gorm:"column:change_window_end;type:text"`
	SummaryNotes          string  `gorm:"column:summary_notes;type:text;not null;default:''"`
	ChecklistSnapshotJSON string  `gorm:"column:checklist_snapshot_json;type:text;not null;default:'[]'"`
	MetadataJSON          string  `gorm:"column:metadata_json;type:text;not null;default:'{}'"`
	CreatedAt             string  `gorm:"column:created_at;type:text;not null"`
	UpdatedAt             string  `gorm:"column:updated_at;type:text;not null"`
}

func (ReleaseRun) TableName() string {
	return "release_runs"
}
