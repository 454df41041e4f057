package model

type ChecklistItem struct {
	ChecklistItemID     uint64 `gorm:"column:checklist_item_id;primaryKey;autoIncrement"`
	PublicID            string `gorm:"column:public_id;type:text;not null;uniqueIndex"`
	Slug                string `gorm:"column:slug;type:text;not null;uniqueIndex"`
	Category            string `gorm:"column:category;type:text;not null;index"`
	Title               string `gorm:"column:title;type:text;not null"`
	Description         string `gorm:"column:description;type:text;not null;default:''"`
	AutoEvaluated       bool   `gorm:"column:auto_evaluated;not null;default:0"`
	Weight              int    `gorm:"column:weight;not null;default:1"`
	DefaultOwnerEmail   string `gorm:"column:default_owner_email;type:text;not null;default:''"`
	SuccessCriteriaJSON string `gorm:"column:success_criteria_json;type:text;not null;default:'{}'"`
	CreatedAt           string `gorm:"column:created_at;type:text;not null"`
	UpdatedAt           string `gorm:"column:updated_at;type:text;not null"`
}

func (ChecklistItem) TableName() string {
	return "checklist_items"
}
