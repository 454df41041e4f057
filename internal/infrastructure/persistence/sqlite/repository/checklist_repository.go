package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"releasegate/internal/domain/readiness"
	"releasegate/internal/errs"
	"releasegate/internal/infrastructure/persistence/sqlite/model"
	"releasegate/internal/ports"
)

type ChecklistRepository struct {
	db *gorm.DB
}

func NewChecklistRepository(db *gorm.DB) *ChecklistRepository {
	return &ChecklistRepository{db: db}
}

func (r *ChecklistRepository) List(ctx context.Context, filter ports.ChecklistFilter, page ports.Page) (ports.ChecklistPage, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.ChecklistPage{}, err
	}

	query := db.Model(&model.ChecklistItem{})
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", readiness.NormalizeCategory(category))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return ports.ChecklistPage{}, errs.Wrap(err, "count checklist items")
	}

	var rows []model.ChecklistItem
	if err := applyPage(query.Order("weight desc").Order("slug asc"), page).Find(&rows).Error; err != nil {
		return ports.ChecklistPage{}, errs.Wrap(err, "query checklist items")
	}

	items := make([]readiness.ChecklistItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapChecklistItem(row))
	}
	return ports.ChecklistPage{Items: items, Total: total}, nil
}

func (r *ChecklistRepository) Create(ctx context.Context, item readiness.ChecklistItem) (readiness.ChecklistItem, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return readiness.ChecklistItem{}, err
	}

	now := stampOrNow(item.CreatedAt)
	row := model.ChecklistItem{
		PublicID:            newPublicID(item.PublicID),
		Slug:                item.Slug,
		Category:            readiness.NormalizeCategory(item.Category),
		Title:               strings.TrimSpace(item.Title),
		Description:         item.Description,
		AutoEvaluated:       item.AutoEvaluated,
		Weight:              readiness.NormalizeWeight(item.Weight),
		DefaultOwnerEmail:   readiness.NormalizeEmail(item.DefaultOwnerEmail),
		SuccessCriteriaJSON: item.SuccessCriteria.String(),
		CreatedAt:           formatTime(now),
		UpdatedAt:           formatTime(stampOrNow(item.UpdatedAt)),
	}
	if err := db.Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return readiness.ChecklistItem{}, errs.Wrapf(readiness.ErrChecklistSlugExists, "insert checklist item %q", item.Slug)
		}
		return readiness.ChecklistItem{}, errs.Wrap(err, "insert checklist item")
	}
	return mapChecklistItem(row), nil
}

func (r *ChecklistRepository) FindBySlug(ctx context.Context, slug string) (readiness.ChecklistItem, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return readiness.ChecklistItem{}, err
	}

	row, err := findChecklistRow(db, slug)
	if err != nil {
		return readiness.ChecklistItem{}, err
	}
	return mapChecklistItem(row), nil
}

// UpdateBySlug merges patch onto the stored item. An empty patch is a read.
func (r *ChecklistRepository) UpdateBySlug(ctx context.Context, slug string, patch readiness.ChecklistPatch) (readiness.ChecklistItem, error) {
	var updated readiness.ChecklistItem
	err := inTx(ctx, r.db, func(ctx context.Context) error {
		db, err := dbFromContext(ctx, r.db)
		if err != nil {
			return err
		}

		row, err := findChecklistRow(db, slug)
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			updated = mapChecklistItem(row)
			return nil
		}

		merged := patch.Apply(mapChecklistItem(row))
		updates := map[string]any{
			"category":              merged.Category,
			"title":                 merged.Title,
			"description":           merged.Description,
			"auto_evaluated":        merged.AutoEvaluated,
			"weight":                merged.Weight,
			"default_owner_email":   merged.DefaultOwnerEmail,
			"success_criteria_json": merged.SuccessCriteria.String(),
			"updated_at":            formatTime(now()),
		}
		if err := db.Model(&model.ChecklistItem{}).
			Where("checklist_item_id = ?", row.ChecklistItemID).
			Updates(updates).Error; err != nil {
			return errs.Wrap(err, "update checklist item")
		}

		row, err = findChecklistRow(db, slug)
		if err != nil {
			return err
		}
		updated = mapChecklistItem(row)
		return nil
	})
	if err != nil {
		return readiness.ChecklistItem{}, err
	}
	return updated, nil
}

func (r *ChecklistRepository) CategoryBreakdown(ctx context.Context) (map[string]int64, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Category string
		Count    int64
	}
	if err := db.Model(&model.ChecklistItem{}).
		Select("category, count(*) as count").
		Group("category").
		Scan(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query checklist category breakdown")
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Category] = row.Count
	}
	return out, nil
}

func findChecklistRow(db *gorm.DB, slug string) (model.ChecklistItem, error) {
	var row model.ChecklistItem
	if err := db.Where("slug = ?", slug).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.ChecklistItem{}, ports.ErrChecklistItemNotFound
		}
		return model.ChecklistItem{}, errs.Wrap(err, "query checklist item")
	}
	return row, nil
}

func mapChecklistItem(row model.ChecklistItem) readiness.ChecklistItem {
	return readiness.ChecklistItem{
		ID:                row.ChecklistItemID,
		PublicID:          row.PublicID,
		Slug:              row.Slug,
		Category:          row.Category,
		Title:             row.Title,
		Description:       row.Description,
		AutoEvaluated:     row.AutoEvaluated,
		Weight:            readiness.NormalizeWeight(row.Weight),
		DefaultOwnerEmail: row.DefaultOwnerEmail,
		SuccessCriteria:   readiness.ParseSuccessCriteria(row.SuccessCriteriaJSON),
		CreatedAt:         parseTime(row.CreatedAt),
		UpdatedAt:         parseTime(row.UpdatedAt),
	}
}
