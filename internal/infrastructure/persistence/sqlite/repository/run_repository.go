package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/gorm"

	"releasegate/internal/domain/readiness"
	"releasegate/internal/errs"
	"releasegate/internal/infrastructure/persistence/sqlite/model"
	"releasegate/internal/ports"
)

type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) Create(ctx context.Context, run readiness.ReleaseRun) (readiness.ReleaseRun, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return readiness.ReleaseRun{}, err
	}

	snapshot := run.ChecklistSnapshot
	if snapshot == nil {
		snapshot = []readiness.SnapshotItem{}
	}
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return readiness.ReleaseRun{}, errs.Wrap(err, "marshal checklist snapshot")
	}

	status := run.Status
	if status == "" {
		status = readiness.RunStatusScheduled
	}
	row := model.ReleaseRun{
		PublicID:              newPublicID(run.PublicID),
		VersionTag:            run.VersionTag,
		Environment:           run.Environment,
		Status:                string(status),
		InitiatedByEmail:      run.InitiatedByEmail,
		InitiatedByName:       run.InitiatedByName,
		ScheduledAt:           formatTime(stampOrNow(run.ScheduledAt)),
		StartedAt:             formatTimePtr(run.StartedAt),
		CompletedAt:           formatTimePtr(run.CompletedAt),
		ChangeWindowStart:     formatTimePtr(run.ChangeWindowStart),
		ChangeWindowEnd:       formatTimePtr(run.ChangeWindowEnd),
		SummaryNotes:          run.SummaryNotes,
		ChecklistSnapshotJSON: string(snapshotJSON),
		MetadataJSON:          run.Metadata.String(),
		CreatedAt:             formatTime(stampOrNow(run.CreatedAt)),
		UpdatedAt:             formatTime(stampOrNow(run.UpdatedAt)),
	}
	if err := db.Create(&row).Error; err != nil {
		return readiness.ReleaseRun{}, errs.Wrap(err, "insert release run")
	}
	return mapReleaseRun(row), nil
}

func (r *RunRepository) FindByPublicID(ctx context.Context, publicID string) (readiness.ReleaseRun, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return readiness.ReleaseRun{}, err
	}

	row, err := findRunRow(db, publicID)
	if err != nil {
		return readiness.ReleaseRun{}, err
	}
	return mapReleaseRun(row), nil
}

func (r *RunRepository) UpdateByPublicID(ctx context.Context, publicID string, patch readiness.RunPatch) (readiness.ReleaseRun, error) {
	var updated readiness.ReleaseRun
	err := inTx(ctx, r.db, func(ctx context.Context) error {
		db, err := dbFromContext(ctx, r.db)
		if err != nil {
			return err
		}

		row, err := findRunRow(db, publicID)
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			updated = mapReleaseRun(row)
			return nil
		}

		updates := map[string]any{"updated_at": formatTime(now())}
		if patch.Status != nil {
			updates["status"] = string(*patch.Status)
		}
		if patch.StartedAt != nil {
			updates["started_at"] = formatTime(*patch.StartedAt)
		}
		if patch.CompletedAt != nil {
			updates["completed_at"] = formatTime(*patch.CompletedAt)
		}
		if patch.SummaryNotes != nil {
			updates["summary_notes"] = *patch.SummaryNotes
		}
		if patch.Metadata != nil {
			updates["metadata_json"] = patch.Metadata.String()
		}
		if err := db.Model(&model.ReleaseRun{}).
			Where("run_id = ?", row.RunID).
			Updates(updates).Error; err != nil {
			return errs.Wrap(err, "update release run")
		}

		row, err = findRunRow(db, publicID)
		if err != nil {
			return err
		}
		updated = mapReleaseRun(row)
		return nil
	})
	if err != nil {
		return readiness.ReleaseRun{}, err
	}
	return updated, nil
}

func (r *RunRepository) List(ctx context.Context, filter ports.RunFilter, page ports.Page) (ports.RunPage, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.RunPage{}, err
	}

	query := db.Model(&model.ReleaseRun{})
	if env := strings.TrimSpace(filter.Environment); env != "" {
		query = query.Where("environment = ?", env)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			statuses = append(statuses, string(status))
		}
		query = query.Where("status IN ?", statuses)
	}
	if tag := strings.TrimSpace(filter.VersionTag); tag != "" {
		query = query.Where("version_tag = ?", tag)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return ports.RunPage{}, errs.Wrap(err, "count release runs")
	}

	var rows []model.ReleaseRun
	if err := applyPage(query.Order("scheduled_at desc").Order("run_id desc"), page).Find(&rows).Error; err != nil {
		return ports.RunPage{}, errs.Wrap(err, "query release runs")
	}

	items := make([]readiness.ReleaseRun, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapReleaseRun(row))
	}
	return ports.RunPage{Items: items, Total: total}, nil
}

// StatusBreakdown counts runs per status. An empty environment counts all.
func (r *RunRepository) StatusBreakdown(ctx context.Context, environment string) (map[readiness.RunStatus]int64, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.ReleaseRun{}).Select("status, count(*) as count").Group("status")
	if env := strings.TrimSpace(environment); env != "" {
		query = query.Where("environment = ?", env)
	}

	var rows []struct {
		Status string
		Count  int64
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query run status breakdown")
	}

	out := make(map[readiness.RunStatus]int64, len(rows))
	for _, row := range rows {
		out[readiness.RunStatus(row.Status)] = row.Count
	}
	return out, nil
}

func findRunRow(db *gorm.DB, publicID string) (model.ReleaseRun, error) {
	var row model.ReleaseRun
	if err := db.Where("public_id = ?", strings.TrimSpace(publicID)).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.ReleaseRun{}, ports.ErrRunNotFound
		}
		return model.ReleaseRun{}, errs.Wrap(err, "query release run")
	}
	return row, nil
}

func mapReleaseRun(row model.ReleaseRun) readiness.ReleaseRun {
	return readiness.ReleaseRun{
		ID:                row.RunID,
		PublicID:          row.PublicID,
		VersionTag:        row.VersionTag,
		Environment:       row.Environment,
		Status:            readiness.RunStatus(row.Status),
		InitiatedByEmail:  row.InitiatedByEmail,
		InitiatedByName:   row.InitiatedByName,
		ScheduledAt:       parseTime(row.ScheduledAt),
		StartedAt:         parseTimePtr(row.StartedAt),
		CompletedAt:       parseTimePtr(row.CompletedAt),
		ChangeWindowStart: parseTimePtr(row.ChangeWindowStart),
		ChangeWindowEnd:   parseTimePtr(row.ChangeWindowEnd),
		SummaryNotes:      row.SummaryNotes,
		ChecklistSnapshot: parseSnapshot(row.ChecklistSnapshotJSON),
		Metadata:          readiness.ParseRunMetadata(row.MetadataJSON),
		CreatedAt:         parseTime(row.CreatedAt),
		UpdatedAt:         parseTime(row.UpdatedAt),
	}
}

// parseSnapshot reads a stored snapshot; malformed text yields an empty one.
func parseSnapshot(raw string) []readiness.SnapshotItem {
	var items []readiness.SnapshotItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil || items == nil {
		return []readiness.SnapshotItem{}
	}
	for i := range items {
		items[i].Weight = readiness.NormalizeWeight(items[i].Weight)
	}
	return items
}
