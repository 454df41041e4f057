package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"releasegate/internal/domain/readiness"
	"releasegate/internal/errs"
	"releasegate/internal/infrastructure/persistence/sqlite/model"
)

type GateRepository struct {
	db *gorm.DB
}

func NewGateRepository(db *gorm.DB) *GateRepository {
	return &GateRepository{db: db}
}

func (r *GateRepository) Create(ctx context.Context, gate readiness.GateResult) (readiness.GateResult, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return readiness.GateResult{}, err
	}

	row := gateRow(gate)
	if err := db.Create(&row).Error; err != nil {
		return readiness.GateResult{}, errs.Wrapf(err, "insert gate result %q", gate.GateKey)
	}
	return mapGateResult(row), nil
}

// UpsertByRunAndGate inserts the gate or, when (runID, gateKey) already
// exists, overwrites only the columns the patch supplies. The conflict is
// resolved by sqlite in a single statement.
func (r *GateRepository) UpsertByRunAndGate(ctx context.Context, runID uint64, gateKey string, patch readiness.GatePatch) (readiness.GateResult, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return readiness.GateResult{}, err
	}
	if gateKey == "" {
		return readiness.GateResult{}, readiness.ErrGateKeyRequired
	}

	row := gateRow(readiness.NewGate(runID, gateKey, patch))
	conflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "run_id"}, {Name: "gate_key"}},
	}
	if columns := patchColumns(patch); len(columns) > 0 {
		conflict.DoUpdates = clause.AssignmentColumns(append(columns, "updated_at"))
	} else {
		conflict.DoNothing = true
	}
	if err := db.Clauses(conflict).Create(&row).Error; err != nil {
		return readiness.GateResult{}, errs.Wrapf(err, "upsert gate result %q", gateKey)
	}

	var stored model.GateResult
	if err := db.Where("run_id = ? AND gate_key = ?", runID, gateKey).Take(&stored).Error; err != nil {
		return readiness.GateResult{}, errs.Wrapf(err, "reload gate result %q", gateKey)
	}
	return mapGateResult(stored), nil
}

func (r *GateRepository) ListByRunID(ctx context.Context, runID uint64) ([]readiness.GateResult, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.GateResult
	if err := db.Where("run_id = ?", runID).Order("gate_result_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query gate results")
	}

	items := make([]readiness.GateResult, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapGateResult(row))
	}
	return items, nil
}

func patchColumns(patch readiness.GatePatch) []string {
	var columns []string
	if patch.ChecklistItemID != nil {
		columns = append(columns, "checklist_item_id")
	}
	if patch.Status != nil {
		columns = append(columns, "status")
	}
	if patch.OwnerEmail != nil {
		columns = append(columns, "owner_email")
	}
	if patch.Metrics != nil {
		columns = append(columns, "metrics_json")
	}
	if patch.Notes != nil {
		columns = append(columns, "notes")
	}
	if patch.EvidenceURL != nil {
		columns = append(columns, "evidence_url")
	}
	if patch.LastEvaluatedAt != nil {
		columns = append(columns, "last_evaluated_at")
	}
	return columns
}

func gateRow(gate readiness.GateResult) model.GateResult {
	status := gate.Status
	if status == "" {
		status = readiness.GateStatusPending
	}
	return model.GateResult{
		PublicID:        newPublicID(gate.PublicID),
		RunID:           gate.RunID,
		GateKey:         gate.GateKey,
		ChecklistItemID: gate.ChecklistItemID,
		Status:          string(status),
		OwnerEmail:      gate.OwnerEmail,
		MetricsJSON:     gate.Metrics.String(),
		Notes:           gate.Notes,
		EvidenceURL:     gate.EvidenceURL,
		LastEvaluatedAt: formatTimePtr(gate.LastEvaluatedAt),
		CreatedAt:       formatTime(stampOrNow(gate.CreatedAt)),
		UpdatedAt:       formatTime(stampOrNow(gate.UpdatedAt)),
	}
}

func mapGateResult(row model.GateResult) readiness.GateResult {
	return readiness.GateResult{
		ID:              row.GateResultID,
		PublicID:        row.PublicID,
		RunID:           row.RunID,
		ChecklistItemID: row.ChecklistItemID,
		GateKey:         row.GateKey,
		Status:          readiness.GateStatus(row.Status),
		OwnerEmail:      row.OwnerEmail,
		Metrics:         readiness.ParseGateMetrics(row.MetricsJSON),
		Notes:           row.Notes,
		EvidenceURL:     row.EvidenceURL,
		LastEvaluatedAt: parseTimePtr(row.LastEvaluatedAt),
		CreatedAt:       parseTime(row.CreatedAt),
		UpdatedAt:       parseTime(row.UpdatedAt),
	}
}
