package ports

import (
	"context"
	"errors"

	"releasegate/internal/domain/readiness"
)

var (
	ErrChecklistItemNotFound = errors.New("checklist item not found")
	ErrRunNotFound           = errors.New("release run not found")
)

// Page is limit/offset pagination. Limit <= 0 means no limit.
type Page struct {
	Limit  int
	Offset int
}

type ChecklistFilter struct {
	Category string
}

type ChecklistPage struct {
	Items []readiness.ChecklistItem
	Total int64
}

// ChecklistRepository stores catalog items. List orders by weight desc, then
// slug asc.
type ChecklistRepository interface {
	List(ctx context.Context, filter ChecklistFilter, page Page) (ChecklistPage, error)
	Create(ctx context.Context, item readiness.ChecklistItem) (readiness.ChecklistItem, error)
	FindBySlug(ctx context.Context, slug string) (readiness.ChecklistItem, error)
	UpdateBySlug(ctx context.Context, slug string, patch readiness.ChecklistPatch) (readiness.ChecklistItem, error)
	CategoryBreakdown(ctx context.Context) (map[string]int64, error)
}

type RunFilter struct {
	Environment string
	Statuses    []readiness.RunStatus
	VersionTag  string
}

type RunPage struct {
	Items []readiness.ReleaseRun
	Total int64
}

// RunRepository stores release runs. List returns the newest runs first.
type RunRepository interface {
	Create(ctx context.Context, run readiness.ReleaseRun) (readiness.ReleaseRun, error)
	FindByPublicID(ctx context.Context, publicID string) (readiness.ReleaseRun, error)
	UpdateByPublicID(ctx context.Context, publicID string, patch readiness.RunPatch) (readiness.ReleaseRun, error)
	List(ctx context.Context, filter RunFilter, page Page) (RunPage, error)
	StatusBreakdown(ctx context.Context, environment string) (map[readiness.RunStatus]int64, error)
}

// GateRepository stores gate results. UpsertByRunAndGate must be atomic per
// (runID, gateKey): at most one row exists per pair.
type GateRepository interface {
	Create(ctx context.Context, gate readiness.GateResult) (readiness.GateResult, error)
	UpsertByRunAndGate(ctx context.Context, runID uint64, gateKey string, patch readiness.GatePatch) (readiness.GateResult, error)
	ListByRunID(ctx context.Context, runID uint64) ([]readiness.GateResult, error)
}
