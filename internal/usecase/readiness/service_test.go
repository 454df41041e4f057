package readiness

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	domainreadiness "releasegate/internal/domain/readiness"
	"releasegate/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "releasegate/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "releasegate/internal/infrastructure/persistence/sqlite/uow"
	"releasegate/internal/ports"
)

type recordingSink struct {
	mu    sync.Mutex
	gates []ports.GateEvaluationEvent
	runs  []ports.RunStatusEvent
}

func (s *recordingSink) RecordGateEvaluation(_ context.Context, event ports.GateEvaluationEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gates = append(s.gates, event)
}

func (s *recordingSink) RecordRunStatus(_ context.Context, event ports.RunStatusEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, event)
}

type panickingSink struct{}

func (panickingSink) RecordGateEvaluation(context.Context, ports.GateEvaluationEvent) {
	panic("sink down")
}

func (panickingSink) RecordRunStatus(context.Context, ports.RunStatusEvent) {
	panic("sink down")
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "engine.sqlite") + "?_pragma=busy_timeout(5000)"
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func newServiceWithSink(t *testing.T, sink ports.MetricsSink, cfg EngineConfig) *Service {
	t.Helper()
	return newServiceOnDB(t, setupDB(t), sink, cfg)
}

func newServiceOnDB(t *testing.T, db *gorm.DB, sink ports.MetricsSink, cfg EngineConfig) *Service {
	t.Helper()
	svc := NewService(
		sqliterepo.NewChecklistRepository(db),
		sqliterepo.NewRunRepository(db),
		sqliterepo.NewGateRepository(db),
		sqliteuow.NewUnitOfWork(db),
		sink,
		cfg,
	)
	clock := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc
}

func setupService(t *testing.T) (*Service, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	return newServiceWithSink(t, sink, NewEngineConfig(nil, map[string]float64{"minCoverage": 0.8}, "")), sink
}

func mustCreateItem(t *testing.T, svc *Service, input CreateChecklistItemInput) domainreadiness.ChecklistItem {
	t.Helper()
	item, err := svc.CreateChecklistItem(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateChecklistItem(%s) error = %v", input.Title, err)
	}
	return item
}

// seedScenarioCatalog creates the two auto-evaluated gates used by the
// readiness scenarios: coverage (weight 1) and security (weight 3).
func seedScenarioCatalog(t *testing.T, svc *Service) {
	t.Helper()
	mustCreateItem(t, svc, CreateChecklistItemInput{
		Slug:            "coverage",
		Title:           "Coverage",
		Category:        "quality",
		AutoEvaluated:   true,
		Weight:          1,
		SuccessCriteria: domainreadiness.ParseSuccessCriteria(`{"minCoverage":0.9}`),
	})
	mustCreateItem(t, svc, CreateChecklistItemInput{
		Slug:            "security",
		Title:           "Security scan",
		Category:        "security",
		AutoEvaluated:   true,
		Weight:          3,
		SuccessCriteria: domainreadiness.ParseSuccessCriteria(`{"maxCriticalVulnerabilities":0}`),
	})
}

func mustSchedule(t *testing.T, svc *Service, input ScheduleReleaseRunInput) RunWithGates {
	t.Helper()
	scheduled, err := svc.ScheduleReleaseRun(context.Background(), input)
	if err != nil {
		t.Fatalf("ScheduleReleaseRun() error = %v", err)
	}
	return scheduled
}

func mustEvaluate(t *testing.T, svc *Service, runID string) RunEvaluation {
	t.Helper()
	result, err := svc.EvaluateRun(context.Background(), runID)
	if err != nil {
		t.Fatalf("EvaluateRun() error = %v", err)
	}
	if result == nil {
		t.Fatalf("EvaluateRun() = nil, want result")
	}
	return *result
}

func gateByKey(gates []domainreadiness.GateResult, key string) (domainreadiness.GateResult, bool) {
	for _, gate := range gates {
		if gate.GateKey == key {
			return gate, true
		}
	}
	return domainreadiness.GateResult{}, false
}

func strPtr(v string) *string {
	return &v
}
