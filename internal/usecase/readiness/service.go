package readiness

import (
	"context"
	"errors"
	"strings"
	"time"

	domainreadiness "releasegate/internal/domain/readiness"
	"releasegate/internal/errs"
	"releasegate/internal/ports"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 500

	dashboardActiveRuns = 5
)

// EngineConfig is read-only for the service's lifetime. Build it with
// NewEngineConfig so the service never shares slices or maps with callers.
type EngineConfig struct {
	RequiredGates      []string
	Thresholds         map[string]float64
	DefaultEnvironment string
}

func NewEngineConfig(requiredGates []string, thresholds map[string]float64, defaultEnvironment string) EngineConfig {
	cfg := EngineConfig{
		RequiredGates:      make([]string, 0, len(requiredGates)),
		Thresholds:         make(map[string]float64, len(thresholds)),
		DefaultEnvironment: domainreadiness.NormalizeEnvironment(defaultEnvironment, domainreadiness.DefaultEnvironment),
	}
	seen := make(map[string]struct{}, len(requiredGates))
	for _, gate := range requiredGates {
		gate = strings.TrimSpace(gate)
		if gate == "" {
			continue
		}
		if _, ok := seen[gate]; ok {
			continue
		}
		seen[gate] = struct{}{}
		cfg.RequiredGates = append(cfg.RequiredGates, gate)
	}
	for key, value := range thresholds {
		cfg.Thresholds[key] = value
	}
	return cfg
}

func (c EngineConfig) clone() EngineConfig {
	return NewEngineConfig(c.RequiredGates, c.Thresholds, c.DefaultEnvironment)
}

type Service struct {
	checklist ports.ChecklistRepository
	runs      ports.RunRepository
	gates     ports.GateRepository
	uow       ports.UnitOfWork
	sink      ports.MetricsSink
	cfg       EngineConfig
	now       func() time.Time
}

// NewService wires the readiness engine. A nil sink disables metric emission.
func NewService(
	checklist ports.ChecklistRepository,
	runs ports.RunRepository,
	gates ports.GateRepository,
	uow ports.UnitOfWork,
	sink ports.MetricsSink,
	cfg EngineConfig,
) *Service {
	return &Service{
		checklist: checklist,
		runs:      runs,
		gates:     gates,
		uow:       uow,
		sink:      sink,
		cfg:       cfg.clone(),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Config returns a copy of the engine configuration.
func (s *Service) Config() EngineConfig {
	return s.cfg.clone()
}

func (s *Service) ready(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.checklist == nil || s.runs == nil || s.gates == nil {
		return errors.New("readiness repositories are required")
	}
	if s.uow == nil {
		return errors.New("readiness unit of work is required")
	}
	return nil
}

func normalizePage(limit int, offset int) ports.Page {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return ports.Page{Limit: limit, Offset: offset}
}
