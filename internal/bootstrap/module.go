package bootstrap

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"releasegate/internal/bootstrap/config"
	"releasegate/internal/bootstrap/database"
	"releasegate/internal/bootstrap/logging"
	sqliterepo "releasegate/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "releasegate/internal/infrastructure/persistence/sqlite/uow"
	"releasegate/internal/infrastructure/telemetry"
	"releasegate/internal/ports"
	"releasegate/internal/usecase/readiness"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideRegistry),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewChecklistRepository,
			fx.As(new(ports.ChecklistRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewRunRepository,
			fx.As(new(ports.RunRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewGateRepository,
			fx.As(new(ports.GateRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(provideMetricsSink),
	fx.Provide(provideEngineConfig),
	fx.Provide(readiness.NewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideApp(cfg config.Config, db *gorm.DB, reg *prometheus.Registry) *App {
	return &App{
		Config:   cfg,
		DB:       db,
		Registry: reg,
	}
}

// provideMetricsSink composes the enabled sinks. A NATS connection failure
// fails startup; later publish failures are only logged.
func provideMetricsSink(lc fx.Lifecycle, ctx context.Context, cfg config.Config, reg *prometheus.Registry) (ports.MetricsSink, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	var sinks []ports.MetricsSink
	if cfg.Metrics.Prometheus.Enabled {
		sinks = append(sinks, telemetry.NewPrometheusSink(reg, cfg.Metrics.Prometheus.Namespace))
	}
	if cfg.Metrics.NATS.Enabled {
		nc, err := telemetry.Connect(logCtx, cfg.Metrics.NATS.URL)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				return nc.Drain()
			},
		})
		sinks = append(sinks, telemetry.NewNATSSink(nc, cfg.Metrics.NATS.SubjectPrefix))
	}
	if len(sinks) == 0 {
		logging.Info(logCtx, "metrics sinks disabled")
		return telemetry.Nop{}, nil
	}
	return telemetry.NewMulti(sinks...), nil
}

func provideEngineConfig(cfg config.Config) readiness.EngineConfig {
	return readiness.NewEngineConfig(
		cfg.Readiness.RequiredGates,
		cfg.Readiness.Thresholds,
		cfg.Readiness.DefaultEnvironment,
	)
}
