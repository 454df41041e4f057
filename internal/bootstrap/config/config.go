package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"releasegate/internal/bootstrap/logging"
	"releasegate/internal/errs"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Readiness ReadinessConfig `mapstructure:"readiness"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	HTTP      HTTPConfig      `mapstructure:"http"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// ReadinessConfig feeds the engine configuration. RequiredGates empty means
// every gate of a run's snapshot is required.
type ReadinessConfig struct {
	RequiredGates      []string           `mapstructure:"required_gates"`
	Thresholds         map[string]float64 `mapstructure:"thresholds"`
	DefaultEnvironment string             `mapstructure:"default_environment"`
}

type MetricsConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	NATS       NATSConfig       `mapstructure:"nats"`
}

type PrometheusConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

type NATSConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithComponent(ctx, "bootstrap.config")

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Int("required_gates", len(cfg.Readiness.RequiredGates)),
		slog.Bool("prometheus", cfg.Metrics.Prometheus.Enabled),
		slog.Bool("nats", cfg.Metrics.NATS.Enabled),
	)

	return cfg, nil
}

func validate(cfg Config) error {
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return errors.New("database.dsn is required")
	}
	if cfg.Metrics.NATS.Enabled && strings.TrimSpace(cfg.Metrics.NATS.URL) == "" {
		return errors.New("metrics.nats.url is required when nats is enabled")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "releasegate")
	v.SetDefault("app.env", "local")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", ".releasegate/state/readiness.sqlite")
	v.SetDefault("readiness.required_gates", []string{})
	v.SetDefault("readiness.thresholds", map[string]float64{})
	v.SetDefault("readiness.default_environment", "production")
	v.SetDefault("metrics.prometheus.enabled", true)
	v.SetDefault("metrics.prometheus.namespace", "releasegate")
	v.SetDefault("metrics.nats.enabled", false)
	v.SetDefault("metrics.nats.url", "nats://127.0.0.1:4222")
	v.SetDefault("metrics.nats.subject_prefix", "releasegate.readiness")
	v.SetDefault("http.addr", ":8090")
}
