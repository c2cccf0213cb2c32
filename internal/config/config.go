// Package config loads motorstart settings from defaults, an optional file
// and MOTORSTART_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/signalsfoundry/motorstart/core"
	"github.com/signalsfoundry/motorstart/internal/logging"
	"github.com/signalsfoundry/motorstart/internal/observability"
)

// EnvPrefix is prepended to every environment override, e.g.
// MOTORSTART_ENGINE_CONCURRENCY.
const EnvPrefix = "MOTORSTART"

type Config struct {
	Log     LogOptions     `json:"log" mapstructure:"log"`
	Metrics MetricsOptions `json:"metrics" mapstructure:"metrics"`
	Tracing TracingOptions `json:"tracing" mapstructure:"tracing"`
	Engine  EngineOptions  `json:"engine" mapstructure:"engine"`
}

type LogOptions struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" mapstructure:"level"`
	// Format is text or json.
	Format string `json:"format" mapstructure:"format"`
	// Backend is slog or zap.
	Backend   string `json:"backend" mapstructure:"backend"`
	AddSource bool   `json:"add-source" mapstructure:"add-source"`
}

type MetricsOptions struct {
	// Addr is where watch mode serves /metrics. Empty disables the server.
	Addr string `json:"addr" mapstructure:"addr"`
}

type TracingOptions struct {
	Enabled     bool    `json:"enabled" mapstructure:"enabled"`
	ServiceName string  `json:"service-name" mapstructure:"service-name"`
	Exporter    string  `json:"exporter" mapstructure:"exporter"`
	Endpoint    string  `json:"endpoint" mapstructure:"endpoint"`
	SampleRatio float64 `json:"sample-ratio" mapstructure:"sample-ratio"`
}

// EngineOptions are the calculation defaults applied to study entries that
// leave them out.
type EngineOptions struct {
	AmbientTempC         float64 `json:"ambient-temp-c" mapstructure:"ambient-temp-c"`
	TargetPowerFactor    float64 `json:"target-power-factor" mapstructure:"target-power-factor"`
	MaxVoltageDipPercent float64 `json:"max-voltage-dip-percent" mapstructure:"max-voltage-dip-percent"`
	InertiaTable         string  `json:"inertia-table" mapstructure:"inertia-table"`
	Concurrency          int     `json:"concurrency" mapstructure:"concurrency"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogOptions{Level: "info", Format: "text", Backend: "slog"},
		Metrics: MetricsOptions{
			Addr: ":9090",
		},
		Tracing: TracingOptions{
			ServiceName: "motorstart",
			Exporter:    "stdout",
			SampleRatio: 1,
		},
		Engine: EngineOptions{
			AmbientTempC:         30,
			TargetPowerFactor:    core.DefaultTargetPowerFactor,
			MaxVoltageDipPercent: core.DefaultMaxVoltageDipPercent,
			InertiaTable:         string(core.InertiaAcceleration),
			Concurrency:          4,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.backend", d.Log.Backend)
	v.SetDefault("log.add-source", d.Log.AddSource)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.service-name", d.Tracing.ServiceName)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
	v.SetDefault("tracing.sample-ratio", d.Tracing.SampleRatio)
	v.SetDefault("engine.ambient-temp-c", d.Engine.AmbientTempC)
	v.SetDefault("engine.target-power-factor", d.Engine.TargetPowerFactor)
	v.SetDefault("engine.max-voltage-dip-percent", d.Engine.MaxVoltageDipPercent)
	v.SetDefault("engine.inertia-table", d.Engine.InertiaTable)
	v.SetDefault("engine.concurrency", d.Engine.Concurrency)
}

// Load reads configuration from path (YAML, JSON or TOML by extension) when
// non-empty, then applies environment overrides. Keys map to variables by
// upper-casing and replacing "." and "-" with "_".
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Log.Format) {
	case "text", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format: unsupported %q", c.Log.Format))
	}
	switch strings.ToLower(c.Log.Backend) {
	case "slog", "zap", "":
	default:
		errs = append(errs, fmt.Errorf("log.backend: unsupported %q", c.Log.Backend))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample-ratio: must be in [0,1], got %v", c.Tracing.SampleRatio))
	}
	if !(c.Engine.TargetPowerFactor > 0) || c.Engine.TargetPowerFactor > 1 {
		errs = append(errs, fmt.Errorf("engine.target-power-factor: must be in (0,1], got %v", c.Engine.TargetPowerFactor))
	}
	if !(c.Engine.MaxVoltageDipPercent > 0) {
		errs = append(errs, fmt.Errorf("engine.max-voltage-dip-percent: must be > 0, got %v", c.Engine.MaxVoltageDipPercent))
	}
	switch core.InertiaTable(c.Engine.InertiaTable) {
	case core.InertiaAcceleration, core.InertiaReference:
	default:
		errs = append(errs, fmt.Errorf("engine.inertia-table: unknown %q", c.Engine.InertiaTable))
	}
	if c.Engine.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("engine.concurrency: must be >= 1, got %d", c.Engine.Concurrency))
	}
	return errors.Join(errs...)
}

// LoggingConfig converts the log options for logging.New.
func (c Config) LoggingConfig() logging.Config {
	return logging.Config{
		Level:     c.Log.Level,
		Format:    c.Log.Format,
		Backend:   c.Log.Backend,
		AddSource: c.Log.AddSource,
	}
}

// TracingConfig converts the tracing options for observability.InitTracing.
func (c Config) TracingConfig() observability.TracingConfig {
	return observability.TracingConfig{
		Enabled:     c.Tracing.Enabled,
		ServiceName: c.Tracing.ServiceName,
		Exporter:    c.Tracing.Exporter,
		Endpoint:    c.Tracing.Endpoint,
		SampleRatio: c.Tracing.SampleRatio,
	}
}

// Analyzer builds an engine analyzer from the engine options.
func (c Config) Analyzer() *core.Analyzer {
	return &core.Analyzer{
		InertiaTable:         core.InertiaTable(c.Engine.InertiaTable),
		MaxVoltageDipPercent: c.Engine.MaxVoltageDipPercent,
	}
}
