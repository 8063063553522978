// Package config loads the sandbox configuration: a YAML file, then
// MECHCORE_* environment overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"mechcore/internal/accessory"
	"mechcore/internal/core"
	"mechcore/internal/ledger"
	"mechcore/internal/tier"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MECHCORE_"

type Config struct {
	Server    ServerConfig      `yaml:"server" envPrefix:"SERVER_"`
	Sim       SimConfig         `yaml:"sim" envPrefix:"SIM_"`
	Tiers     tier.Thresholds   `yaml:"tiers" envPrefix:"TIER_"`
	Core      core.Spec         `yaml:"core" envPrefix:"CORE_"`
	Balance   accessory.Balance `yaml:"balance" envPrefix:"BALANCE_"`
	Storage   StorageConfig     `yaml:"storage" envPrefix:"STORAGE_"`
	LogLevel  string            `yaml:"log_level" env:"LOG_LEVEL"`
	Reconcile string            `yaml:"reconcile" env:"RECONCILE"`
}

type ServerConfig struct {
	Port        int    `yaml:"port" env:"PORT"`
	HostKey     string `yaml:"host_key" env:"HOST_KEY"`
	MetricsAddr string `yaml:"metrics_addr" env:"METRICS_ADDR"`
}

type SimConfig struct {
	// TickInterval is the wall-clock period between host ticks.
	TickInterval time.Duration `yaml:"tick_interval" env:"TICK_INTERVAL"`
	// RefreshPeriod is the simulated-time cadence of accessory refreshes.
	RefreshPeriod time.Duration `yaml:"refresh_period" env:"REFRESH_PERIOD"`
	// TargetHealth is the health of each training target.
	TargetHealth float64 `yaml:"target_health" env:"TARGET_HEALTH"`
	// DrainPerTick is the energy a worn core spends each host tick.
	DrainPerTick int `yaml:"drain_per_tick" env:"DRAIN_PER_TICK"`
}

type StorageConfig struct {
	Path       string `yaml:"path" env:"PATH"`
	InMemory   bool   `yaml:"in_memory" env:"IN_MEMORY"`
	SyncWrites bool   `yaml:"sync_writes" env:"SYNC_WRITES"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: 2222, HostKey: "server_host_key"},
		Sim: SimConfig{
			TickInterval:  50 * time.Millisecond,
			RefreshPeriod: time.Second,
			TargetHealth:  200,
			DrainPerTick:  5,
		},
		Tiers:     tier.DefaultThresholds,
		Core:      core.DefaultSpec,
		Balance:   accessory.DefaultBalance(),
		Storage:   StorageConfig{Path: "data", SyncWrites: true},
		LogLevel:  "info",
		Reconcile: ledger.PolicyPreferStructured,
	}
}

func (s *SimConfig) ApplyDefaults() {
	if s.TickInterval <= 0 {
		s.TickInterval = 50 * time.Millisecond
	}
	if s.RefreshPeriod <= 0 {
		s.RefreshPeriod = time.Second
	}
	if s.TargetHealth <= 0 {
		s.TargetHealth = 200
	}
	if s.DrainPerTick < 0 {
		s.DrainPerTick = 0
	}
}

func (c *Config) ApplyDefaults() {
	c.Sim.ApplyDefaults()
	if c.Tiers == (tier.Thresholds{}) {
		c.Tiers = tier.DefaultThresholds
	}
	if c.Core.BaseCapacity <= 0 {
		c.Core = core.DefaultSpec
	}
	if c.Server.Port == 0 {
		c.Server.Port = 2222
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate reports settings that cannot be defaulted.
func (c *Config) Validate() error {
	if _, err := ledger.ParseReconciler(c.Reconcile); err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	t := c.Tiers
	if !(t.Normal >= t.PowerSaving && t.PowerSaving >= t.Emergency && t.Emergency >= 0 && t.Normal <= 1) {
		return fmt.Errorf("tiers: thresholds must satisfy 1 >= normal >= power_saving >= emergency >= 0, got %+v", t)
	}
	return nil
}

// Reconciler returns the configured ledger reconciliation policy.
func (c *Config) Reconciler() ledger.Reconciler {
	r, err := ledger.ParseReconciler(c.Reconcile)
	if err != nil {
		return ledger.PreferStructured
	}
	return r
}

// Level returns the slog level named by LogLevel, or Info when it does not
// parse.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Load reads path over the defaults, then applies environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	r := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &r); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	if err := ParseEnv(&r); err != nil {
		return nil, err
	}
	r.ApplyDefaults()
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}
