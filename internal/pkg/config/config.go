package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Storage StorageConfig `yaml:"storage"`
	Engine  EngineConfig  `yaml:"engine"`
}

type LoggingConfig struct {
	Level   string `yaml:"level"`    // "debug", "info", "warn", "error"
	JSON    bool   `yaml:"json"`     // emit JSON instead of text
	AddFile string `yaml:"add_file"` // optional extra JSON log file
}

type StorageConfig struct {
	Backend  string         `yaml:"backend"` // "redis", "postgres" or "memory"
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type EngineConfig struct {
	// Capabilities maps a capability name ("xg", "team-stats", "head-to-head")
	// to its provider list in trying-priority order.
	Capabilities map[string][]string `yaml:"capabilities"`

	// SourceWeights are per-provider reliability weights used by the fusion
	// weighted mean. Providers without an entry get a conservative default.
	SourceWeights map[string]float64 `yaml:"source_weights"`

	MinRequiredSources  int     `yaml:"min_required_sources"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	FanInLimit          int     `yaml:"fan_in_limit"`

	// Durations are strings like "15s" or "12h"; invalid or empty values
	// fall back to the package defaults.
	SourceTimeout string `yaml:"source_timeout"`
	CacheTTL      string `yaml:"cache_ttl"`
	H2HFreshness  string `yaml:"h2h_freshness"`
}

// Defaults applied when the config file leaves a field unset.
const (
	DefaultMinRequiredSources  = 1
	DefaultConfidenceThreshold = 0.6
	DefaultFanInLimit          = 5
	DefaultSourceTimeout       = 15 * time.Second
	DefaultCacheTTL            = 12 * time.Hour
	DefaultH2HFreshness        = 7 * 24 * time.Hour
)

func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.Engine.ApplyDefaults()
	return &config, nil
}

// ApplyDefaults fills unset engine fields with the package defaults.
func (e *EngineConfig) ApplyDefaults() {
	if e.MinRequiredSources <= 0 {
		e.MinRequiredSources = DefaultMinRequiredSources
	}
	if e.ConfidenceThreshold <= 0 {
		e.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if e.FanInLimit <= 0 {
		e.FanInLimit = DefaultFanInLimit
	}
}

// SourceTimeoutDuration parses the per-provider call timeout.
func (e *EngineConfig) SourceTimeoutDuration() time.Duration {
	return parseDuration(e.SourceTimeout, DefaultSourceTimeout)
}

// CacheTTLDuration parses the consensus freshness window.
func (e *EngineConfig) CacheTTLDuration() time.Duration {
	return parseDuration(e.CacheTTL, DefaultCacheTTL)
}

// H2HFreshnessDuration parses the head-to-head re-fuse window.
func (e *EngineConfig) H2HFreshnessDuration() time.Duration {
	return parseDuration(e.H2HFreshness, DefaultH2HFreshness)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
