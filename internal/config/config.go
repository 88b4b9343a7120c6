package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all stratforge configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Template sources
	Templates TemplatesConfig `yaml:"templates"`

	// Identifier derivation
	Naming NamingConfig `yaml:"naming"`

	// Baseline strategy parameters rendered into every project
	Strategy StrategyConfig `yaml:"strategy"`

	// Extra entries for the default-value table, keyed by slot name
	TemplateValues map[string]any `yaml:"template_values,omitempty"`

	// Where generated projects are written
	Output OutputConfig `yaml:"output"`

	// Project registry
	Store StoreConfig `yaml:"store"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// TemplatesConfig locates the template corpus. An empty Dir uses only the
// built-in templates; Files maps an artifact kind name to a file under Dir.
type TemplatesConfig struct {
	Dir   string            `yaml:"dir"`
	Files map[string]string `yaml:"files,omitempty"`
}

// NamingConfig tunes identifier sanitization.
type NamingConfig struct {
	MaxLength int    `yaml:"max_length"`
	Prefix    string `yaml:"prefix"`
	Fallback  string `yaml:"fallback"`
}

// StrategyConfig holds the tunables the generated strategy reads at startup.
type StrategyConfig struct {
	ImbalanceThreshold float64 `yaml:"imbalance_threshold"`
	MinVolumeThreshold float64 `yaml:"min_volume_threshold"`
	LookbackPeriods    int     `yaml:"lookback_periods"`
	SignalCooldownMs   int     `yaml:"signal_cooldown_ms"`
}

// OutputConfig configures project persistence.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// StoreConfig configures the project registry.
type StoreConfig struct {
	Enabled      bool   `yaml:"enabled"`
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level"`  // debug, info, warn, error
	Format     string          `yaml:"format"` // json, console
	File       string          `yaml:"file"`
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "stratforge",
		Version: "0.1.0",

		Naming: NamingConfig{
			MaxLength: 50,
			Prefix:    "algo-",
			Fallback:  "generic-algo",
		},

		Strategy: StrategyConfig{
			ImbalanceThreshold: 0.6,
			MinVolumeThreshold: 10.0,
			LookbackPeriods:    5,
			SignalCooldownMs:   100,
		},

		Output: OutputConfig{
			Dir: "generated_algorithms",
		},

		Store: StoreConfig{
			Enabled:      true,
			DatabasePath: filepath.Join(".stratforge", "projects.db"),
		},

		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides. Values that do
// not parse are ignored and the configured value stays.
func (c *Config) applyEnvOverrides() {
	// Strategy parameters use the same names the generated binary reads
	if v, ok := envFloat("IMBALANCE_THRESHOLD"); ok {
		c.Strategy.ImbalanceThreshold = v
	}
	if v, ok := envFloat("MIN_VOLUME_THRESHOLD"); ok {
		c.Strategy.MinVolumeThreshold = v
	}
	if v, ok := envInt("LOOKBACK_PERIODS"); ok {
		c.Strategy.LookbackPeriods = v
	}
	if v, ok := envInt("SIGNAL_COOLDOWN_MS"); ok {
		c.Strategy.SignalCooldownMs = v
	}

	if dir := os.Getenv("STRATFORGE_TEMPLATE_DIR"); dir != "" {
		c.Templates.Dir = dir
	}
	if dir := os.Getenv("STRATFORGE_OUTPUT_DIR"); dir != "" {
		c.Output.Dir = dir
	}
	if path := os.Getenv("STRATFORGE_DB"); path != "" {
		c.Store.DatabasePath = path
	}
	if level := os.Getenv("STRATFORGE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

func envFloat(key string) (float64, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	return v, err == nil
}

func envInt(key string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	return v, err == nil
}

// ValidLogFormats lists the accepted logging encodings.
var ValidLogFormats = []string{"console", "json"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	s := c.Strategy
	if s.ImbalanceThreshold < 0 || s.ImbalanceThreshold > 1 {
		return fmt.Errorf("strategy.imbalance_threshold must be between 0 and 1, got %v", s.ImbalanceThreshold)
	}
	if s.MinVolumeThreshold < 0 {
		return fmt.Errorf("strategy.min_volume_threshold must be non-negative, got %v", s.MinVolumeThreshold)
	}
	if s.LookbackPeriods < 1 {
		return fmt.Errorf("strategy.lookback_periods must be at least 1, got %d", s.LookbackPeriods)
	}
	if s.SignalCooldownMs < 0 {
		return fmt.Errorf("strategy.signal_cooldown_ms must be non-negative, got %d", s.SignalCooldownMs)
	}

	n := c.Naming
	if n.MaxLength < 8 {
		return fmt.Errorf("naming.max_length must be at least 8, got %d", n.MaxLength)
	}
	if !hasLeadingAlnum(n.Fallback) {
		return fmt.Errorf("naming.fallback must start with a lowercase letter or digit: %q", n.Fallback)
	}

	for kind, file := range c.Templates.Files {
		if strings.TrimSpace(file) == "" {
			return fmt.Errorf("templates.files[%s] is empty", kind)
		}
	}

	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir must be set")
	}
	if c.Store.Enabled && c.Store.DatabasePath == "" {
		return fmt.Errorf("store.database_path must be set when the store is enabled")
	}

	if c.Logging.Format != "" {
		valid := false
		for _, f := range ValidLogFormats {
			if c.Logging.Format == f {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid logging format: %s (valid: %v)", c.Logging.Format, ValidLogFormats)
		}
	}

	return nil
}

func hasLeadingAlnum(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
