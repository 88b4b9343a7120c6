package config

import (
	"stratforge/internal/logging"
	"stratforge/internal/naming"
)

// BaseValues are the table defaults that do not depend on configuration.
var BaseValues = map[string]any{
	"strategy_name":         "Generic Trading Strategy",
	"strategy_description":  "Generated cryptocurrency trading algorithm",
	"strategy_class_name":   "GenericStrategy",
	"project_name":          "generic-algo",
	"base_name":             "generic",
	"signal_output_port":    9999,
	"signal_output_bind_ip": "0.0.0.0",
	"streaming_source_ip":   "127.0.0.1",
	"streaming_source_port": 8888,
}

// StrategyValues returns the strategy parameters keyed by slot name.
func (c *Config) StrategyValues() map[string]any {
	return map[string]any{
		"imbalance_threshold":  c.Strategy.ImbalanceThreshold,
		"min_volume_threshold": c.Strategy.MinVolumeThreshold,
		"lookback_periods":     c.Strategy.LookbackPeriods,
		"signal_cooldown_ms":   c.Strategy.SignalCooldownMs,
	}
}

// DefaultValues builds the default-value table: BaseValues, then the
// strategy parameters, then template_values from the config file.
func (c *Config) DefaultValues() map[string]any {
	out := make(map[string]any, len(BaseValues)+4+len(c.TemplateValues))
	for k, v := range BaseValues {
		out[k] = v
	}
	for k, v := range c.StrategyValues() {
		out[k] = v
	}
	for k, v := range c.TemplateValues {
		out[k] = v
	}
	return out
}

// NamingRules returns the project-name sanitization rules.
func (c *Config) NamingRules() naming.Rules {
	rules := naming.ProjectRules
	if c.Naming.MaxLength > 0 {
		rules.MaxLength = c.Naming.MaxLength
	}
	if c.Naming.Prefix != "" {
		rules.Prefix = c.Naming.Prefix
	}
	if c.Naming.Fallback != "" {
		rules.Fallback = c.Naming.Fallback
	}
	return rules
}

// LoggingOptions converts the logging section for logging.Initialize.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{
		Level:      c.Logging.Level,
		Format:     c.Logging.Format,
		File:       c.Logging.File,
		Categories: c.Logging.Categories,
	}
}
