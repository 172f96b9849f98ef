// Package config loads CLI configuration from defaults, the project
// config file, environment variables, and flags, in that order of
// increasing precedence.
package config

import (
	"sort"

	"github.com/wheelhouse-labs/wheelhouse/pkg/lint"
	"github.com/wheelhouse-labs/wheelhouse/pkg/marker"
)

// Default configuration values.
const (
	DefaultStateFile = ".wheelhouse/state.db"
	DefaultEnv       = ""
	DefaultOutput    = "auto"
	DefaultAddr      = "localhost:8799"
)

// LintConfig holds lint rule configuration.
type LintConfig struct {
	// Disabled contains rule IDs to disable
	Disabled []string `koanf:"disabled"`

	// Severity maps rule ID to severity override (error, warning, info, hint)
	Severity map[string]string `koanf:"severity"`

	// Rules contains rule-specific options
	Rules map[string]RuleOptions `koanf:"rules"`
}

// RuleOptions holds rule-specific configuration options.
type RuleOptions map[string]any

// EnvironmentConfig describes a named marker profile, e.g. a target
// interpreter and platform to evaluate requirements against.
type EnvironmentConfig struct {
	// Markers overrides individual marker variables.
	Markers map[string]string `koanf:"markers"`
}

// ServeConfig holds metadata API server configuration.
type ServeConfig struct {
	Addr string `koanf:"addr"`
}

// Config is the fully resolved CLI configuration.
type Config struct {
	// ProjectRoot is the directory scanned for packaging metadata.
	ProjectRoot string `koanf:"project_root"`

	// StatePath is the SQLite state database path.
	StatePath string `koanf:"state_path"`

	// Environment selects a named profile from Environments.
	Environment string `koanf:"environment"`

	// Environments holds named marker profiles.
	Environments map[string]EnvironmentConfig `koanf:"environments"`

	// Markers overrides marker variables regardless of profile.
	Markers map[string]string `koanf:"markers"`

	Lint  LintConfig  `koanf:"lint"`
	Serve ServeConfig `koanf:"serve"`

	Verbose bool   `koanf:"verbose"`
	Output  string `koanf:"output"`
}

// MarkerEnvironment builds the evaluation environment: platform
// defaults, then the selected profile's markers, then direct overrides.
func (c *Config) MarkerEnvironment() marker.Environment {
	env := marker.Default()
	if c.Environment != "" {
		if profile, ok := c.Environments[c.Environment]; ok {
			env = env.Merge(profile.Markers)
		}
	}
	return env.Merge(c.Markers)
}

// EnvironmentNames returns the configured profile names, sorted.
func (c *Config) EnvironmentNames() []string {
	names := make([]string, 0, len(c.Environments))
	for name := range c.Environments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ToLintConfig converts the declarative lint settings into the
// analyzer's configuration.
func (c *Config) ToLintConfig() *lint.Config {
	cfg := lint.NewConfig()
	for _, id := range c.Lint.Disabled {
		cfg.Disable(id)
	}
	for id, sev := range c.Lint.Severity {
		cfg.SetSeverity(id, lint.ParseSeverity(sev))
	}
	for id, opts := range c.Lint.Rules {
		for key, value := range opts {
			cfg.SetOption(id, key, value)
		}
	}
	return cfg
}
