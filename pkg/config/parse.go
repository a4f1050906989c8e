package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Fitting modes.
const (
	ModeMCMC     = "mcmc"
	ModeOptimize = "optimize"
)

// ParseConfigYAML parses a Config from YAML bytes, applies defaults and
// validates it.
func ParseConfigYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config yaml: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// ParseConfigYAMLString parses a Config from a YAML string and validates it.
func ParseConfigYAMLString(yamlText string) (*Config, error) {
	return ParseConfigYAML([]byte(yamlText))
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeMCMC
	}
	if cfg.OutDir == "" {
		cfg.OutDir = "."
	}
	if cfg.Model.Kind == "" {
		cfg.Model.Kind = "standard"
	}
	if cfg.Sampler.StretchA == 0 {
		cfg.Sampler.StretchA = 2.0
	}
	if cfg.Sampler.PoolSize == 0 {
		cfg.Sampler.PoolSize = 1
	}
	if cfg.Sampler.SamplesPerLoop == 0 {
		cfg.Sampler.SamplesPerLoop = 100
	}
	if cfg.Optimizer.MaxIterations == 0 {
		cfg.Optimizer.MaxIterations = 1000
	}
	if cfg.Optimizer.Restarts == 0 {
		cfg.Optimizer.Restarts = 1
	}
}
