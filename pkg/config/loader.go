package config

import (
	"fmt"
	"os"
)

// LoadConfig loads and parses a configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}

	if cfg.Mode != ModeMCMC && cfg.Mode != ModeOptimize {
		return fmt.Errorf("invalid mode: %s (must be %s or %s)", cfg.Mode, ModeMCMC, ModeOptimize)
	}

	if cfg.RunNumber != nil && *cfg.RunNumber < 0 {
		return fmt.Errorf("run_number cannot be negative, got %d", *cfg.RunNumber)
	}

	if err := validateData(&cfg.Data); err != nil {
		return fmt.Errorf("data validation failed: %w", err)
	}
	if err := validateModel(&cfg.Model); err != nil {
		return fmt.Errorf("model validation failed: %w", err)
	}
	if err := validateGrid(&cfg.Grid); err != nil {
		return fmt.Errorf("grid validation failed: %w", err)
	}
	if err := validateImage(&cfg.Image); err != nil {
		return fmt.Errorf("image validation failed: %w", err)
	}
	if cfg.Mode == ModeMCMC {
		if err := validateSampler(&cfg.Sampler); err != nil {
			return fmt.Errorf("sampler validation failed: %w", err)
		}
	}
	if cfg.Mode == ModeOptimize {
		if err := validateOptimizer(&cfg.Optimizer, cfg.Model.Free); err != nil {
			return fmt.Errorf("optimizer validation failed: %w", err)
		}
	}
	if err := validateSimulator(&cfg.Simulator); err != nil {
		return fmt.Errorf("simulator validation failed: %w", err)
	}

	return nil
}

func validateData(d *Data) error {
	if d.Path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if d.RestWavelength <= 0 {
		return fmt.Errorf("rest_wavelength_micron must be positive, got %f", d.RestWavelength)
	}
	for i, r := range d.ExcludeVelocity {
		if r[0] > r[1] {
			return fmt.Errorf("exclude_velocity_kms range %d: low %f exceeds high %f", i, r[0], r[1])
		}
	}
	return nil
}

func validateModel(m *Model) error {
	if len(m.Free) == 0 {
		return fmt.Errorf("at least one free parameter must be defined")
	}
	seen := make(map[string]bool)
	for _, name := range m.Free {
		if name == "" {
			return fmt.Errorf("free parameter name cannot be empty")
		}
		if seen[name] {
			return fmt.Errorf("duplicate free parameter: %s", name)
		}
		seen[name] = true

		r, ok := m.Priors[name]
		if !ok {
			return fmt.Errorf("free parameter %s has no prior range", name)
		}
		if r[0] >= r[1] {
			return fmt.Errorf("prior for %s: low %f must be below high %f", name, r[0], r[1])
		}
	}
	for name := range m.Fixed {
		if seen[name] {
			return fmt.Errorf("parameter %s is both free and fixed", name)
		}
	}
	for name := range m.Priors {
		if !seen[name] {
			return fmt.Errorf("prior given for non-free parameter: %s", name)
		}
	}
	return nil
}

func validateGrid(g *Grid) error {
	if g.NR <= 0 {
		return fmt.Errorf("nr must be positive, got %d", g.NR)
	}
	if g.NTheta <= 0 {
		return fmt.Errorf("ntheta must be positive, got %d", g.NTheta)
	}
	if g.RminAU <= 0 {
		return fmt.Errorf("rmin_au must be positive, got %f", g.RminAU)
	}
	if g.RmaxAU <= g.RminAU {
		return fmt.Errorf("rmax_au %f must exceed rmin_au %f", g.RmaxAU, g.RminAU)
	}
	if g.Opening <= 0 {
		return fmt.Errorf("opening_rad must be positive, got %f", g.Opening)
	}
	return nil
}

func validateImage(im *Image) error {
	if im.Npix <= 0 || im.Npix%2 != 0 {
		return fmt.Errorf("npix must be positive and even, got %d", im.Npix)
	}
	if im.FOVArcsec <= 0 {
		return fmt.Errorf("fov_arcsec must be positive, got %f", im.FOVArcsec)
	}
	return nil
}

func validateSampler(s *Sampler) error {
	if s.Walkers <= 0 || s.Walkers%2 != 0 {
		return fmt.Errorf("walkers must be positive and even, got %d", s.Walkers)
	}
	if s.Loops <= 0 {
		return fmt.Errorf("loops must be positive, got %d", s.Loops)
	}
	if s.SamplesPerLoop <= 0 {
		return fmt.Errorf("samples_per_loop must be positive, got %d", s.SamplesPerLoop)
	}
	if s.StretchA <= 1 {
		return fmt.Errorf("stretch_a must exceed 1, got %f", s.StretchA)
	}
	if s.PoolSize <= 0 {
		return fmt.Errorf("pool_size must be positive, got %d", s.PoolSize)
	}
	return nil
}

func validateOptimizer(o *Optimizer, free []string) error {
	if o.MaxIterations <= 0 {
		return fmt.Errorf("max_iterations must be positive, got %d", o.MaxIterations)
	}
	if o.Restarts <= 0 {
		return fmt.Errorf("restarts must be positive, got %d", o.Restarts)
	}
	freeSet := make(map[string]bool, len(free))
	for _, name := range free {
		freeSet[name] = true
	}
	for name, r := range o.Ranges {
		if !freeSet[name] {
			return fmt.Errorf("range given for non-free parameter: %s", name)
		}
		if r[0] >= r[1] {
			return fmt.Errorf("range for %s: low %f must be below high %f", name, r[0], r[1])
		}
	}
	return nil
}

func validateSimulator(s *Simulator) error {
	if s.Path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if s.HomeDir == "" {
		return fmt.Errorf("home_dir cannot be empty")
	}
	if s.Species == "" {
		return fmt.Errorf("species cannot be empty")
	}
	return nil
}
