package config

import (
	"strings"
	"testing"
)

const validYAML = `
log_level: info
mode: mcmc
out_dir: ./runs

data:
  path: ./data/vis.txt
  rest_wavelength_micron: 1300.4

model:
  kind: standard
  free: [mstar, incl]
  fixed:
    dist: 140.0
  priors:
    mstar: [0.1, 4.0]
    incl: [0.0, 90.0]

grid:
  nr: 64
  ntheta: 32
  rmin_au: 1.0
  rmax_au: 300.0
  opening_rad: 0.7

image:
  npix: 128
  fov_arcsec: 6.0

sampler:
  walkers: 16
  loops: 10
  samples_per_loop: 50
  pool_size: 4

simulator:
  path: /usr/bin/radmc3d
  home_dir: ./simhome
  static_files: [radmc3d.inp]
  species: c18o
`

func TestParseConfigYAMLValid(t *testing.T) {
	cfg, err := ParseConfigYAMLString(validYAML)
	if err != nil {
		t.Fatalf("Failed to parse valid config: %v", err)
	}
	if cfg.Mode != ModeMCMC {
		t.Errorf("Expected mode 'mcmc', got '%s'", cfg.Mode)
	}
	if cfg.Sampler.StretchA != 2.0 {
		t.Errorf("Expected default stretch_a 2.0, got %f", cfg.Sampler.StretchA)
	}
}

func TestParseConfigYAMLDefaults(t *testing.T) {
	yaml := strings.Replace(validYAML, "log_level: info\n", "", 1)
	yaml = strings.Replace(yaml, "mode: mcmc\n", "", 1)
	cfg, err := ParseConfigYAMLString(yaml)
	if err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log_level 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.Mode != ModeMCMC {
		t.Errorf("Expected default mode 'mcmc', got '%s'", cfg.Mode)
	}
	if cfg.Model.Kind == "" {
		t.Error("Expected default model kind to be set")
	}
	if cfg.Optimizer.MaxIterations != 1000 {
		t.Errorf("Expected default max_iterations 1000, got %d", cfg.Optimizer.MaxIterations)
	}
}

func TestParseConfigYAMLInvalid(t *testing.T) {
	cases := []struct {
		name string
		old  string
		new  string
	}{
		{"bad log level", "log_level: info", "log_level: loud"},
		{"bad mode", "mode: mcmc", "mode: anneal"},
		{"missing data path", "path: ./data/vis.txt", "path: \"\""},
		{"negative rest wavelength", "rest_wavelength_micron: 1300.4", "rest_wavelength_micron: -1.0"},
		{"no free parameters", "free: [mstar, incl]", "free: []"},
		{"duplicate free parameter", "free: [mstar, incl]", "free: [mstar, mstar]"},
		{"free also fixed", "dist: 140.0", "mstar: 1.0"},
		{"missing prior", "incl: [0.0, 90.0]", "other: [0.0, 1.0]"},
		{"inverted prior", "mstar: [0.1, 4.0]", "mstar: [4.0, 0.1]"},
		{"zero nr", "nr: 64", "nr: 0"},
		{"rmax below rmin", "rmax_au: 300.0", "rmax_au: 0.5"},
		{"odd npix", "npix: 128", "npix: 127"},
		{"zero fov", "fov_arcsec: 6.0", "fov_arcsec: 0"},
		{"odd walkers", "walkers: 16", "walkers: 15"},
		{"zero loops", "loops: 10", "loops: 0"},
		{"missing simulator path", "path: /usr/bin/radmc3d", "path: \"\""},
		{"missing species", "species: c18o", "species: \"\""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			yaml := strings.Replace(validYAML, tc.old, tc.new, 1)
			if yaml == validYAML {
				t.Fatalf("Mutation %q did not apply", tc.old)
			}
			if _, err := ParseConfigYAMLString(yaml); err == nil {
				t.Errorf("Expected validation error for %s", tc.name)
			}
		})
	}
}

func TestParseConfigYAMLOptimizeMode(t *testing.T) {
	yaml := strings.Replace(validYAML, "mode: mcmc", "mode: optimize", 1)
	// Sampler settings are ignored in optimize mode.
	yaml = strings.Replace(yaml, "walkers: 16", "walkers: 0", 1)
	cfg, err := ParseConfigYAMLString(yaml)
	if err != nil {
		t.Fatalf("Failed to parse optimize config: %v", err)
	}
	if cfg.Mode != ModeOptimize {
		t.Errorf("Expected mode 'optimize', got '%s'", cfg.Mode)
	}
	if cfg.Optimizer.Restarts != 1 {
		t.Errorf("Expected default restarts 1, got %d", cfg.Optimizer.Restarts)
	}
}

func TestParseConfigYAMLOptimizerRangeForUnknownParameter(t *testing.T) {
	yaml := strings.Replace(validYAML, "mode: mcmc", "mode: optimize", 1)
	yaml += "\noptimizer:\n  max_iterations: 100\n  restarts: 2\n  ranges:\n    rc: [1.0, 2.0]\n"
	if _, err := ParseConfigYAMLString(yaml); err == nil {
		t.Error("Expected error for optimizer range on non-free parameter")
	}
}
