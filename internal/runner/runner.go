// Package runner turns a validated configuration into a fitting run: it
// loads the observations, builds the probability evaluator, resolves the
// numbered output directory and dispatches to the sampling or optimization
// path.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/diskfit/diskfit-core/internal/model"
	"github.com/diskfit/diskfit-core/internal/prob"
	"github.com/diskfit/diskfit-core/internal/spectral"
	"github.com/diskfit/diskfit-core/internal/visdata"
	"github.com/diskfit/diskfit-core/internal/workspace"
	"github.com/diskfit/diskfit-core/pkg/config"
	"github.com/diskfit/diskfit-core/pkg/logger"
)

// Runner executes one fitting run.
type Runner struct {
	cfg *config.Config
	log *slog.Logger
}

// New creates a runner for the given configuration.
func New(cfg *config.Config, log *slog.Logger) *Runner {
	if log == nil {
		log = logger.Default
	}
	return &Runner{cfg: cfg, log: log}
}

// Run executes the configured fitting mode. An existing output directory
// with a checkpoint is resumed; a fresh directory starts a new run.
func (r *Runner) Run(ctx context.Context) error {
	runDir, err := r.ensureRunDir()
	if err != nil {
		return err
	}

	data, err := r.prepareDataset()
	if err != nil {
		return err
	}
	r.log.Info("dataset loaded",
		"path", r.cfg.Data.Path,
		"active_channels", len(data.Channels),
	)

	eval, err := r.buildEvaluator(data)
	if err != nil {
		return err
	}

	switch r.cfg.Mode {
	case config.ModeMCMC:
		return r.runMCMC(ctx, eval, runDir)
	case config.ModeOptimize:
		return r.runOptimize(ctx, eval, runDir)
	default:
		return fmt.Errorf("unknown mode: %s", r.cfg.Mode)
	}
}

// ensureRunDir resolves and creates the numbered run directory. An explicit
// run number reuses that directory (and with it any checkpoint inside); no
// number means a fresh run under the next unused number.
func (r *Runner) ensureRunDir() (string, error) {
	n := 0
	if r.cfg.RunNumber != nil {
		n = *r.cfg.RunNumber
	} else {
		n = nextRunNumber(r.cfg.OutDir)
	}
	dir := filepath.Join(r.cfg.OutDir, fmt.Sprintf("run%d", n))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating run directory %s: %w", dir, err)
	}
	r.log.Info("run directory resolved", "dir", dir)
	return dir, nil
}

// nextRunNumber returns one past the highest run<N> directory under outDir.
func nextRunNumber(outDir string) int {
	entries, err := os.ReadDir(outDir)
	if err != nil {
		return 0
	}
	next := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		var n int
		if _, err := fmt.Sscanf(e.Name(), "run%d", &n); err == nil && n >= next {
			next = n + 1
		}
	}
	return next
}

// prepareDataset loads the observations, drops the excluded velocity
// channels and conjugates the visibilities into the transform's sign
// convention.
func (r *Runner) prepareDataset() (visdata.Dataset, error) {
	ds, err := visdata.Load(r.cfg.Data.Path)
	if err != nil {
		return visdata.Dataset{}, fmt.Errorf("loading visibilities: %w", err)
	}

	vels := spectral.Velocities(r.cfg.Data.RestWavelength, ds.Wavelengths())
	exclude := make([][2]float64, len(r.cfg.Data.ExcludeVelocity))
	for i, rg := range r.cfg.Data.ExcludeVelocity {
		// config ranges are km/s, spectral works in m/s
		exclude[i] = [2]float64{rg[0] * 1e3, rg[1] * 1e3}
	}
	mask := spectral.ActiveMask(vels, exclude)

	active := ds.Select(mask)
	if len(active.Channels) == 0 {
		return visdata.Dataset{}, fmt.Errorf("all %d channels excluded by velocity ranges", len(ds.Channels))
	}
	return active.Conjugate(), nil
}

func (r *Runner) buildEvaluator(data visdata.Dataset) (*prob.Evaluator, error) {
	kind, err := model.ParseKind(r.cfg.Model.Kind)
	if err != nil {
		return nil, err
	}

	workDir := r.cfg.Simulator.WorkDir
	if workDir == "" {
		workDir = filepath.Join(os.TempDir(), "diskfit-work")
	}

	eval, err := prob.NewEvaluator(prob.EvaluatorConfig{
		Kind:        kind,
		FreeNames:   r.cfg.Model.Free,
		Fixed:       r.cfg.Model.Fixed,
		PriorRanges: r.cfg.Model.Priors,
		Data:        data,
		Grid: model.Grid{
			NR:      r.cfg.Grid.NR,
			NTheta:  r.cfg.Grid.NTheta,
			RminAU:  r.cfg.Grid.RminAU,
			RmaxAU:  r.cfg.Grid.RmaxAU,
			Opening: r.cfg.Grid.Opening,
		},
		Species:   r.cfg.Simulator.Species,
		Npix:      r.cfg.Image.Npix,
		FOVArcsec: r.cfg.Image.FOVArcsec,
		Workspaces: &workspace.Manager{
			HomeDir:       r.cfg.Simulator.HomeDir,
			BaseDir:       workDir,
			StaticFiles:   r.cfg.Simulator.StaticFiles,
			SimulatorPath: r.cfg.Simulator.Path,
		},
		Logger: r.log,
	})
	if err != nil {
		return nil, fmt.Errorf("building evaluator: %w", err)
	}
	return eval, nil
}
