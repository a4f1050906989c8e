package runner

import (
	"context"
	"fmt"

	"github.com/diskfit/diskfit-core/internal/prob"
	"github.com/diskfit/diskfit-core/internal/sampler"
	"github.com/diskfit/diskfit-core/pkg/utils"
)

// runMCMC advances the walker ensemble, checkpointing into the run
// directory after every loop. A directory holding a previous checkpoint is
// resumed from its saved loop; otherwise walkers start from the configured
// start file or uniform draws from the prior.
func (r *Runner) runMCMC(ctx context.Context, eval *prob.Evaluator, runDir string) error {
	scfg := r.cfg.Sampler
	cp := &sampler.Checkpointer{Dir: runDir}

	var positions [][]float64
	startLoop := 0
	var err error
	switch {
	case cp.HasCheckpoint():
		positions, startLoop, err = cp.Load()
		if err != nil {
			return fmt.Errorf("resuming run: %w", err)
		}
		r.log.Info("resuming from checkpoint", "dir", runDir, "next_loop", startLoop)
	case scfg.StartFile != "":
		positions, _, err = sampler.LoadPositions(scfg.StartFile)
		if err != nil {
			return fmt.Errorf("reading start positions: %w", err)
		}
		r.log.Info("starting from position file", "path", scfg.StartFile)
	default:
		positions = r.drawInitialPositions(scfg.Walkers, eval.Dim(), scfg.Seed)
	}

	if len(positions) != scfg.Walkers {
		return fmt.Errorf("position file has %d walkers, config wants %d", len(positions), scfg.Walkers)
	}
	if startLoop >= scfg.Loops {
		r.log.Info("run already complete", "loops", scfg.Loops)
		return nil
	}

	pool := sampler.NewLocalPool(scfg.PoolSize, eval.Evaluate)
	ens, err := sampler.New(positions, pool, sampler.Config{
		StretchA:  scfg.StretchA,
		Seed:      scfg.Seed,
		StartLoop: startLoop,
		Logger:    r.log,
	})
	if err != nil {
		return fmt.Errorf("building ensemble: %w", err)
	}

	return ens.Run(ctx, scfg.Loops-startLoop, scfg.SamplesPerLoop, func(loop int, history []sampler.Walker) error {
		if err := cp.Save(loop, ens.Walkers()); err != nil {
			return err
		}
		return cp.AppendChain(history)
	})
}

// drawInitialPositions scatters the walkers uniformly over the prior box,
// in free-parameter order.
func (r *Runner) drawInitialPositions(nwalkers, dim int, seed int64) [][]float64 {
	rng := utils.NewRandSource(seed)
	positions := make([][]float64, nwalkers)
	for i := range positions {
		pos := make([]float64, dim)
		for j, name := range r.cfg.Model.Free {
			rg := r.cfg.Model.Priors[name]
			pos[j] = rng.UniformFloat64(rg[0], rg[1])
		}
		positions[i] = pos
	}
	return positions
}
