package runner

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/optimize"

	"github.com/diskfit/diskfit-core/internal/prob"
	"github.com/diskfit/diskfit-core/pkg/utils"
)

// BestFile holds the best parameter vector found by the optimizer.
const BestFile = "best.dat"

// runOptimize searches for the maximum-probability parameter vector with a
// multi-start derivative-free simplex. Rejected proposals score +Inf so the
// simplex walks back into the supported region; a fatal evaluation aborts
// the whole search.
func (r *Runner) runOptimize(ctx context.Context, eval *prob.Evaluator, runDir string) error {
	ocfg := r.cfg.Optimizer

	var fatal error
	objective := func(x []float64) float64 {
		if fatal != nil {
			return math.Inf(1)
		}
		if ctx.Err() != nil {
			fatal = ctx.Err()
			return math.Inf(1)
		}
		res := eval.Evaluate(ctx, x)
		if res.IsFatal() {
			fatal = res.Err
			return math.Inf(1)
		}
		if res.Rejected {
			return math.Inf(1)
		}
		return -res.LogProb
	}

	problem := optimize.Problem{Func: objective}
	settings := &optimize.Settings{MajorIterations: ocfg.MaxIterations}
	rng := utils.NewRandSource(r.cfg.Sampler.Seed)

	bestF := math.Inf(1)
	var bestX []float64
	for restart := 0; restart < ocfg.Restarts; restart++ {
		x0 := r.drawStartPoint(rng, eval.Dim())
		result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
		if fatal != nil {
			return fatal
		}
		if err != nil {
			r.log.Warn("optimizer restart failed", "restart", restart, "error", err)
			continue
		}
		r.log.Info("optimizer restart finished",
			"restart", restart,
			"logprob", -result.F,
			"status", result.Status.String(),
		)
		if result.F < bestF {
			bestF = result.F
			bestX = append([]float64(nil), result.X...)
		}
	}

	if bestX == nil {
		return fmt.Errorf("all %d optimizer restarts failed", ocfg.Restarts)
	}

	r.log.Info("optimization complete", "logprob", -bestF, "params", bestX)
	return r.writeBest(filepath.Join(runDir, BestFile), bestX, -bestF)
}

// drawStartPoint samples a starting vector from the optimizer's search
// ranges, falling back to the prior box per parameter.
func (r *Runner) drawStartPoint(rng *utils.RandSource, dim int) []float64 {
	x := make([]float64, dim)
	for j, name := range r.cfg.Model.Free {
		rg, ok := r.cfg.Optimizer.Ranges[name]
		if !ok {
			rg = r.cfg.Model.Priors[name]
		}
		x[j] = rng.UniformFloat64(rg[0], rg[1])
	}
	return x
}

// writeBest records the best vector as "name value" lines followed by the
// log-probability.
func (r *Runner) writeBest(path string, x []float64, logProb float64) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for j, name := range r.cfg.Model.Free {
		fmt.Fprintf(w, "%s %s\n", name, strconv.FormatFloat(x[j], 'g', 17, 64))
	}
	fmt.Fprintf(w, "logprob %s\n", strconv.FormatFloat(logProb, 'g', 17, 64))
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
