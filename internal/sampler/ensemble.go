// Package sampler advances a population of walkers through parameter space
// with affine-invariant stretch moves, evaluating candidates on a worker
// pool and checkpointing after every loop.
package sampler

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/diskfit/diskfit-core/pkg/logger"
	"github.com/diskfit/diskfit-core/pkg/utils"
)

// DefaultStretchA is the canonical scale bound of the stretch-move
// distribution g(z) ~ 1/sqrt(z) on [1/a, a].
const DefaultStretchA = 2.0

// Walker is one member of the ensemble: a position in free-parameter space
// and its last-evaluated log-probability.
type Walker struct {
	Pos     []float64
	LogProb float64
}

// Config tunes the ensemble.
type Config struct {
	// StretchA is the stretch-distribution bound; 0 means DefaultStretchA.
	StretchA float64
	// Seed drives the controller's random stream. Each loop reseeds
	// deterministically from Seed and the loop index, so a resumed run
	// replays the identical stream an uninterrupted run would have used.
	Seed int64
	// StartLoop is the index of the first loop to run (nonzero on resume).
	StartLoop int
	Logger    *slog.Logger
}

// Ensemble is the sampler state: an even population of at least
// 2*dim walkers, advanced in two complementary half-steps per iteration so
// that partner positions are never mutated while a half is being evaluated
// in parallel.
type Ensemble struct {
	dim     int
	walkers []Walker
	pool    Pool
	a       float64
	seed    int64
	loop    int
	log     *slog.Logger
	// current positions have been scored at least once
	scored bool
}

// New creates an ensemble from the initial walker positions (one position
// per walker).
func New(initial [][]float64, pool Pool, cfg Config) (*Ensemble, error) {
	if len(initial) == 0 {
		return nil, fmt.Errorf("no initial walker positions")
	}
	dim := len(initial[0])
	if dim == 0 {
		return nil, fmt.Errorf("walker positions are empty")
	}
	if len(initial)%2 != 0 {
		return nil, fmt.Errorf("walker count must be even, got %d", len(initial))
	}
	if len(initial) < 2*dim {
		return nil, fmt.Errorf("need at least %d walkers for %d parameters, got %d", 2*dim, dim, len(initial))
	}
	if pool == nil {
		return nil, fmt.Errorf("worker pool is required")
	}

	e := &Ensemble{
		dim:     dim,
		walkers: make([]Walker, len(initial)),
		pool:    pool,
		a:       cfg.StretchA,
		seed:    cfg.Seed,
		loop:    cfg.StartLoop,
		log:     cfg.Logger,
	}
	if e.a <= 1 {
		e.a = DefaultStretchA
	}
	if e.log == nil {
		e.log = logger.Default
	}
	for i, pos := range initial {
		if len(pos) != dim {
			return nil, fmt.Errorf("walker %d has %d parameters, expected %d", i, len(pos), dim)
		}
		e.walkers[i] = Walker{Pos: append([]float64(nil), pos...), LogProb: math.Inf(-1)}
	}
	return e, nil
}

// Walkers returns a copy of the current population.
func (e *Ensemble) Walkers() []Walker {
	out := make([]Walker, len(e.walkers))
	for i, w := range e.walkers {
		out[i] = Walker{Pos: append([]float64(nil), w.Pos...), LogProb: w.LogProb}
	}
	return out
}

// Loop returns the index of the next loop to run.
func (e *Ensemble) Loop() int {
	return e.loop
}

// proposalPosition is the stretch move: partner + z*(pos - partner). At
// z = 1 it reproduces pos exactly.
func proposalPosition(pos, partner []float64, z float64) []float64 {
	out := make([]float64, len(pos))
	for i := range pos {
		out[i] = partner[i] + z*(pos[i]-partner[i])
	}
	return out
}

// acceptanceLog is the log of the stretch-move Metropolis ratio,
// (dim-1)*log z + lnpNew - lnpOld. Proposals with -Inf log-probability are
// never accepted; any finite proposal beats a -Inf current state.
func acceptanceLog(dim int, z, lnpNew, lnpOld float64) float64 {
	if math.IsInf(lnpNew, -1) {
		return math.Inf(-1)
	}
	if math.IsInf(lnpOld, -1) {
		return math.Inf(1)
	}
	return float64(dim-1)*math.Log(z) + lnpNew - lnpOld
}

// scoreCurrent evaluates the log-probability of every current walker
// position. Run calls it once per Run invocation so a resumed ensemble
// (whose checkpoint stores positions only) starts from scored state.
func (e *Ensemble) scoreCurrent(ctx context.Context) error {
	positions := make([][]float64, len(e.walkers))
	for i, w := range e.walkers {
		positions[i] = w.Pos
	}
	results, err := e.pool.Map(ctx, positions)
	if err != nil {
		return fmt.Errorf("scoring initial walker positions: %w", err)
	}
	for i, res := range results {
		e.walkers[i].LogProb = res.LogProb
	}
	e.scored = true
	return nil
}

// halfStep proposes and evaluates new positions for the walkers in
// [lo, hi), drawing partners from [plo, phi), then accepts or rejects.
// All candidate evaluations of the half run in parallel behind a blocking
// barrier; partner positions are read-only during that window. Returns the
// number of accepted moves.
func (e *Ensemble) halfStep(ctx context.Context, rng *utils.RandSource, lo, hi, plo, phi int) (int, error) {
	n := hi - lo
	zs := make([]float64, n)
	proposals := make([][]float64, n)
	for k := 0; k < n; k++ {
		w := e.walkers[lo+k]
		partner := e.walkers[plo+rng.Intn(phi-plo)]
		zs[k] = rng.StretchScale(e.a)
		proposals[k] = proposalPosition(w.Pos, partner.Pos, zs[k])
	}

	results, err := e.pool.Map(ctx, proposals)
	if err != nil {
		return 0, err
	}

	accepted := 0
	for k := 0; k < n; k++ {
		w := &e.walkers[lo+k]
		lnratio := acceptanceLog(e.dim, zs[k], results[k].LogProb, w.LogProb)
		if lnratio >= 0 || math.Log(rng.Float64()) < lnratio {
			w.Pos = proposals[k]
			w.LogProb = results[k].LogProb
			accepted++
		}
	}
	return accepted, nil
}

// Step advances the whole population by one iteration: the first half moves
// against the frozen second half, then the second half moves against the
// just-updated first half.
func (e *Ensemble) Step(ctx context.Context, rng *utils.RandSource) (int, error) {
	half := len(e.walkers) / 2
	a1, err := e.halfStep(ctx, rng, 0, half, half, len(e.walkers))
	if err != nil {
		return 0, err
	}
	a2, err := e.halfStep(ctx, rng, half, len(e.walkers), 0, half)
	if err != nil {
		return a1, err
	}
	return a1 + a2, nil
}

// Run advances the ensemble by loops*samplesPerLoop iterations, invoking
// checkpoint after every loop with the loop index just completed and the
// iteration history accumulated during that loop. A crash therefore loses
// at most one loop of progress.
func (e *Ensemble) Run(ctx context.Context, loops, samplesPerLoop int, checkpoint func(loop int, history []Walker) error) error {
	if loops <= 0 || samplesPerLoop <= 0 {
		return fmt.Errorf("loops and samples per loop must be positive, got %d and %d", loops, samplesPerLoop)
	}

	if !e.scored {
		if err := e.scoreCurrent(ctx); err != nil {
			return err
		}
	}

	last := e.loop + loops
	for ; e.loop < last; e.loop++ {
		rng := utils.NewRandSource(loopSeed(e.seed, e.loop))
		accepted := 0
		history := make([]Walker, 0, samplesPerLoop*len(e.walkers))
		for s := 0; s < samplesPerLoop; s++ {
			acc, err := e.Step(ctx, rng)
			if err != nil {
				return fmt.Errorf("loop %d sample %d: %w", e.loop, s, err)
			}
			accepted += acc
			history = append(history, e.Walkers()...)
		}

		rate := float64(accepted) / float64(samplesPerLoop*len(e.walkers))
		lps := e.finiteLogProbs()
		e.log.Info("loop complete",
			"loop", e.loop,
			"acceptance_rate", rate,
			"best_logprob", e.bestLogProb(),
			"mean_logprob", utils.Mean(lps),
			"stddev_logprob", utils.StdDev(lps),
		)

		if checkpoint != nil {
			if err := checkpoint(e.loop, history); err != nil {
				return fmt.Errorf("checkpoint after loop %d: %w", e.loop, err)
			}
		}
	}
	return nil
}

// finiteLogProbs collects the walkers' finite log-probabilities, so
// ensemble statistics ignore stuck walkers still at -Inf.
func (e *Ensemble) finiteLogProbs() []float64 {
	out := make([]float64, 0, len(e.walkers))
	for _, w := range e.walkers {
		if !math.IsInf(w.LogProb, 0) && !math.IsNaN(w.LogProb) {
			out = append(out, w.LogProb)
		}
	}
	return out
}

func (e *Ensemble) bestLogProb() float64 {
	best := math.Inf(-1)
	for _, w := range e.walkers {
		if w.LogProb > best {
			best = w.LogProb
		}
	}
	return best
}

// loopSeed derives the per-loop controller seed.
func loopSeed(seed int64, loop int) int64 {
	return seed + int64(loop)*1_000_003
}
