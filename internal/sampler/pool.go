package sampler

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/diskfit/diskfit-core/internal/prob"
)

// LogProbFunc evaluates one candidate position.
type LogProbFunc func(ctx context.Context, pos []float64) prob.Result

// Pool dispatches a batch of candidate evaluations and blocks until every
// one has completed (fan-out/fan-in barrier). A fatal result aborts the
// batch with an error; rejections are ordinary results. The transport is an
// injectable strategy; the shipped implementation runs evaluations
// in-process, with the external simulator subprocesses providing the
// process-level parallelism.
type Pool interface {
	Map(ctx context.Context, positions [][]float64) ([]prob.Result, error)
}

// LocalPool evaluates candidates on a fixed number of concurrent workers.
type LocalPool struct {
	size int
	fn   LogProbFunc
}

// NewLocalPool creates a pool with the given worker count (minimum 1).
func NewLocalPool(size int, fn LogProbFunc) *LocalPool {
	if size < 1 {
		size = 1
	}
	return &LocalPool{size: size, fn: fn}
}

// Map evaluates all positions and returns results in input order. The first
// fatal result cancels the remaining work and is returned as the error.
func (p *LocalPool) Map(ctx context.Context, positions [][]float64) ([]prob.Result, error) {
	results := make([]prob.Result, len(positions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.size)
	for i, pos := range positions {
		i, pos := i, pos
		g.Go(func() error {
			res := p.fn(gctx, pos)
			results[i] = res
			if res.IsFatal() {
				return fmt.Errorf("evaluation of %v failed: %w", pos, res.Err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
