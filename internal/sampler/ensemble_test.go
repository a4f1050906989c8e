package sampler

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diskfit/diskfit-core/internal/prob"
	"github.com/diskfit/diskfit-core/pkg/utils"
)

// gaussianTarget is a cheap stand-in for the evaluation pipeline: a 2-D
// Gaussian at (1, -2) with sigma 0.5.
func gaussianTarget(_ context.Context, pos []float64) prob.Result {
	dx := pos[0] - 1.0
	dy := pos[1] + 2.0
	return prob.Ok(-0.5 * (dx*dx + dy*dy) / 0.25)
}

func ballInit(rng *utils.RandSource, n int, center []float64, scatter float64) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		pos := make([]float64, len(center))
		for j, c := range center {
			pos[j] = c + rng.NormFloat64(0, scatter)
		}
		out[i] = pos
	}
	return out
}

func TestProposalPositionDegenerateScale(t *testing.T) {
	pos := []float64{1.5, -3.0, 0.25}
	partner := []float64{8.0, 2.0, -1.0}

	// z = 1 must reproduce the walker's own position exactly.
	got := proposalPosition(pos, partner, 1.0)
	assert.Equal(t, pos, got)

	// z = 0 collapses onto the partner.
	got = proposalPosition(pos, partner, 0.0)
	assert.Equal(t, partner, got)
}

func TestAcceptanceLogInfinities(t *testing.T) {
	negInf := math.Inf(-1)

	// A -Inf proposal is never accepted.
	assert.True(t, math.IsInf(acceptanceLog(3, 1.2, negInf, -10), -1))
	assert.True(t, math.IsInf(acceptanceLog(3, 1.2, negInf, negInf), -1))

	// Any finite proposal beats a -Inf current state.
	assert.True(t, math.IsInf(acceptanceLog(3, 1.2, -10, negInf), 1))

	// Finite case: (dim-1)*log z + delta.
	got := acceptanceLog(3, 2.0, -5, -6)
	assert.InDelta(t, 2*math.Log(2.0)+1, got, 1e-12)
}

func TestNewValidation(t *testing.T) {
	pool := NewLocalPool(1, gaussianTarget)

	_, err := New(nil, pool, Config{})
	assert.Error(t, err, "empty population")

	odd := [][]float64{{1, 2}, {3, 4}, {5, 6}, {7, 8}, {9, 10}}
	_, err = New(odd, pool, Config{})
	assert.Error(t, err, "odd walker count")

	few := [][]float64{{1, 2}, {3, 4}}
	_, err = New(few, pool, Config{})
	assert.Error(t, err, "fewer than 2*dim walkers")

	ragged := [][]float64{{1, 2}, {3, 4}, {5, 6}, {7}}
	_, err = New(ragged, pool, Config{})
	assert.Error(t, err, "ragged positions")

	good := [][]float64{{1, 2}, {3, 4}, {5, 6}, {7, 8}}
	_, err = New(good, pool, Config{Seed: 1})
	assert.NoError(t, err)
}

func TestRunRecoversGaussianTarget(t *testing.T) {
	rng := utils.NewRandSource(99)
	init := ballInit(rng, 8, []float64{0.5, -1.5}, 0.3)

	ens, err := New(init, NewLocalPool(4, gaussianTarget), Config{Seed: 7})
	require.NoError(t, err)

	var lastHistory []Walker
	err = ens.Run(context.Background(), 3, 150, func(loop int, history []Walker) error {
		lastHistory = history
		return nil
	})
	require.NoError(t, err)

	// Sample mean over the final loop should sit near the target mean.
	var sx, sy float64
	for _, w := range lastHistory {
		sx += w.Pos[0]
		sy += w.Pos[1]
	}
	n := float64(len(lastHistory))
	assert.InDelta(t, 1.0, sx/n, 0.5, "posterior mean x")
	assert.InDelta(t, -2.0, sy/n, 0.5, "posterior mean y")
}

func TestRunCheckpointCadence(t *testing.T) {
	rng := utils.NewRandSource(3)
	init := ballInit(rng, 6, []float64{1, -2}, 0.1)
	ens, err := New(init, NewLocalPool(2, gaussianTarget), Config{Seed: 11})
	require.NoError(t, err)

	var loops []int
	err = ens.Run(context.Background(), 4, 2, func(loop int, history []Walker) error {
		loops = append(loops, loop)
		// Two iterations of six walkers per loop.
		assert.Len(t, history, 12)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, loops)
	assert.Equal(t, 4, ens.Loop())
}

func TestResumeMatchesUninterruptedRun(t *testing.T) {
	makeInit := func() [][]float64 {
		return ballInit(utils.NewRandSource(55), 8, []float64{1, -2}, 0.2)
	}
	dir := t.TempDir()
	ckpt := &Checkpointer{Dir: dir}

	// Uninterrupted: 3 loops.
	full, err := New(makeInit(), NewLocalPool(3, gaussianTarget), Config{Seed: 17})
	require.NoError(t, err)
	require.NoError(t, full.Run(context.Background(), 3, 5, nil))

	// Interrupted: 1 loop, checkpoint, fresh ensemble resumes 2 more.
	first, err := New(makeInit(), NewLocalPool(3, gaussianTarget), Config{Seed: 17})
	require.NoError(t, err)
	require.NoError(t, first.Run(context.Background(), 1, 5, func(loop int, history []Walker) error {
		return ckpt.Save(loop, first.Walkers())
	}))

	positions, startLoop, err := ckpt.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, startLoop)

	resumed, err := New(positions, NewLocalPool(3, gaussianTarget), Config{Seed: 17, StartLoop: startLoop})
	require.NoError(t, err)
	require.NoError(t, resumed.Run(context.Background(), 2, 5, nil))

	// The controller stream is reseeded per loop and the target is
	// deterministic, so the resumed population matches bit for bit.
	want := full.Walkers()
	got := resumed.Walkers()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Pos, got[i].Pos, "walker %d position", i)
		assert.Equal(t, want[i].LogProb, got[i].LogProb, "walker %d logprob", i)
	}
}

func TestRunPropagatesFatal(t *testing.T) {
	boom := errors.New("simulator binary vanished")
	calls := 0
	target := func(_ context.Context, pos []float64) prob.Result {
		calls++
		if calls > 10 {
			return prob.Fatal(boom)
		}
		return gaussianTarget(nil, pos)
	}

	init := ballInit(utils.NewRandSource(4), 8, []float64{1, -2}, 0.2)
	ens, err := New(init, NewLocalPool(1, target), Config{Seed: 5})
	require.NoError(t, err)

	err = ens.Run(context.Background(), 2, 10, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestLocalPoolOrderAndRejections(t *testing.T) {
	fn := func(_ context.Context, pos []float64) prob.Result {
		if pos[0] < 0 {
			return prob.Reject("negative")
		}
		return prob.Ok(pos[0])
	}
	pool := NewLocalPool(4, fn)

	positions := [][]float64{{1}, {-1}, {2}, {3}, {-5}}
	results, err := pool.Map(context.Background(), positions)
	require.NoError(t, err)
	require.Len(t, results, 5)
	assert.Equal(t, 1.0, results[0].LogProb)
	assert.True(t, results[1].Rejected)
	assert.Equal(t, 3.0, results[3].LogProb)
	assert.True(t, results[4].Rejected)
}
