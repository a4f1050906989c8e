package utils

import (
	"math/rand"
	"time"
)

// RandSource is a seeded random number generator for the sampler controller.
// It is not safe for concurrent use; the controller is its only consumer.
type RandSource struct {
	rng *rand.Rand
}

// NewRandSource creates a new random source with the given seed
func NewRandSource(seed int64) *RandSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandSource{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Float64 returns a random float64 in [0.0, 1.0)
func (r *RandSource) Float64() float64 {
	return r.rng.Float64()
}

// Intn returns a random int in [0, n)
func (r *RandSource) Intn(n int) int {
	return r.rng.Intn(n)
}

// NormFloat64 returns a normally distributed random number with mean and stddev
func (r *RandSource) NormFloat64(mean, stddev float64) float64 {
	return r.rng.NormFloat64()*stddev + mean
}

// UniformFloat64 returns a uniformly distributed random number in [min, max)
func (r *RandSource) UniformFloat64(min, max float64) float64 {
	return min + r.rng.Float64()*(max-min)
}

// StretchScale draws a stretch-move scale z with density proportional to
// 1/sqrt(z) on [1/a, a], using the inverse-CDF form z = ((a-1)u + 1)^2 / a.
func (r *RandSource) StretchScale(a float64) float64 {
	u := r.rng.Float64()
	g := (a-1.0)*u + 1.0
	return g * g / a
}
