package model

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Prior is an independent uniform box over the free parameters. Outside the
// box the log-density is -Inf.
type Prior struct {
	dists []distuv.Uniform
}

// NewPrior builds the prior from the ordered free-parameter names and their
// configured ranges. Every free parameter needs a range.
func NewPrior(names []string, ranges map[string][2]float64) (*Prior, error) {
	pr := &Prior{dists: make([]distuv.Uniform, len(names))}
	for i, name := range names {
		r, ok := ranges[name]
		if !ok {
			return nil, &ModelError{Reason: "no prior range for free parameter " + name}
		}
		if r[1] <= r[0] {
			return nil, &ModelError{Reason: "empty prior range for parameter " + name}
		}
		pr.dists[i] = distuv.Uniform{Min: r[0], Max: r[1]}
	}
	return pr, nil
}

// LogProb returns the summed log-density of the free vector under the box
// prior, -Inf outside it. It never returns NaN.
func (pr *Prior) LogProb(vec []float64) float64 {
	if len(vec) != len(pr.dists) {
		return math.Inf(-1)
	}
	sum := 0.0
	for i, d := range pr.dists {
		lp := d.LogProb(vec[i])
		if math.IsInf(lp, -1) || math.IsNaN(lp) {
			return math.Inf(-1)
		}
		sum += lp
	}
	return sum
}
