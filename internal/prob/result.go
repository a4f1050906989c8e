// Package prob evaluates the log-probability of a parameter vector: it
// drives the forward model through a scratch workspace and the external
// simulator, projects the synthesized image into the observation's Fourier
// domain and scores it against the data.
package prob

import "math"

// Result is the outcome of one probability evaluation. Exactly one of the
// three shapes occurs: a finite Ok value, a DomainRejected sentinel with
// LogProb -Inf, or a Fatal carrying the infrastructure error. LogProb is
// never NaN.
type Result struct {
	LogProb  float64
	Rejected bool
	Reason   string
	Err      error
}

// Ok wraps a finite log-probability. A NaN is coerced to a rejection so the
// -Inf contract holds even if intermediate arithmetic misbehaves.
func Ok(logProb float64) Result {
	if math.IsNaN(logProb) || math.IsInf(logProb, 1) {
		return Reject("non-finite log-probability")
	}
	if math.IsInf(logProb, -1) {
		return Reject("zero posterior density")
	}
	return Result{LogProb: logProb}
}

// Reject marks a recoverable failure: the proposal has zero posterior
// density and the sampler moves on.
func Reject(reason string) Result {
	return Result{LogProb: math.Inf(-1), Rejected: true, Reason: reason}
}

// Fatal marks an infrastructure failure that must abort the run.
func Fatal(err error) Result {
	return Result{LogProb: math.Inf(-1), Err: err}
}

// IsFatal reports whether the evaluation hit an infrastructure failure.
func (r Result) IsFatal() bool {
	return r.Err != nil
}
