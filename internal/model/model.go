// Package model resolves raw parameter vectors into typed disk-model
// parameters, evaluates their prior density, and emits the simulator's
// model-structure input files.
package model

import (
	"fmt"
	"math"
)

// ModelError marks a parameter vector that cannot be interpreted under the
// selected model kind. It is the recoverable error class of the conversion
// step: the proposal gets zero posterior density, the run continues.
type ModelError struct {
	Reason string
}

func (e *ModelError) Error() string {
	return "model: " + e.Reason
}

// Kind selects a disk model variant. Each kind carries its own parameter
// set and validation.
type Kind string

const (
	// KindStandard is the tapered power-law disk.
	KindStandard Kind = "standard"
	// KindTruncated is the power-law disk with a sharp outer edge.
	KindTruncated Kind = "truncated"
)

// ParseKind validates a configured model name.
func ParseKind(name string) (Kind, error) {
	switch Kind(name) {
	case KindStandard, KindTruncated:
		return Kind(name), nil
	default:
		return "", fmt.Errorf("unknown model kind: %s", name)
	}
}

// Params is the fully resolved parameter set driving one simulator
// invocation: the free values merged over the fixed ones.
type Params struct {
	Kind Kind

	Mstar  float64 // stellar mass, solar masses
	Rc     float64 // characteristic radius, AU
	T0     float64 // temperature at the reference radius, K
	Q      float64 // temperature power-law exponent
	Gamma  float64 // surface-density power-law exponent
	MGas   float64 // line-emitting gas mass, solar masses
	Vturb  float64 // microturbulence, m/s
	DistPC float64 // distance, pc
	Incl   float64 // inclination, degrees
	PosAng float64 // position angle, degrees
	Vsys   float64 // systemic velocity, m/s
	DRA    float64 // centroid right-ascension offset, arcsec
	DDec   float64 // centroid declination offset, arcsec

	// Rtrunc is the outer truncation radius in AU (KindTruncated only).
	Rtrunc float64
}

// fieldSetters maps parameter names to Params fields. The ordered free-name
// list and the fixed map both resolve through it, so a vector built with a
// name list is always interpreted with the same list.
var fieldSetters = map[string]func(*Params, float64){
	"mstar":  func(p *Params, v float64) { p.Mstar = v },
	"rc":     func(p *Params, v float64) { p.Rc = v },
	"t0":     func(p *Params, v float64) { p.T0 = v },
	"q":      func(p *Params, v float64) { p.Q = v },
	"gamma":  func(p *Params, v float64) { p.Gamma = v },
	"mgas":   func(p *Params, v float64) { p.MGas = v },
	"vturb":  func(p *Params, v float64) { p.Vturb = v },
	"dist":   func(p *Params, v float64) { p.DistPC = v },
	"incl":   func(p *Params, v float64) { p.Incl = v },
	"posang": func(p *Params, v float64) { p.PosAng = v },
	"vsys":   func(p *Params, v float64) { p.Vsys = v },
	"dra":    func(p *Params, v float64) { p.DRA = v },
	"ddec":   func(p *Params, v float64) { p.DDec = v },
	"rtrunc": func(p *Params, v float64) { p.Rtrunc = v },
}

// KnownName reports whether name is a recognized parameter.
func KnownName(name string) bool {
	_, ok := fieldSetters[name]
	return ok
}

// Convert merges a free-parameter vector (interpreted by the ordered name
// list) with the fixed parameters into a typed Params for the given kind,
// then validates ranges. Interpretation failures and out-of-domain values
// return a *ModelError.
func Convert(kind Kind, vec []float64, names []string, fixed map[string]float64) (Params, error) {
	if len(vec) != len(names) {
		return Params{}, &ModelError{Reason: fmt.Sprintf("vector length %d does not match %d free parameters", len(vec), len(names))}
	}

	p := Params{Kind: kind}
	for name, v := range fixed {
		set, ok := fieldSetters[name]
		if !ok {
			return Params{}, &ModelError{Reason: "unknown fixed parameter: " + name}
		}
		set(&p, v)
	}
	for i, name := range names {
		set, ok := fieldSetters[name]
		if !ok {
			return Params{}, &ModelError{Reason: "unknown free parameter: " + name}
		}
		if math.IsNaN(vec[i]) || math.IsInf(vec[i], 0) {
			return Params{}, &ModelError{Reason: "non-finite value for parameter " + name}
		}
		set(&p, vec[i])
	}

	if err := p.validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

func (p *Params) validate() error {
	switch {
	case p.Mstar <= 0:
		return &ModelError{Reason: fmt.Sprintf("stellar mass must be positive, got %g", p.Mstar)}
	case p.Rc <= 0:
		return &ModelError{Reason: fmt.Sprintf("characteristic radius must be positive, got %g", p.Rc)}
	case p.T0 <= 0:
		return &ModelError{Reason: fmt.Sprintf("temperature normalization must be positive, got %g", p.T0)}
	case p.MGas <= 0:
		return &ModelError{Reason: fmt.Sprintf("gas mass must be positive, got %g", p.MGas)}
	case p.Vturb < 0:
		return &ModelError{Reason: fmt.Sprintf("microturbulence cannot be negative, got %g", p.Vturb)}
	case p.DistPC <= 0:
		return &ModelError{Reason: fmt.Sprintf("distance must be positive, got %g", p.DistPC)}
	case math.Abs(p.Incl) > 90:
		return &ModelError{Reason: fmt.Sprintf("inclination must be within [-90, 90] degrees, got %g", p.Incl)}
	case p.Gamma >= 2:
		return &ModelError{Reason: fmt.Sprintf("surface-density exponent must be below 2, got %g", p.Gamma)}
	}

	if p.Kind == KindTruncated {
		if p.Rtrunc <= 0 {
			return &ModelError{Reason: fmt.Sprintf("truncation radius must be positive, got %g", p.Rtrunc)}
		}
		if p.Rtrunc <= p.Rc {
			return &ModelError{Reason: fmt.Sprintf("truncation radius %g must exceed characteristic radius %g", p.Rtrunc, p.Rc)}
		}
	}
	return nil
}
