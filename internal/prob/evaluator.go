package prob

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os/exec"

	"github.com/diskfit/diskfit-core/internal/imaging"
	"github.com/diskfit/diskfit-core/internal/model"
	"github.com/diskfit/diskfit-core/internal/spectral"
	"github.com/diskfit/diskfit-core/internal/visdata"
	"github.com/diskfit/diskfit-core/internal/vistrans"
	"github.com/diskfit/diskfit-core/internal/workspace"
	"github.com/diskfit/diskfit-core/pkg/logger"
)

// EvaluatorConfig wires an Evaluator. Everything here is resolved once at
// run start and immutable afterwards; concurrent evaluations share it
// read-only.
type EvaluatorConfig struct {
	Kind        model.Kind
	FreeNames   []string
	Fixed       map[string]float64
	PriorRanges map[string][2]float64
	// Data holds the active, conjugated channels in wavelength order.
	Data       visdata.Dataset
	Grid       model.Grid
	Species    string
	Npix       int
	FOVArcsec  float64
	Workspaces *workspace.Manager
	Logger     *slog.Logger
}

// Evaluator computes the log-probability of a free-parameter vector. It is
// safe for concurrent use: all shared state is read-only and each
// evaluation owns a private workspace.
type Evaluator struct {
	cfg     EvaluatorConfig
	prior   *model.Prior
	interps []*vistrans.Interpolator
	log     *slog.Logger
}

// NewEvaluator validates the configuration, builds the prior and
// precomputes one interpolator per data channel on the run's fixed
// frequency grid.
func NewEvaluator(cfg EvaluatorConfig) (*Evaluator, error) {
	if len(cfg.Data.Channels) == 0 {
		return nil, fmt.Errorf("no active data channels")
	}
	if cfg.Npix < 2 || cfg.Npix%2 != 0 {
		return nil, fmt.Errorf("pixel count must be even and at least 2, got %d", cfg.Npix)
	}
	if cfg.FOVArcsec <= 0 {
		return nil, fmt.Errorf("field of view must be positive, got %g", cfg.FOVArcsec)
	}
	if cfg.Workspaces == nil {
		return nil, fmt.Errorf("workspace manager is required")
	}
	for _, name := range cfg.FreeNames {
		if !model.KnownName(name) {
			return nil, fmt.Errorf("unknown free parameter: %s", name)
		}
	}

	prior, err := model.NewPrior(cfg.FreeNames, cfg.PriorRanges)
	if err != nil {
		return nil, fmt.Errorf("building prior: %w", err)
	}

	// The angular field of view is fixed for the run, so the frequency grid
	// and the per-channel interpolators never change across evaluations.
	pixelRad := cfg.FOVArcsec * arcsecRad / float64(cfg.Npix)
	axis := vistrans.FreqAxis(cfg.Npix, pixelRad)
	interps := make([]*vistrans.Interpolator, len(cfg.Data.Channels))
	for i, ch := range cfg.Data.Channels {
		ip, err := vistrans.NewInterpolator(ch.U, ch.V, axis, axis)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", i, err)
		}
		interps[i] = ip
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Default
	}
	return &Evaluator{cfg: cfg, prior: prior, interps: interps, log: log}, nil
}

// Dim returns the number of free parameters.
func (e *Evaluator) Dim() int {
	return len(e.cfg.FreeNames)
}

// Evaluate runs the full pipeline for one parameter vector. Domain and
// image-read failures yield a rejection (log-probability -Inf); anything
// else after workspace acquisition is fatal and surfaces in the Result
// after the workspace is released. The returned log-probability is finite
// or -Inf, never NaN.
func (e *Evaluator) Evaluate(ctx context.Context, vec []float64) Result {
	p, err := model.Convert(e.cfg.Kind, vec, e.cfg.FreeNames, e.cfg.Fixed)
	if err != nil {
		var merr *model.ModelError
		if errors.As(err, &merr) {
			e.log.Warn("proposal rejected at conversion", "reason", merr.Reason, "params", vec)
			return Reject(merr.Reason)
		}
		return Fatal(err)
	}

	lnPrior := e.prior.LogProb(vec)
	if math.IsInf(lnPrior, -1) {
		e.log.Debug("proposal outside prior support", "params", vec)
		return Reject("zero prior density")
	}

	ws, err := e.cfg.Workspaces.Acquire()
	if err != nil {
		return Fatal(fmt.Errorf("acquiring workspace: %w", err))
	}
	// Unconditional cleanup: the caller observes the workspace gone no
	// matter which state the evaluation failed in.
	defer func() {
		if rerr := ws.Release(); rerr != nil {
			e.log.Error("workspace release failed", "dir", ws.Dir, "error", rerr)
		}
	}()

	if err := ws.Stage(); err != nil {
		return Fatal(err)
	}
	if err := model.WriteModelFiles(ws, p, e.cfg.Grid, e.cfg.Species); err != nil {
		return Fatal(err)
	}
	shifted := spectral.ShiftWavelengths(e.cfg.Data.Wavelengths(), p.Vsys)
	if err := ws.WriteWavelengths(shifted); err != nil {
		return Fatal(err)
	}

	args := workspace.ImageArgs{
		Incl:   p.Incl,
		PosAng: p.PosAng,
		Npix:   e.cfg.Npix,
		SizeAU: e.cfg.FOVArcsec * p.DistPC, // fixed angular FOV, scaled to this distance
	}
	if err := ws.RunSimulator(ctx, args); err != nil {
		if ctx.Err() != nil {
			return Fatal(ctx.Err())
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// Could not run the binary at all: environment defect.
			return Fatal(err)
		}
		// A crashed simulator leaves no readable image; the read below
		// classifies it.
		e.log.Warn("simulator exited abnormally", "error", err, "params", vec)
	}

	img, err := imaging.ReadImage(ws.ImagePath())
	if err != nil {
		var ierr *imaging.ImageError
		if errors.As(err, &ierr) {
			e.log.Warn("proposal rejected at image read", "error", ierr, "params", vec)
			return Reject(ierr.Reason)
		}
		return Fatal(err)
	}
	if img.Nchan != len(e.cfg.Data.Channels) {
		return Fatal(fmt.Errorf("simulator produced %d channels for %d data channels", img.Nchan, len(e.cfg.Data.Channels)))
	}
	if img.Nx != e.cfg.Npix || img.Ny != e.cfg.Npix {
		return Fatal(fmt.Errorf("simulator produced %dx%d image, expected %d pixels", img.Nx, img.Ny, e.cfg.Npix))
	}

	vs, err := vistrans.Transform(img, p.DistPC)
	if err != nil {
		return Fatal(fmt.Errorf("transforming image: %w", err))
	}

	// The simulator's pixel convention puts the image center half a pixel
	// off the phase center on both axes.
	dRA := p.DRA + 0.5*vs.PixelArcsec
	dDec := p.DDec + 0.5*vs.PixelArcsec

	total := lnPrior
	for i, ch := range e.cfg.Data.Channels {
		mv := e.interps[i].Sample(vs.Planes[i])
		PhaseShift(mv, ch.U, ch.V, dRA, dDec)
		total += ChannelLogLike(mv, ch)
	}
	return Ok(total)
}
