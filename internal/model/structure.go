package model

import (
	"fmt"
	"math"
	"strings"

	"github.com/diskfit/diskfit-core/internal/workspace"
)

// cgs constants used by the structure emitter.
const (
	gravG  = 6.6743e-8   // cm^3 g^-1 s^-2
	mSun   = 1.989e33    // g
	auCm   = 1.496e13    // cm
	kBoltz = 1.380649e-16
	muGas  = 2.37 // mean molecular weight
	mH     = 1.6726e-24
	// refRadiusAU anchors the temperature power law.
	refRadiusAU = 10.0
	// tFloor keeps the temperature above the microwave background.
	tFloor = 2.7
	// abundance of the line species relative to H2
	lineAbundance = 1e-4
)

// Grid is the spherical (r, theta) model grid the structure files are
// written on; the disk is azimuthally symmetric.
type Grid struct {
	NR      int
	NTheta  int
	RminAU  float64
	RmaxAU  float64
	Opening float64 // half-opening angle from the midplane, radians
}

// Validate checks the grid description.
func (g Grid) Validate() error {
	if g.NR < 2 || g.NTheta < 2 {
		return fmt.Errorf("grid must have at least 2 cells per dimension, got %dx%d", g.NR, g.NTheta)
	}
	if g.RminAU <= 0 || g.RmaxAU <= g.RminAU {
		return fmt.Errorf("bad radial bounds [%g, %g] AU", g.RminAU, g.RmaxAU)
	}
	if g.Opening <= 0 || g.Opening > math.Pi/2 {
		return fmt.Errorf("opening angle must be in (0, pi/2], got %g", g.Opening)
	}
	return nil
}

// WriteModelFiles emits the simulator-readable structure files for the
// resolved parameters into the workspace: the grid geometry, the species
// number density, the gas temperature, the velocity field and the
// microturbulence, all on the cell centers of g.
func WriteModelFiles(ws *workspace.Workspace, p Params, g Grid, species string) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("invalid model grid: %w", err)
	}

	rWalls := logWalls(g.RminAU*auCm, g.RmaxAU*auCm, g.NR)
	thWalls := linWalls(math.Pi/2-g.Opening, math.Pi/2, g.NTheta)

	if err := ws.WriteFile("amr_grid.inp", gridFile(rWalls, thWalls)); err != nil {
		return err
	}

	ncells := g.NR * g.NTheta
	dens := make([]float64, 0, ncells)
	temp := make([]float64, 0, ncells)
	vturb := make([]float64, 0, ncells)
	var vel strings.Builder
	fmt.Fprintf(&vel, "1\n%d\n", ncells)

	mstarG := p.Mstar * mSun
	for it := 0; it < g.NTheta; it++ {
		th := 0.5 * (thWalls[it] + thWalls[it+1])
		for ir := 0; ir < g.NR; ir++ {
			r := math.Sqrt(rWalls[ir] * rWalls[ir+1])
			rcyl := r * math.Sin(th)
			z := r * math.Cos(th)

			t := p.temperature(rcyl)
			rho := p.density(rcyl, z, t, mstarG)

			dens = append(dens, lineAbundance*rho/(muGas*mH))
			temp = append(temp, t)
			vturb = append(vturb, p.Vturb*100) // m/s -> cm/s

			vphi := math.Sqrt(gravG * mstarG / rcyl)
			fmt.Fprintf(&vel, "%.9e %.9e %.9e\n", 0.0, 0.0, vphi)
		}
	}

	if err := ws.WriteFile("numberdens_"+species+".inp", scalarFile(dens)); err != nil {
		return err
	}
	if err := ws.WriteFile("gas_temperature.inp", scalarFile(temp)); err != nil {
		return err
	}
	if err := ws.WriteFile("microturbulence.inp", scalarFile(vturb)); err != nil {
		return err
	}
	return ws.WriteFile("gas_velocity.inp", vel.String())
}

// temperature is the radial power law anchored at the reference radius,
// floored at the microwave background.
func (p Params) temperature(rcyl float64) float64 {
	t := p.T0 * math.Pow(rcyl/(refRadiusAU*auCm), -p.Q)
	if t < tFloor {
		return tFloor
	}
	return t
}

// surfaceDensity is the tapered power law, truncated sharply for the
// truncated kind.
func (p Params) surfaceDensity(rcyl float64) float64 {
	rcCm := p.Rc * auCm
	if p.Kind == KindTruncated && rcyl > p.Rtrunc*auCm {
		return 0
	}
	x := rcyl / rcCm
	sigmaC := (2 - p.Gamma) * p.MGas * mSun / (2 * math.Pi * rcCm * rcCm)
	return sigmaC * math.Pow(x, -p.Gamma) * math.Exp(-math.Pow(x, 2-p.Gamma))
}

// density is the vertically isothermal hydrostatic profile.
func (p Params) density(rcyl, z, t, mstarG float64) float64 {
	sigma := p.surfaceDensity(rcyl)
	if sigma == 0 {
		return 0
	}
	cs := math.Sqrt(kBoltz * t / (muGas * mH))
	omega := math.Sqrt(gravG * mstarG / (rcyl * rcyl * rcyl))
	h := cs / omega
	return sigma / (math.Sqrt(2*math.Pi) * h) * math.Exp(-z*z/(2*h*h))
}

func logWalls(min, max float64, n int) []float64 {
	walls := make([]float64, n+1)
	step := math.Log(max/min) / float64(n)
	for i := range walls {
		walls[i] = min * math.Exp(float64(i)*step)
	}
	return walls
}

func linWalls(min, max float64, n int) []float64 {
	walls := make([]float64, n+1)
	step := (max - min) / float64(n)
	for i := range walls {
		walls[i] = min + float64(i)*step
	}
	return walls
}

func gridFile(rWalls, thWalls []float64) string {
	var b strings.Builder
	b.WriteString("1\n0\n100\n0\n1 1 0\n")
	fmt.Fprintf(&b, "%d %d 1\n", len(rWalls)-1, len(thWalls)-1)
	for _, w := range rWalls {
		fmt.Fprintf(&b, "%.9e\n", w)
	}
	for _, w := range thWalls {
		fmt.Fprintf(&b, "%.9e\n", w)
	}
	b.WriteString("0.0\n6.283185307179586\n")
	return b.String()
}

func scalarFile(vals []float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "1\n%d\n", len(vals))
	for _, v := range vals {
		fmt.Fprintf(&b, "%.9e\n", v)
	}
	return b.String()
}
