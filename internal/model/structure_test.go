package model

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diskfit/diskfit-core/internal/workspace"
)

func testParams() Params {
	return Params{
		Kind:   KindStandard,
		Mstar:  2.3,
		Rc:     150,
		T0:     60,
		Q:      0.5,
		Gamma:  1.0,
		MGas:   0.09,
		Vturb:  100,
		DistPC: 140,
		Incl:   44,
	}
}

func testGrid() Grid {
	return Grid{NR: 8, NTheta: 4, RminAU: 1, RmaxAU: 600, Opening: 0.7}
}

func TestWriteModelFiles(t *testing.T) {
	mgr := &workspace.Manager{HomeDir: t.TempDir(), BaseDir: t.TempDir()}
	ws, err := mgr.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer ws.Release()

	if err := WriteModelFiles(ws, testParams(), testGrid(), "co"); err != nil {
		t.Fatalf("WriteModelFiles failed: %v", err)
	}

	for _, name := range []string{"amr_grid.inp", "numberdens_co.inp", "gas_temperature.inp", "gas_velocity.inp", "microturbulence.inp"} {
		if _, err := os.Stat(filepath.Join(ws.Dir, name)); err != nil {
			t.Fatalf("expected %s in workspace: %v", name, err)
		}
	}

	// Scalar files declare nr*ntheta cells.
	data, err := os.ReadFile(filepath.Join(ws.Dir, "gas_temperature.inp"))
	if err != nil {
		t.Fatalf("reading temperature file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "1" || lines[1] != "32" {
		t.Fatalf("bad scalar file header: %v", lines[:2])
	}
	if len(lines) != 2+32 {
		t.Fatalf("expected 32 cell values, got %d lines", len(lines)-2)
	}
}

func TestWriteModelFilesRejectsBadGrid(t *testing.T) {
	mgr := &workspace.Manager{HomeDir: t.TempDir(), BaseDir: t.TempDir()}
	ws, err := mgr.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer ws.Release()

	bad := testGrid()
	bad.RmaxAU = 0.5
	if err := WriteModelFiles(ws, testParams(), bad, "co"); err == nil {
		t.Fatal("expected error for inverted radial bounds")
	}
}

func TestTruncatedDensityVanishesOutside(t *testing.T) {
	p := testParams()
	p.Kind = KindTruncated
	p.Rtrunc = 200

	inside := p.surfaceDensity(150 * auCm)
	outside := p.surfaceDensity(250 * auCm)
	if inside <= 0 {
		t.Fatalf("expected positive surface density inside truncation, got %g", inside)
	}
	if outside != 0 {
		t.Fatalf("expected zero surface density outside truncation, got %g", outside)
	}

	// The standard kind keeps its exponential taper instead.
	if testParams().surfaceDensity(250*auCm) <= 0 {
		t.Fatal("standard kind must stay positive past rc")
	}
}

func TestTemperatureFloor(t *testing.T) {
	p := testParams()
	if got := p.temperature(1e6 * auCm); got != tFloor {
		t.Fatalf("expected temperature floored at %g far out, got %g", tFloor, got)
	}
	if got := p.temperature(refRadiusAU * auCm); got != p.T0 {
		t.Fatalf("expected T0 at the reference radius, got %g", got)
	}
}
