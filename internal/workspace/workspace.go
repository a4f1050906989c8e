// Package workspace manages the per-evaluation scratch directory in which
// the external radiative-transfer simulator runs. Each probability
// evaluation acquires its own uniquely named workspace and releases it on
// every exit path; the caller's working directory is never changed, the
// simulator subprocess is rooted at the workspace instead.
package workspace

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/diskfit/diskfit-core/pkg/utils"
)

// WavelengthFile is the per-workspace file the simulator reads the imaging
// wavelengths from.
const WavelengthFile = "camera_wavelength_micron.inp"

// Manager creates workspaces and knows where the static simulator inputs
// live and which binary to invoke.
type Manager struct {
	// HomeDir holds the static input files copied into every workspace.
	HomeDir string
	// BaseDir is the parent under which scratch directories are created.
	BaseDir string
	// StaticFiles are the file names staged verbatim from HomeDir
	// (simulator config, wavelength grid, line list, molecule files).
	StaticFiles []string
	// SimulatorPath is the external simulator binary.
	SimulatorPath string
}

// Workspace is one scratch directory, owned by a single evaluation.
type Workspace struct {
	Dir string
	mgr *Manager
}

// ImageArgs are the imaging arguments passed to one simulator invocation.
type ImageArgs struct {
	Incl   float64 // degrees
	PosAng float64 // degrees
	Npix   int
	SizeAU float64
}

// Acquire creates a new uniquely named, empty workspace directory.
func (m *Manager) Acquire() (*Workspace, error) {
	dir := filepath.Join(m.BaseDir, utils.GenerateWorkspaceID())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace %s: %w", dir, err)
	}
	return &Workspace{Dir: dir, mgr: m}, nil
}

// Stage copies the manager's static input files from the home directory
// into the workspace.
func (w *Workspace) Stage() error {
	for _, name := range w.mgr.StaticFiles {
		src := filepath.Join(w.mgr.HomeDir, name)
		dst := filepath.Join(w.Dir, name)
		if err := copyFile(src, dst); err != nil {
			return fmt.Errorf("failed to stage %s: %w", name, err)
		}
	}
	return nil
}

// WriteWavelengths writes the Doppler-shifted imaging wavelengths (micron)
// in the simulator's camera wavelength format: a count line, then one
// wavelength per line.
func (w *Workspace) WriteWavelengths(wavs []float64) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%d\n", len(wavs))
	for _, wav := range wavs {
		fmt.Fprintf(&b, "%.10e\n", wav)
	}
	path := filepath.Join(w.Dir, WavelengthFile)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write wavelength file: %w", err)
	}
	return nil
}

// WriteFile writes an arbitrary simulator input file into the workspace.
// Model-structure emitters use it so they never touch paths outside the
// workspace.
func (w *Workspace) WriteFile(name, contents string) error {
	if err := os.WriteFile(filepath.Join(w.Dir, name), []byte(contents), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// ImagePath returns the path of the simulator's output image inside the
// workspace.
func (w *Workspace) ImagePath() string {
	return filepath.Join(w.Dir, "image.out")
}

// RunSimulator invokes the external simulator synchronously with the
// workspace as its working directory. Stdout is discarded; stderr is
// captured and surfaced in the returned error. The call blocks until the
// simulator exits; no timeout is imposed, a hung simulator stalls this
// evaluation.
func (w *Workspace) RunSimulator(ctx context.Context, args ImageArgs) error {
	argv := []string{
		"image",
		"incl", formatFloat(args.Incl),
		"posang", formatFloat(args.PosAng),
		"npix", strconv.Itoa(args.Npix),
		"loadlambda",
		"sizeau", formatFloat(args.SizeAU),
	}

	cmd := exec.CommandContext(ctx, w.mgr.SimulatorPath, argv...)
	cmd.Dir = w.Dir
	cmd.Stdout = io.Discard
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("simulator failed: %w: %s", err, msg)
		}
		return fmt.Errorf("simulator failed: %w", err)
	}
	return nil
}

// Release deletes the workspace directory. Safe to call more than once.
func (w *Workspace) Release() error {
	if err := os.RemoveAll(w.Dir); err != nil {
		return fmt.Errorf("failed to release workspace %s: %w", w.Dir, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
