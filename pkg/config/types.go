package config

// Config is the full run configuration.
type Config struct {
	LogLevel string `yaml:"log_level"`
	// Mode selects the fitting path: "mcmc" or "optimize".
	Mode string `yaml:"mode"`
	// OutDir is the root under which numbered run directories live.
	OutDir string `yaml:"out_dir"`
	// RunNumber selects the numbered run directory; an existing directory
	// with a checkpoint is resumed, otherwise a fresh run starts. Nil picks
	// the next unused number under OutDir.
	RunNumber *int `yaml:"run_number,omitempty"`

	Data      Data      `yaml:"data"`
	Model     Model     `yaml:"model"`
	Grid      Grid      `yaml:"grid"`
	Image     Image     `yaml:"image"`
	Sampler   Sampler   `yaml:"sampler"`
	Optimizer Optimizer `yaml:"optimizer,omitempty"`
	Simulator Simulator `yaml:"simulator"`
}

// Data describes the visibility observations.
type Data struct {
	Path string `yaml:"path"`
	// RestWavelength of the target line, micron.
	RestWavelength float64 `yaml:"rest_wavelength_micron"`
	// ExcludeVelocity lists velocity ranges (km/s) whose channels are
	// dropped from the fit.
	ExcludeVelocity [][2]float64 `yaml:"exclude_velocity_kms,omitempty"`
}

// Model selects the disk model variant and the fixed/free partition.
type Model struct {
	Kind string `yaml:"kind"`
	// Free is the ordered list of sampled parameter names; it defines the
	// interpretation of every parameter vector for the whole run.
	Free []string `yaml:"free"`
	// Fixed holds the parameters held constant.
	Fixed map[string]float64 `yaml:"fixed,omitempty"`
	// Priors maps each free parameter to its uniform prior range.
	Priors map[string][2]float64 `yaml:"priors"`
}

// Grid is the model grid description handed to the structure emitter.
type Grid struct {
	NR      int     `yaml:"nr"`
	NTheta  int     `yaml:"ntheta"`
	RminAU  float64 `yaml:"rmin_au"`
	RmaxAU  float64 `yaml:"rmax_au"`
	Opening float64 `yaml:"opening_rad"`
}

// Image fixes the commanded image geometry. The angular field of view is
// held constant across the run so the Fourier sampling grid never moves.
type Image struct {
	Npix      int     `yaml:"npix"`
	FOVArcsec float64 `yaml:"fov_arcsec"`
}

// Sampler tunes the ensemble sampler.
type Sampler struct {
	Walkers        int     `yaml:"walkers"`
	Loops          int     `yaml:"loops"`
	SamplesPerLoop int     `yaml:"samples_per_loop"`
	StretchA       float64 `yaml:"stretch_a,omitempty"`
	PoolSize       int     `yaml:"pool_size"`
	Seed           int64   `yaml:"seed,omitempty"`
	// StartFile optionally supplies the starting positions (same format
	// as a checkpoint). Without it, walkers start uniform in the prior.
	StartFile string `yaml:"start_file,omitempty"`
}

// Optimizer tunes the derivative-free optimization path.
type Optimizer struct {
	MaxIterations int `yaml:"max_iterations"`
	Restarts      int `yaml:"restarts"`
	// Ranges bound the multi-start search box per free parameter;
	// empty means the prior ranges are used.
	Ranges map[string][2]float64 `yaml:"ranges,omitempty"`
}

// Simulator locates the external radiative-transfer program and its static
// input files.
type Simulator struct {
	Path    string `yaml:"path"`
	HomeDir string `yaml:"home_dir"`
	// StaticFiles are copied from HomeDir into every workspace.
	StaticFiles []string `yaml:"static_files"`
	Species     string   `yaml:"species"`
	// WorkDir is the parent of the scratch workspaces; empty means the
	// system temp directory.
	WorkDir string `yaml:"work_dir,omitempty"`
}
