// Package visdata holds the observed interferometric visibilities, one
// channel per spectral slice, loaded once per run and read-only afterwards.
package visdata

// Channel is one spectral channel of observed visibilities: parallel slices
// of (u, v) spatial frequencies (kilolambda), real and imaginary parts (Jy)
// and statistical weights.
type Channel struct {
	Wavelength float64 // micron
	U          []float64
	V          []float64
	Re         []float64
	Im         []float64
	Weight     []float64
}

// Len returns the number of samples in the channel.
func (c Channel) Len() int {
	return len(c.U)
}

// Dataset is the full observation, one Channel per spectral channel in
// wavelength order.
type Dataset struct {
	Channels []Channel
}

// Wavelengths returns the channel wavelengths in order.
func (d Dataset) Wavelengths() []float64 {
	wavs := make([]float64, len(d.Channels))
	for i, c := range d.Channels {
		wavs[i] = c.Wavelength
	}
	return wavs
}

// Select returns a dataset holding only the channels where mask is true.
// The underlying sample slices are shared, not copied; the dataset is
// read-only by contract.
func (d Dataset) Select(mask []bool) Dataset {
	out := Dataset{}
	for i, c := range d.Channels {
		if i < len(mask) && mask[i] {
			out.Channels = append(out.Channels, c)
		}
	}
	return out
}

// Conjugate returns a copy of the dataset with the imaginary parts negated.
// Visibilities are Hermitian-symmetric; this normalizes the sign convention
// of the recording instrument to the transform's convention, once per run.
func (d Dataset) Conjugate() Dataset {
	out := Dataset{Channels: make([]Channel, len(d.Channels))}
	for i, c := range d.Channels {
		im := make([]float64, len(c.Im))
		for j, v := range c.Im {
			im[j] = -v
		}
		out.Channels[i] = Channel{
			Wavelength: c.Wavelength,
			U:          c.U,
			V:          c.V,
			Re:         c.Re,
			Im:         im,
			Weight:     c.Weight,
		}
	}
	return out
}
