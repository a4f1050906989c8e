// Package spectral maps between channel wavelengths and Doppler velocities
// and builds the active-channel mask from excluded velocity ranges.
package spectral

import "math"

// CLight is the speed of light in m/s.
const CLight = 2.99792458e8

// Velocities converts observed channel wavelengths to non-relativistic
// Doppler velocities (m/s) relative to the rest-frame wavelength restWav.
// Wavelength units cancel; both arguments use the same unit.
func Velocities(restWav float64, wavs []float64) []float64 {
	vels := make([]float64, len(wavs))
	for i, w := range wavs {
		vels[i] = CLight * (w - restWav) / restWav
	}
	return vels
}

// ShiftWavelengths Doppler-shifts rest/lab wavelengths by the systemic
// velocity vsys (m/s), using the relativistic form
// lambda' = lambda * sqrt((1 - beta)/(1 + beta)).
func ShiftWavelengths(wavs []float64, vsys float64) []float64 {
	beta := vsys / CLight
	factor := math.Sqrt((1 - beta) / (1 + beta))
	shifted := make([]float64, len(wavs))
	for i, w := range wavs {
		shifted[i] = w * factor
	}
	return shifted
}

// WavelengthAt returns the observed wavelength corresponding to a
// non-relativistic Doppler velocity v (m/s) about restWav.
func WavelengthAt(restWav, v float64) float64 {
	return restWav * (1 + v/CLight)
}

// ActiveMask marks channels whose velocity (m/s) lies outside every excluded
// range as active. A channel is excluded when lo <= v <= hi (closed
// interval). With no ranges configured every channel is active.
func ActiveMask(velocities []float64, exclude [][2]float64) []bool {
	mask := make([]bool, len(velocities))
	for i, v := range velocities {
		mask[i] = true
		for _, r := range exclude {
			if v >= r[0] && v <= r[1] {
				mask[i] = false
				break
			}
		}
	}
	return mask
}
