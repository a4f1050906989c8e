// Package vistrans projects a synthesized image into the Fourier domain of
// the observations: distance scaling, gridding correction, per-channel 2-D
// FFT, and precomputed interpolation onto each data channel's exact (u,v)
// sample coordinates.
package vistrans

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/diskfit/diskfit-core/internal/imaging"
)

const (
	// ParsecCm is one parsec in cm.
	ParsecCm = 3.0856775814913673e18
	// radToArcsec converts radians to arcseconds.
	radToArcsec = 206264.80624709636
	// jyPerCGS converts erg/s/cm^2/Hz to Jy.
	jyPerCGS = 1e23
)

// VisSet is the Fourier transform of a multi-channel image, sampled on a
// centered uniform (u,v) grid in kilolambda. Planes are row-major with the
// v index as the row and the u index as the column.
type VisSet struct {
	N           int
	U           []float64 // ascending, length N, kilolambda
	V           []float64
	Wavelengths []float64
	Planes      [][]complex128
	// PixelArcsec is the on-sky pixel scale after distance conversion.
	PixelArcsec float64
}

// Transform converts the image to on-sky angular scale at the given distance
// (pc), applies the gridding correction in place, and computes the centered
// 2-D Fourier transform of every channel. The image must be square with an
// even pixel count.
func Transform(img *imaging.Image, distPC float64) (*VisSet, error) {
	if img.Nx != img.Ny {
		return nil, fmt.Errorf("image must be square, got %dx%d", img.Nx, img.Ny)
	}
	n := img.Nx
	if n%2 != 0 {
		return nil, fmt.Errorf("image pixel count must be even, got %d", n)
	}
	if distPC <= 0 {
		return nil, fmt.Errorf("distance must be positive, got %f pc", distPC)
	}

	pixelRad := img.PixelSizeCm / (distPC * ParsecCm)

	// Compensates the bilinear resampling of the Fourier grid performed by
	// the interpolators. Applied exactly once, before the transform; the
	// translation correction happens later in the phase-shift step.
	applyCorrection(img.Planes, n)

	vs := &VisSet{
		N:           n,
		U:           FreqAxis(n, pixelRad),
		V:           FreqAxis(n, pixelRad),
		Wavelengths: img.Wavelengths,
		Planes:      make([][]complex128, img.Nchan),
		PixelArcsec: pixelRad * radToArcsec,
	}

	// Sum -> integral: each transform coefficient carries the pixel solid
	// angle, and intensities convert from CGS to Jy.
	scale := complex(pixelRad*pixelRad*jyPerCGS, 0)

	fft := fourier.NewCmplxFFT(n)
	for c, plane := range img.Planes {
		vis := fft2Centered(fft, plane, n)
		for i := range vis {
			vis[i] *= scale
		}
		vs.Planes[c] = vis
	}
	return vs, nil
}

// FreqAxis returns the centered spatial-frequency axis in kilolambda for n
// pixels of angular size pixelRad. The axis depends only on the angular
// field of view, which is held fixed for a run, so interpolators built on it
// once stay valid for every evaluation.
func FreqAxis(n int, pixelRad float64) []float64 {
	axis := make([]float64, n)
	df := 1.0 / (float64(n) * pixelRad)
	for k := range axis {
		axis[k] = float64(k-n/2) * df / 1e3
	}
	return axis
}

// applyCorrection divides every plane by the separable transform of the
// bilinear interpolation kernel, sinc^2 along each axis about the image
// center.
func applyCorrection(planes [][]float64, n int) {
	corr := make([]float64, n)
	for i := range corr {
		corr[i] = 1.0 / sinc2(float64(i-n/2)/float64(n))
	}
	for _, plane := range planes {
		for iy := 0; iy < n; iy++ {
			for ix := 0; ix < n; ix++ {
				plane[iy*n+ix] *= corr[iy] * corr[ix]
			}
		}
	}
}

func sinc2(x float64) float64 {
	if x == 0 {
		return 1
	}
	s := math.Sin(math.Pi*x) / (math.Pi * x)
	return s * s
}

// fft2Centered computes the 2-D DFT of a row-major real plane with the
// zero-frequency term centered: shift, row transforms, column transforms,
// shift back.
func fft2Centered(fft *fourier.CmplxFFT, plane []float64, n int) []complex128 {
	work := make([]complex128, n*n)
	half := n / 2
	// Pre-shift so the image center sits at index 0 for the DFT.
	for iy := 0; iy < n; iy++ {
		for ix := 0; ix < n; ix++ {
			sy := (iy + half) % n
			sx := (ix + half) % n
			work[iy*n+ix] = complex(plane[sy*n+sx], 0)
		}
	}

	row := make([]complex128, n)
	for iy := 0; iy < n; iy++ {
		fft.Coefficients(row, work[iy*n:(iy+1)*n])
		copy(work[iy*n:(iy+1)*n], row)
	}

	col := make([]complex128, n)
	for ix := 0; ix < n; ix++ {
		for iy := 0; iy < n; iy++ {
			col[iy] = work[iy*n+ix]
		}
		fft.Coefficients(row, col)
		for iy := 0; iy < n; iy++ {
			work[iy*n+ix] = row[iy]
		}
	}

	// Post-shift so frequency zero sits at n/2 on both axes.
	out := make([]complex128, n*n)
	for iy := 0; iy < n; iy++ {
		for ix := 0; ix < n; ix++ {
			sy := (iy + half) % n
			sx := (ix + half) % n
			out[sy*n+sx] = work[iy*n+ix]
		}
	}
	return out
}
