// Package imaging reads the synthesized multi-channel image emitted by the
// radiative-transfer simulator into one probability evaluation.
package imaging

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
)

// ImageError marks a failure to read or parse the simulator's output image.
// It is the recoverable error class of the evaluation pipeline: a truncated
// or missing image means the proposal gets zero posterior density, not that
// the run is broken.
type ImageError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ImageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("image %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("image %s: %s", e.Path, e.Reason)
}

func (e *ImageError) Unwrap() error {
	return e.Err
}

// Image is a synthesized multi-channel image. Planes holds one row-major
// Nx*Ny intensity plane per channel, in the wavelength order of the
// simulator's wavelength file.
type Image struct {
	Nx, Ny      int
	Nchan       int
	PixelSizeCm float64 // square pixels at the model, before distance scaling
	Wavelengths []float64
	Planes      [][]float64
}

// ReadImage parses the simulator's plain-text image output: a format code,
// the pixel dimensions, the channel count, the pixel size in cm, one
// wavelength per channel, then Nx*Ny intensity values per channel. Every
// failure is wrapped in *ImageError.
func ReadImage(path string) (*Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &ImageError{Path: path, Reason: "open failed", Err: err}
	}
	defer file.Close()

	sc := bufio.NewScanner(file)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)

	nextInt := func(what string) (int, error) {
		if !sc.Scan() {
			return 0, &ImageError{Path: path, Reason: "truncated before " + what, Err: sc.Err()}
		}
		v, err := strconv.Atoi(sc.Text())
		if err != nil {
			return 0, &ImageError{Path: path, Reason: "bad " + what, Err: err}
		}
		return v, nil
	}
	nextFloat := func(what string) (float64, error) {
		if !sc.Scan() {
			return 0, &ImageError{Path: path, Reason: "truncated before " + what, Err: sc.Err()}
		}
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return 0, &ImageError{Path: path, Reason: "bad " + what, Err: err}
		}
		return v, nil
	}

	format, err := nextInt("format code")
	if err != nil {
		return nil, err
	}
	if format != 1 {
		return nil, &ImageError{Path: path, Reason: fmt.Sprintf("unsupported format code %d", format)}
	}

	img := &Image{}
	if img.Nx, err = nextInt("nx"); err != nil {
		return nil, err
	}
	if img.Ny, err = nextInt("ny"); err != nil {
		return nil, err
	}
	if img.Nchan, err = nextInt("channel count"); err != nil {
		return nil, err
	}
	if img.Nx <= 0 || img.Ny <= 0 || img.Nchan <= 0 {
		return nil, &ImageError{Path: path, Reason: fmt.Sprintf("bad dimensions %dx%dx%d", img.Nx, img.Ny, img.Nchan)}
	}

	pixX, err := nextFloat("pixel size x")
	if err != nil {
		return nil, err
	}
	pixY, err := nextFloat("pixel size y")
	if err != nil {
		return nil, err
	}
	if pixX <= 0 || pixX != pixY {
		return nil, &ImageError{Path: path, Reason: fmt.Sprintf("non-square pixels %g x %g", pixX, pixY)}
	}
	img.PixelSizeCm = pixX

	img.Wavelengths = make([]float64, img.Nchan)
	for i := range img.Wavelengths {
		if img.Wavelengths[i], err = nextFloat("wavelength"); err != nil {
			return nil, err
		}
	}

	npix := img.Nx * img.Ny
	img.Planes = make([][]float64, img.Nchan)
	for c := range img.Planes {
		plane := make([]float64, npix)
		for i := range plane {
			if plane[i], err = nextFloat(fmt.Sprintf("pixel %d of plane %d", i, c)); err != nil {
				return nil, err
			}
		}
		img.Planes[c] = plane
	}

	return img, nil
}
