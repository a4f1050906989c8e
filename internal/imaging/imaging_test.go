package imaging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeImage(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.out")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing image file: %v", err)
	}
	return path
}

// goodImage builds a 2x2, 2-channel image whose pixel value is
// 10*channel + index.
func goodImage() string {
	var b strings.Builder
	b.WriteString("1\n2 2\n2\n1.0e15 1.0e15\n866.9\n867.1\n\n")
	for c := 0; c < 2; c++ {
		for i := 0; i < 4; i++ {
			fmt.Fprintf(&b, "%d\n", 10*c+i)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func TestReadImage(t *testing.T) {
	img, err := ReadImage(writeImage(t, goodImage()))
	if err != nil {
		t.Fatalf("ReadImage failed: %v", err)
	}
	if img.Nx != 2 || img.Ny != 2 || img.Nchan != 2 {
		t.Fatalf("bad dimensions: %dx%d, %d channels", img.Nx, img.Ny, img.Nchan)
	}
	if img.PixelSizeCm != 1.0e15 {
		t.Fatalf("bad pixel size: %g", img.PixelSizeCm)
	}
	if img.Wavelengths[1] != 867.1 {
		t.Fatalf("bad wavelength: %f", img.Wavelengths[1])
	}
	if img.Planes[1][3] != 13 {
		t.Fatalf("bad pixel value: %f", img.Planes[1][3])
	}
}

func TestReadImageMissingFile(t *testing.T) {
	_, err := ReadImage(filepath.Join(t.TempDir(), "no-such-image.out"))
	var imgErr *ImageError
	if !errors.As(err, &imgErr) {
		t.Fatalf("expected *ImageError for missing file, got %T: %v", err, err)
	}
}

func TestReadImageTruncated(t *testing.T) {
	// Cut the file in the middle of the second plane.
	full := goodImage()
	_, err := ReadImage(writeImage(t, full[:len(full)-6]))
	var imgErr *ImageError
	if !errors.As(err, &imgErr) {
		t.Fatalf("expected *ImageError for truncated file, got %T: %v", err, err)
	}
}

func TestReadImageBadFormatCode(t *testing.T) {
	_, err := ReadImage(writeImage(t, "7\n2 2\n1\n1e15 1e15\n867.0\n0 0 0 0\n"))
	var imgErr *ImageError
	if !errors.As(err, &imgErr) {
		t.Fatalf("expected *ImageError for bad format, got %T: %v", err, err)
	}
}

func TestReadImageGarbagePixel(t *testing.T) {
	_, err := ReadImage(writeImage(t, "1\n2 2\n1\n1e15 1e15\n867.0\n0 0 xyz 0\n"))
	var imgErr *ImageError
	if !errors.As(err, &imgErr) {
		t.Fatalf("expected *ImageError for garbage pixel, got %T: %v", err, err)
	}
}
