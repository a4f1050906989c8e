package utils

import (
	"math"
	"testing"
)

func TestMean(t *testing.T) {
	if got := Mean([]float64{1, 2, 3, 4}); got != 2.5 {
		t.Fatalf("expected mean 2.5, got %f", got)
	}
	if got := Mean(nil); got != 0 {
		t.Fatalf("expected zero mean for empty slice, got %f", got)
	}
}

func TestVarianceAndStdDev(t *testing.T) {
	vals := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if got := Variance(vals); math.Abs(got-4.0) > 1e-12 {
		t.Fatalf("expected variance 4, got %f", got)
	}
	if got := StdDev(vals); math.Abs(got-2.0) > 1e-12 {
		t.Fatalf("expected stddev 2, got %f", got)
	}
}
