// Package photometry converts raw pixel intensities to apparent magnitudes
// and fits the photometric offset of a camera against catalog stars.
package photometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Slope is the fixed photometric slope: five magnitudes per factor of 100
// in flux.
const Slope = -2.5

const (
	maxIterations = 100
	convergence   = 1e-12
)

var (
	ErrLengthMismatch = errors.New("input arrays differ in length")
	ErrEmptyInput     = errors.New("input arrays are empty")
)

// FitResult is the outcome of a photometric fit.
type FitResult struct {
	Offset    float64   `json:"offset"`
	StdDev    float64   `json:"stddev"`
	Residuals []float64 `json:"residuals"`
}

// Line evaluates the photometric line at a log10 pixel sum.
func Line(logSum, offset float64) float64 {
	return Slope*logSum + offset
}

// Fit finds the offset of the line mag = -2.5·logSum + offset through the
// given points under a soft-L1 loss, ρ(z) = 2(√(1+z) − 1), which limits the
// influence of outliers. Residuals are catalog minus fitted magnitude and
// StdDev is their population standard deviation.
func Fit(logSum, catMags []float64) (FitResult, error) {
	if len(logSum) != len(catMags) {
		return FitResult{}, fmt.Errorf("photometry fit: %w: %d vs %d", ErrLengthMismatch, len(logSum), len(catMags))
	}
	if len(logSum) == 0 {
		return FitResult{}, fmt.Errorf("photometry fit: %w", ErrEmptyInput)
	}

	// With the slope fixed, each star votes directly for an offset.
	target := make([]float64, len(logSum))
	for i := range logSum {
		target[i] = catMags[i] - Slope*logSum[i]
	}

	// Iteratively reweighted mean: the soft-L1 stationarity condition is a
	// weighted mean with w = 1/√(1+r²).
	offset := stat.Mean(target, nil)
	weights := make([]float64, len(target))
	for iter := 0; iter < maxIterations; iter++ {
		for i, v := range target {
			r := v - offset
			weights[i] = 1 / math.Sqrt(1+r*r)
		}
		next := stat.Mean(target, weights)
		done := math.Abs(next-offset) < convergence
		offset = next
		if done {
			break
		}
	}

	res := make([]float64, len(target))
	for i := range target {
		res[i] = catMags[i] - Line(logSum[i], offset)
	}

	return FitResult{
		Offset:    offset,
		StdDev:    stat.PopStdDev(res, nil),
		Residuals: res,
	}, nil
}

// LevelsToMagnitude converts pixel levels to magnitudes, slope·log10(level)
// + offset. Levels must be positive; non-positive levels yield NaN or -Inf
// and are left for the caller to filter beforehand.
func LevelsToMagnitude(levels []float64, slope, offset float64) []float64 {
	mags := make([]float64, len(levels))
	for i, l := range levels {
		mags[i] = slope*math.Log10(l) + offset
	}
	return mags
}

// StarMeasurement pairs the measured intensity of a star at a pixel
// position with its catalog magnitude.
type StarMeasurement struct {
	X          float64 `yaml:"x" json:"x"`
	Y          float64 `yaml:"y" json:"y"`
	Intensity  float64 `yaml:"intensity" json:"intensity"`
	CatalogMag float64 `yaml:"mag" json:"mag"`
}

// SelectCentral keeps the stars within a third of the shorter image side
// of the image center, where vignetting is least.
func SelectCentral(stars []StarMeasurement, xRes, yRes int) []StarMeasurement {
	radius := float64(min(xRes, yRes)) / 3
	cx, cy := float64(xRes)/2, float64(yRes)/2

	var out []StarMeasurement
	for _, s := range stars {
		if math.Hypot(s.X-cx, s.Y-cy) <= radius {
			out = append(out, s)
		}
	}
	return out
}

// FitStars fits the photometric offset to measured stars. Stars with a
// non-positive intensity are skipped.
func FitStars(stars []StarMeasurement) (FitResult, error) {
	var logSum, mags []float64
	for _, s := range stars {
		if s.Intensity <= 0 {
			continue
		}
		logSum = append(logSum, math.Log10(s.Intensity))
		mags = append(mags, s.CatalogMag)
	}
	return Fit(logSum, mags)
}
