package stats

import (
	"errors"
	"math"
)

// ErrNoSamples is returned when a statistic is requested for an empty sample set.
var ErrNoSamples = errors.New("no samples")

const z95 = 1.96

// Confidence95 returns the half-width of the 95% confidence interval around
// the sample mean using the normal approximation 1.96*s/sqrt(n), where s is
// the unbiased sample standard deviation. A single sample yields 0.
// The result is not rounded.
func Confidence95(samples []float64) (float64, error) {
	n := len(samples)
	if n == 0 {
		return 0, ErrNoSamples
	}
	if n == 1 {
		return 0, nil
	}
	return z95 * StdDev(samples) / math.Sqrt(float64(n)), nil
}

// Mean returns the arithmetic mean, or 0 for no samples.
func Mean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		sum += v
	}
	return sum / float64(len(samples))
}

// StdDev returns the sample standard deviation with the n-1 divisor.
func StdDev(samples []float64) float64 {
	n := len(samples)
	if n < 2 {
		return 0
	}
	mean := Mean(samples)
	var sq float64
	for _, v := range samples {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(n-1))
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
