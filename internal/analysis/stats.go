package analysis

import "math"

// Descriptive statistics shared by the regression and rolling engines.
// All sums accumulate left to right so results are bit-identical across
// runs (see the determinism tests).

// mean returns the arithmetic mean of xs. Zero for an empty slice.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// populationVariance returns the population (not sample) variance of xs
// around the given mean.
func populationVariance(xs []float64, m float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sq float64
	for _, x := range xs {
		d := x - m
		sq += d * d
	}
	return sq / float64(len(xs))
}

// populationCovariance returns the population covariance of the paired
// slices around the given means. Slices must be equal length.
func populationCovariance(xs, ys []float64, mx, my float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for i := range xs {
		sum += (xs[i] - mx) * (ys[i] - my)
	}
	return sum / float64(len(xs))
}

// populationStdDev returns the population standard deviation of xs around
// the given mean.
func populationStdDev(xs []float64, m float64) float64 {
	return math.Sqrt(populationVariance(xs, m))
}

// correlation returns the Pearson correlation coefficient of the paired
// slices. Returns 0 (not NaN) when either series has zero standard
// deviation.
func correlation(xs, ys []float64, mx, my float64) float64 {
	sx := populationStdDev(xs, mx)
	sy := populationStdDev(ys, my)
	if sx == 0 || sy == 0 {
		return 0
	}
	return populationCovariance(xs, ys, mx, my) / (sx * sy)
}
