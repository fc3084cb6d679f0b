package features

import "math"

// Series helpers implementing the rolling-window primitives the feature
// builder is assembled from. All helpers are causal: position t only depends
// on positions <= t. Positions without a full window are NaN, which the final
// cleanup pass of Build turns into 0.

// pctChange returns xs[t]/xs[t-k] - 1, NaN for t < k.
func pctChange(xs []float64, k int) []float64 {
	out := nanSlice(len(xs))
	for t := k; t < len(xs); t++ {
		out[t] = xs[t]/xs[t-k] - 1
	}

	return out
}

// shiftDiff returns xs[t] - xs[t-k], NaN for t < k.
func shiftDiff(xs []float64, k int) []float64 {
	out := nanSlice(len(xs))
	for t := k; t < len(xs); t++ {
		out[t] = xs[t] - xs[t-k]
	}

	return out
}

// rollingMean returns the mean of the trailing window, NaN until a full
// window is available. Inputs must not contain NaN.
func rollingMean(xs []float64, window int) []float64 {
	out := nanSlice(len(xs))

	sum := 0.0

	for t := range xs {
		sum += xs[t]
		if t >= window {
			sum -= xs[t-window]
		}

		if t >= window-1 {
			out[t] = sum / float64(window)
		}
	}

	return out
}

// rollingStd returns the sample standard deviation (ddof=1) of the trailing
// window, NaN until a full window is available. Inputs must not contain NaN.
func rollingStd(xs []float64, window int) []float64 {
	out := nanSlice(len(xs))

	for t := window - 1; t < len(xs); t++ {
		mean := 0.0
		for i := t - window + 1; i <= t; i++ {
			mean += xs[i]
		}

		mean /= float64(window)

		ss := 0.0

		for i := t - window + 1; i <= t; i++ {
			d := xs[i] - mean
			ss += d * d
		}

		out[t] = math.Sqrt(ss / float64(window-1))
	}

	return out
}

// ema returns the exponential moving average with smoothing factor
// 2/(span+1), seeded with the first value and recursive thereafter
// (adjust-free form).
func ema(xs []float64, span int) []float64 {
	out := nanSlice(len(xs))
	if len(xs) == 0 {
		return out
	}

	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = xs[0]

	for t := 1; t < len(xs); t++ {
		out[t] = alpha*xs[t] + (1-alpha)*out[t-1]
	}

	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	return out
}
