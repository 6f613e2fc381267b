package detect

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean, NaN for an empty slice.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// Std returns the population standard deviation.
func Std(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	mean := Mean(data)
	var sumSquares float64
	for _, v := range data {
		diff := v - mean
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(data)))
}

// SampleStd returns the n-1 standard deviation used by rolling windows.
func SampleStd(data []float64) float64 {
	if len(data) <= 1 {
		return math.NaN()
	}
	mean := Mean(data)
	var sumSquares float64
	for _, v := range data {
		diff := v - mean
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(data)-1))
}

// Percentile computes the p-th percentile with linear interpolation.
func Percentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Median is the 50th percentile.
func Median(data []float64) float64 {
	return Percentile(data, 50)
}

// MAD returns the median absolute deviation around the median.
func MAD(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	median := Median(data)
	deviations := make([]float64, len(data))
	for i, v := range data {
		deviations[i] = math.Abs(v - median)
	}
	return Median(deviations)
}

// Min returns the smallest value, NaN for an empty slice.
func Min(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	min := data[0]
	for _, v := range data[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the largest value, NaN for an empty slice.
func Max(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	max := data[0]
	for _, v := range data[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// rollingMeanStd computes centered rolling mean and sample std. Positions
// without a full window are NaN, so edges read as "not enough information".
// The window for index i spans [i-(window-1)/2, i+window/2].
func rollingMeanStd(data []float64, window int) (means, stds []float64) {
	n := len(data)
	means = make([]float64, n)
	stds = make([]float64, n)

	back := (window - 1) / 2
	fwd := window / 2

	for i := 0; i < n; i++ {
		lo := i - back
		hi := i + fwd + 1
		if lo < 0 || hi > n {
			means[i] = math.NaN()
			stds[i] = math.NaN()
			continue
		}
		slice := data[lo:hi]
		means[i] = Mean(slice)
		stds[i] = SampleStd(slice)
	}
	return means, stds
}

// rollingStdTrailing computes trailing-window sample std. The first
// window-1 positions are NaN.
func rollingStdTrailing(data []float64, window int) []float64 {
	n := len(data)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		if i+1 < window {
			out[i] = math.NaN()
			continue
		}
		out[i] = SampleStd(data[i+1-window : i+1])
	}
	return out
}

// nanStd is the population std over the finite values of a slice that may
// contain NaN placeholders.
func nanStd(data []float64) float64 {
	finite := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return math.NaN()
	}
	return Std(finite)
}

// diff returns first differences, one element shorter than the input.
func diff(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}
	out := make([]float64, len(data)-1)
	for i := 1; i < len(data); i++ {
		out[i-1] = data[i] - data[i-1]
	}
	return out
}
