package sampler

import "math"

// RMS computes the AC RMS of the buffer in raw units. The raw stream rides
// on a DC bias, so the mean is removed before squaring to isolate the AC
// component. float64 accumulators keep the sum of squared deviations exact
// enough for thousands of full-range ADC readings.
func (b *SampleBuffer) RMS() float64 {
	n := float64(len(b.data))
	if n == 0 {
		return 0
	}

	var sum float64
	for _, v := range b.data {
		sum += float64(v)
	}
	mean := sum / n

	var sumSq float64
	for _, v := range b.data {
		d := float64(v) - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / n)
}
