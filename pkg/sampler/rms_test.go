package sampler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRMSConstantBufferIsZero(t *testing.T) {
	b := newSampleBuffer(1000)
	for i := range b.data {
		b.data[i] = 123456
	}
	assert.Equal(t, 0.0, b.RMS())
}

func TestRMSEmptyBufferIsZero(t *testing.T) {
	b := &SampleBuffer{}
	assert.Equal(t, 0.0, b.RMS())
}

func TestRMSSineWave(t *testing.T) {
	// 100 points per cycle over 10 full cycles, peak P riding on a bias.
	const (
		peak = 50000.0
		bias = 500000.0
		n    = 1000
	)
	b := newSampleBuffer(n)
	for i := range b.data {
		v := bias + peak*math.Sin(2*math.Pi*float64(i)/100)
		b.data[i] = uint32(v + 0.5)
	}
	want := peak / math.Sqrt2
	assert.InDelta(t, want, b.RMS(), want*0.001)
}

func TestRMSSineAcrossDensities(t *testing.T) {
	rmsFor := func(pointsPerCycle int) float64 {
		n := pointsPerCycle * 10
		b := newSampleBuffer(n)
		for i := range b.data {
			v := 500000.0 + 50000.0*math.Sin(2*math.Pi*float64(i)/float64(pointsPerCycle))
			b.data[i] = uint32(v + 0.5)
		}
		return b.RMS()
	}

	want := 50000.0 / math.Sqrt2
	for _, ppc := range []int{10, 50, 200} {
		assert.InDelta(t, want, rmsFor(ppc), want*0.01, "points per cycle %d", ppc)
	}
}
