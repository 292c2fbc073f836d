package window

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	minutes int
	str     string
}

func (f *fakeClock) Now() time.Time            { return time.Time{} }
func (f *fakeClock) MinutesSinceMidnight() int { return f.minutes }
func (f *fakeClock) TimeString() string        { return f.str }

func TestAccumulateAndFlushAverages(t *testing.T) {
	clk := &fakeClock{minutes: 600, str: "10:00:00"}
	w := New(clk, 3, 2, 1.0) // unit voltage: sums are the power vectors

	w.Accumulate([]float64{1, 2, 3})
	w.Accumulate([]float64{3, 4, 5})
	w.Accumulate([]float64{5, 6, 7})

	r, ok := w.Flush()
	require.True(t, ok)
	assert.Equal(t, "10:00:00,3.00,4.00", r.Main)
	assert.Equal(t, "10:00:00,5.00", r.Extra)

	// sums and count reset together: an immediate reflush yields nothing
	_, ok = w.Flush()
	assert.False(t, ok)
}

func TestFlushAppliesLineVoltage(t *testing.T) {
	clk := &fakeClock{minutes: 0, str: "00:02:00"}
	w := New(clk, 2, 2, 120.0)

	// constant 5.0 A RMS on channel A -> 600.00 W
	for i := 0; i < 10; i++ {
		w.Accumulate([]float64{5.0, 0})
	}
	r, ok := w.Flush()
	require.True(t, ok)
	assert.Equal(t, "00:02:00,600.00,0.00", r.Main)
	assert.Empty(t, r.Extra)
}

func TestShouldFlushAtBoundary(t *testing.T) {
	clk := &fakeClock{minutes: 100}
	w := New(clk, 2, 2, 120.0) // boundary scheduled at minute 101

	w.Accumulate([]float64{1, 1})
	assert.False(t, w.ShouldFlush())

	clk.minutes = 101
	assert.True(t, w.ShouldFlush())

	// past the boundary also flushes
	clk.minutes = 105
	assert.True(t, w.ShouldFlush())
}

func TestShouldFlushRequiresSamples(t *testing.T) {
	clk := &fakeClock{minutes: 200}
	w := New(clk, 2, 2, 120.0)

	clk.minutes = 250
	assert.False(t, w.ShouldFlush(), "empty window must not flush")
}

func TestBoundaryAdvancesOneLengthPerFlush(t *testing.T) {
	clk := &fakeClock{minutes: 100, str: "01:40:00"}
	w := New(clk, 2, 2, 1.0) // boundary at 101

	// the loop stalls well past several window lengths
	clk.minutes = 110
	w.Accumulate([]float64{1, 1})
	require.True(t, w.ShouldFlush())
	_, ok := w.Flush()
	require.True(t, ok)

	// boundary moved to 103, not snapped to now: still due once refilled
	w.Accumulate([]float64{1, 1})
	assert.True(t, w.ShouldFlush())
	_, ok = w.Flush()
	require.True(t, ok)

	// after catching up past 110 the window goes quiet again
	for i := 0; i < 4; i++ {
		w.Accumulate([]float64{1, 1})
		if !w.ShouldFlush() {
			break
		}
		_, ok = w.Flush()
		require.True(t, ok)
	}
	w.Accumulate([]float64{1, 1})
	assert.False(t, w.ShouldFlush())
}

func TestEachSampleCountsInExactlyOneWindow(t *testing.T) {
	clk := &fakeClock{minutes: 10, str: "00:10:00"}
	w := New(clk, 2, 2, 1.0)

	w.Accumulate([]float64{4, 4})
	clk.minutes = 11
	require.True(t, w.ShouldFlush())
	r, ok := w.Flush()
	require.True(t, ok)
	assert.Equal(t, "00:10:00,4.00,4.00", r.Main)

	// samples after the flush belong to the next window only
	w.Accumulate([]float64{8, 8})
	clk.minutes = 13
	r, ok = w.Flush()
	require.True(t, ok)
	assert.Equal(t, fmt.Sprintf("%s,8.00,8.00", clk.str), r.Main)
}
