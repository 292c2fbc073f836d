package window

import (
	"fmt"

	"github.com/megawatt/energymon/pkg/clock"
)

// Reading is the pair of payloads produced by one window flush: the main
// phase pair and, when a third channel is configured, the extra stream.
// Payloads are plain text, HH:MM:SS followed by watt values to two decimals.
type Reading struct {
	Main  string
	Extra string
}

// Window accumulates per-pass power values until the wall clock reaches the
// scheduled window end. The boundary advances by exactly one window length
// per flush, never snapped to the current time, so readings stay nominally
// aligned to a fixed cadence even when the loop is delayed.
type Window struct {
	clk       clock.Clock
	acVoltage float64
	length    int // minutes
	next      int // scheduled end, minutes since midnight

	sums  []float64
	count int
}

func New(clk clock.Clock, channels, lengthMinutes int, acVoltage float64) *Window {
	return &Window{
		clk:       clk,
		acVoltage: acVoltage,
		length:    lengthMinutes,
		next:      clk.MinutesSinceMidnight() + 1,
		sums:      make([]float64, channels),
	}
}

// Accumulate converts one pass of RMS amperages to instantaneous power at
// the assumed line voltage and adds it to the running sums.
func (w *Window) Accumulate(amps []float64) {
	for i := range w.sums {
		w.sums[i] += amps[i] * w.acVoltage
	}
	w.count++
}

// ShouldFlush reports whether the current minute has reached or passed the
// scheduled window end. A window with no samples never flushes.
func (w *Window) ShouldFlush() bool {
	return w.count > 0 && w.clk.MinutesSinceMidnight() >= w.next
}

// Flush averages the accumulated power, resets the sums and count, advances
// the boundary by one window length, and formats the payloads. Returns
// false if the window holds no samples.
func (w *Window) Flush() (Reading, bool) {
	if w.count == 0 {
		return Reading{}, false
	}

	avgs := make([]float64, len(w.sums))
	for i, s := range w.sums {
		avgs[i] = s / float64(w.count)
		w.sums[i] = 0
	}
	w.count = 0
	w.next += w.length

	ts := w.clk.TimeString()
	r := Reading{Main: fmt.Sprintf("%s,%.2f,%.2f", ts, avgs[0], avgs[1])}
	if len(avgs) > 2 {
		r.Extra = fmt.Sprintf("%s,%.2f", ts, avgs[2])
	}
	return r, true
}
