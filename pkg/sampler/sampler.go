package sampler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/megawatt/energymon/pkg/sensor"
)

// ErrPassActive is returned when a pass is started while one is in flight.
var ErrPassActive = errors.New("sampling pass already in flight")

// SampleBuffer holds one channel's raw readings for a single pass.
type SampleBuffer struct {
	data []uint32
}

func newSampleBuffer(capacity int) *SampleBuffer {
	return &SampleBuffer{data: make([]uint32, capacity)}
}

// TimedSampler fills one buffer per channel in lock-step at a fixed rate.
// The fill loop stands in for the hardware timer interrupt: it runs on its
// own goroutine and owns the buffers until the pass completes, so callers
// must wait on the done channel before reading results. Channels are read
// back-to-back within one tick; the sub-tick skew between them is an
// accepted measurement limitation.
type TimedSampler struct {
	channels   []sensor.Channel
	rate       int
	ampsPerRaw float64
	bufs       []*SampleBuffer

	mu      sync.Mutex
	running bool
}

func New(channels []sensor.Channel, rate, bufSize int, ampsPerRaw float64) *TimedSampler {
	s := &TimedSampler{
		channels:   channels,
		rate:       rate,
		ampsPerRaw: ampsPerRaw,
	}
	for range channels {
		s.bufs = append(s.bufs, newSampleBuffer(bufSize))
	}
	return s
}

// StartPass arms the periodic fill and returns a channel that yields
// exactly one value: nil once every buffer is full, or the error that
// aborted the pass. A failed read invalidates the whole pass; partial
// data never reaches the RMS stage.
func (s *TimedSampler) StartPass(ctx context.Context) (<-chan error, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrPassActive
	}
	s.running = true
	s.mu.Unlock()

	done := make(chan error, 1)
	go s.fill(ctx, done)
	return done, nil
}

func (s *TimedSampler) fill(ctx context.Context, done chan<- error) {
	ticker := time.NewTicker(time.Second / time.Duration(s.rate))
	defer ticker.Stop()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	index := 0
	capacity := len(s.bufs[0].data)
	for {
		select {
		case <-ctx.Done():
			done <- ctx.Err()
			return
		case <-ticker.C:
			if index >= capacity {
				done <- nil
				return
			}
			for i, ch := range s.channels {
				raw, err := ch.ReadRaw()
				if err != nil {
					done <- fmt.Errorf("read channel %d: %w", i, err)
					return
				}
				s.bufs[i].data[index] = raw
			}
			index++
		}
	}
}

// AmpsRMS converts each filled buffer to RMS amperage. Only valid after a
// pass has completed successfully.
func (s *TimedSampler) AmpsRMS() []float64 {
	out := make([]float64, len(s.bufs))
	for i, b := range s.bufs {
		out[i] = b.RMS() * s.ampsPerRaw
	}
	return out
}
