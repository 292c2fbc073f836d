package sensor

import (
	"math"
	"sync"

	"github.com/megawatt/energymon/pkg/config"
)

// simBias keeps the synthetic waveform well above zero, like the shunt
// network biases the real CT signal.
const simBias = 500000.0

// SimChannel produces a 60Hz sine wave in raw microvolt units so the whole
// pipeline can run without hardware.
type SimChannel struct {
	mu        sync.Mutex
	amplitude float64
	phase     float64
	step      float64
}

// NewSimChannel creates a channel whose waveform peaks at amplitude raw
// units and advances one sample rate step per read.
func NewSimChannel(amplitude float64, lineHz, sampleRate int) *SimChannel {
	return &SimChannel{
		amplitude: amplitude,
		step:      2 * math.Pi * float64(lineHz) / float64(sampleRate),
	}
}

func (s *SimChannel) ReadRaw() (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := simBias + s.amplitude*math.Sin(s.phase)
	s.phase += s.step
	if s.phase >= 2*math.Pi {
		s.phase -= 2 * math.Pi
	}
	if v < 0 {
		v = 0
	}
	return uint32(v + 0.5), nil
}

// SimBank builds one sim channel per configured input.
type SimBank struct {
	channels []Channel
}

func NewSimBank(cfg config.Config) (Bank, error) {
	b := &SimBank{}
	for range cfg.ChannelMuxes {
		b.channels = append(b.channels, NewSimChannel(cfg.SimAmplitude, 60, cfg.SampleRate))
	}
	return b, nil
}

func (b *SimBank) Channels() []Channel { return b.channels }

func (b *SimBank) Close() error { return nil }
