package sensor

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/megawatt/energymon/pkg/config"
)

const (
	pointerConv   = 0x00
	pointerConfig = 0x01

	// FS = ±4.096V -> 125µV per LSB
	microvoltsPerLSB = 125
)

// ADS1115Bank reads current transformers through an ADS1115 on I²C. Each
// channel keeps its own precomputed config word; selecting a channel and
// reading its conversion register are two short transactions, so readings
// across channels in one tick carry a small skew that we accept as a
// measurement limitation.
type ADS1115Bank struct {
	bus      i2c.BusCloser
	channels []Channel
}

type adsChannel struct {
	dev    *i2c.Dev
	cfgMSB byte
	cfgLSB byte
}

func NewADS1115Bank(cfg config.Config) (Bank, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("open i2c: %w", err)
	}
	dev := &i2c.Dev{Addr: uint16(cfg.I2CAddress), Bus: bus}

	b := &ADS1115Bank{bus: bus}
	for _, mux := range cfg.ChannelMuxes {
		msb, lsb, err := configForInput(mux)
		if err != nil {
			_ = bus.Close()
			return nil, err
		}
		b.channels = append(b.channels, &adsChannel{dev: dev, cfgMSB: msb, cfgLSB: lsb})
	}
	return b, nil
}

func (b *ADS1115Bank) Channels() []Channel { return b.channels }

func (b *ADS1115Bank) Close() error {
	if b.bus != nil {
		return b.bus.Close()
	}
	return nil
}

func (c *adsChannel) ReadRaw() (uint32, error) {
	if err := c.dev.Tx([]byte{pointerConfig, c.cfgMSB, c.cfgLSB}, nil); err != nil {
		return 0, fmt.Errorf("select input: %w", err)
	}
	readBuf := make([]byte, 2)
	if err := c.dev.Tx([]byte{pointerConv}, readBuf); err != nil {
		return 0, fmt.Errorf("read conversion: %w", err)
	}
	raw := int16(readBuf[0])<<8 | int16(readBuf[1])
	if raw < 0 {
		raw = 0
	}
	return uint32(raw) * microvoltsPerLSB, nil
}

// configForInput builds the config register bytes for continuous
// conversion of a single-ended input at the fastest data rate.
func configForInput(input int) (byte, byte, error) {
	var mux byte
	switch input {
	case 0:
		mux = 0x4
	case 1:
		mux = 0x5
	case 2:
		mux = 0x6
	case 3:
		mux = 0x7
	default:
		return 0, 0, fmt.Errorf("invalid input %d", input)
	}
	pga := byte(0x1)       // ±4.096V
	dr := byte(0x7)        // 860 SPS
	var config uint16 = 0x8000
	config |= uint16(mux) << 12
	config |= uint16(pga) << 9
	// bit 8 clear: continuous conversion
	config |= uint16(dr) << 5
	config |= 0x3 // comparator disabled
	return byte(config >> 8), byte(config & 0xFF), nil
}
