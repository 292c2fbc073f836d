package sensor

// Channel is one current-transformer input. ReadRaw returns the
// instantaneous reading in raw microvolt units, biased above zero by the
// shunt network so the AC waveform never clips at ground.
type Channel interface {
	ReadRaw() (uint32, error)
}

// Bank is the fixed set of channels read in lock-step by the sampler.
// Order is A, B and optionally the extra transformer.
type Bank interface {
	Channels() []Channel
	Close() error
}
