package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// MQTTConfig holds the broker connection and the two fixed topics.
type MQTTConfig struct {
	Server     string `json:"server"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	ClientID   string `json:"client_id"`
	MainTopic  string `json:"main_topic"`
	ExtraTopic string `json:"extra_topic"`
}

type Config struct {
	I2CBus        string     `json:"i2c_bus"`
	I2CAddress    int        `json:"i2c_address"`
	SampleRate    int        `json:"sample_rate"`    // Hz, buffer fill rate
	BufferSize    int        `json:"buffer_size"`    // samples per channel per pass
	WindowMinutes int        `json:"window_minutes"` // minutes per published reading
	ACVoltage     float64    `json:"ac_voltage"`     // assumed line voltage
	AmpsPerRaw    float64    `json:"amps_per_raw"`   // raw microvolt reading -> amps
	ChannelMuxes  []int      `json:"channel_muxes"`  // ADC input per channel: A, B, extra
	SensorType    string     `json:"sensor_type"`    // real|sim
	SimAmplitude  float64    `json:"sim_amplitude"`  // sim sensor peak, raw units
	Output        string     `json:"output"`         // mqtt|console
	MQTT          MQTTConfig `json:"mqtt"`
	Verbose       bool       `json:"verbose"`
	Debug         bool       `json:"debug"`
}

// DefaultConfig matches the MegaWatt4 board: 100A CTs into 10 ohm shunts,
// so 100A of primary current reads as 500000 raw microvolts.
func DefaultConfig() Config {
	return Config{
		I2CBus:        "1",
		I2CAddress:    0x48,
		SampleRate:    6000,
		BufferSize:    1000,
		WindowMinutes: 2,
		ACVoltage:     120.0,
		AmpsPerRaw:    100.0 / 500000.0,
		ChannelMuxes:  []int{0, 1, 2},
		SensorType:    "real",
		SimAmplitude:  50000,
		Output:        "mqtt",
		MQTT: MQTTConfig{
			Server:     "tcp://localhost:1883",
			ClientID:   "energymon",
			MainTopic:  "energy/main",
			ExtraTopic: "energy/extra",
		},
	}
}

// LoadFromFlags loads configuration from a JSON file (optional) and flags.
// Flags override values present in the JSON file.
func LoadFromFlags() (Config, error) {
	cfgPath := flag.String("config", "", "Path to JSON config file")
	flagI2CBus := flag.String("i2c-bus", "", "I2C bus (e.g., '1' -> /dev/i2c-1)")
	flagI2CAddStr := flag.String("i2c-address", "", "I2C address (decimal or 0x hex)")
	flagSampleRate := flag.Int("sample-rate", -1, "Sample rate per channel (Hz)")
	flagBufSize := flag.Int("buffer-size", -1, "Samples per channel per pass")
	flagWindow := flag.Int("window-minutes", -1, "Minutes per published reading")
	flagVoltage := flag.Float64("ac-voltage", math.NaN(), "Assumed AC line voltage")
	flagAmpsPerRaw := flag.Float64("amps-per-raw", math.NaN(), "Raw reading to amps factor")
	flagChannels := flag.String("channels", "", "Comma-separated ADC inputs e.g. 0,1,2")
	flagSensorType := flag.String("sensor-type", "", "sensor type: real|sim")
	flagOutput := flag.String("output", "", "output: mqtt|console")
	flagMQTTServer := flag.String("mqtt-server", "", "MQTT server (tcp://host:port)")
	flagMQTTUser := flag.String("mqtt-user", "", "MQTT username")
	flagMQTTPass := flag.String("mqtt-pass", "", "MQTT password")
	flagClientID := flag.String("mqtt-client-id", "", "MQTT client id")
	flagMainTopic := flag.String("mqtt-main-topic", "", "Topic for the main phase pair")
	flagExtraTopic := flag.String("mqtt-extra-topic", "", "Topic for the extra channel")
	flagVerbose := flag.Bool("verbose", false, "Enable info logging")
	flagDebug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	cfg := DefaultConfig()

	if *cfgPath != "" {
		b, err := os.ReadFile(*cfgPath)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if *flagI2CBus != "" {
		cfg.I2CBus = *flagI2CBus
	}
	if *flagI2CAddStr != "" {
		v, err := parseIntOrHex(*flagI2CAddStr)
		if err != nil {
			return cfg, fmt.Errorf("i2c-address: %w", err)
		}
		cfg.I2CAddress = v
	}
	if *flagSampleRate != -1 {
		cfg.SampleRate = *flagSampleRate
	}
	if *flagBufSize != -1 {
		cfg.BufferSize = *flagBufSize
	}
	if *flagWindow != -1 {
		cfg.WindowMinutes = *flagWindow
	}
	if !math.IsNaN(*flagVoltage) {
		cfg.ACVoltage = *flagVoltage
	}
	if !math.IsNaN(*flagAmpsPerRaw) {
		cfg.AmpsPerRaw = *flagAmpsPerRaw
	}
	if *flagChannels != "" {
		chs, err := parseChannels(*flagChannels)
		if err != nil {
			return cfg, err
		}
		cfg.ChannelMuxes = chs
	}
	if *flagSensorType != "" {
		cfg.SensorType = *flagSensorType
	}
	if *flagOutput != "" {
		cfg.Output = *flagOutput
	}
	if *flagMQTTServer != "" {
		cfg.MQTT.Server = *flagMQTTServer
	}
	if *flagMQTTUser != "" {
		cfg.MQTT.Username = *flagMQTTUser
	}
	if *flagMQTTPass != "" {
		cfg.MQTT.Password = *flagMQTTPass
	}
	if *flagClientID != "" {
		cfg.MQTT.ClientID = *flagClientID
	}
	if *flagMainTopic != "" {
		cfg.MQTT.MainTopic = *flagMainTopic
	}
	if *flagExtraTopic != "" {
		cfg.MQTT.ExtraTopic = *flagExtraTopic
	}
	if *flagVerbose {
		cfg.Verbose = true
	}
	if *flagDebug {
		cfg.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks the fields the sampling pipeline depends on.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return errors.New("sample-rate must be > 0")
	}
	if c.BufferSize <= 0 {
		return errors.New("buffer-size must be > 0")
	}
	if c.WindowMinutes <= 0 {
		return errors.New("window-minutes must be > 0")
	}
	if c.ACVoltage <= 0 {
		return errors.New("ac-voltage must be > 0")
	}
	if c.AmpsPerRaw <= 0 {
		return errors.New("amps-per-raw must be > 0")
	}
	if n := len(c.ChannelMuxes); n < 2 || n > 3 {
		return fmt.Errorf("channels: need 2 or 3 entries, got %d", n)
	}
	return nil
}

func parseIntOrHex(s string) (int, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseInt(s[2:], 16, 0)
		return int(v), err
	}
	v, err := strconv.Atoi(s)
	return v, err
}

func parseChannels(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t == "" {
			continue
		}
		v, err := strconv.Atoi(t)
		if err != nil {
			return nil, fmt.Errorf("invalid channel '%s': %w", t, err)
		}
		out = append(out, v)
	}
	return out, nil
}
