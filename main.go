package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/megawatt/energymon/pkg/clock"
	"github.com/megawatt/energymon/pkg/config"
	"github.com/megawatt/energymon/pkg/monitor"
	"github.com/megawatt/energymon/pkg/output"
	"github.com/megawatt/energymon/pkg/output/console"
	"github.com/megawatt/energymon/pkg/output/mqtt"
	"github.com/megawatt/energymon/pkg/sampler"
	"github.com/megawatt/energymon/pkg/sensor"
	"github.com/megawatt/energymon/pkg/window"
)

func main() {
	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	initLogging(cfg)

	bank, err := newBank(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize sensors")
	}
	defer bank.Close()

	out, conn := newOutput(cfg)
	defer out.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if !connectWithRetry(ctx, conn) {
		log.Info().Msg("exiting")
		return
	}

	s := sampler.New(bank.Channels(), cfg.SampleRate, cfg.BufferSize, cfg.AmpsPerRaw)
	w := window.New(clock.System{}, len(bank.Channels()), cfg.WindowMinutes, cfg.ACVoltage)
	m := monitor.New(s, w, out, conn, cfg.MQTT.MainTopic, cfg.MQTT.ExtraTopic, monitor.Intervals{})

	log.Info().
		Int("channels", len(bank.Channels())).
		Int("sample_rate", cfg.SampleRate).
		Int("buffer_size", cfg.BufferSize).
		Int("window_minutes", cfg.WindowMinutes).
		Msg("monitoring")

	m.Run(ctx)

	// orderly shutdown: tear down the link before exit
	conn.Disconnect()
	log.Info().Msg("exiting")
}

func initLogging(cfg config.Config) {
	out := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func newBank(cfg config.Config) (sensor.Bank, error) {
	if cfg.SensorType == "sim" {
		return sensor.NewSimBank(cfg)
	}
	return sensor.NewADS1115Bank(cfg)
}

func newOutput(cfg config.Config) (output.Output, output.Connectivity) {
	if cfg.Output == "console" {
		return console.New(), output.AlwaysConnected{}
	}
	m := mqtt.New(cfg.MQTT)
	return m, m
}

// connectWithRetry keeps trying the broker until it answers or the context
// is cancelled. Returns false when cancelled.
func connectWithRetry(ctx context.Context, conn output.Connectivity) bool {
	for {
		log.Info().Msg("connecting")
		err := conn.Connect()
		if err == nil {
			log.Info().Msg("connected")
			return true
		}
		log.Warn().Err(err).Msg("connect failed, retrying")
		select {
		case <-ctx.Done():
			return false
		case <-time.After(time.Second):
		}
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info().Msg("received termination signal")
	cancel()
}
