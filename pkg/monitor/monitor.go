// Package monitor composes the three long-running tasks: measuring,
// publishing, and the connectivity watchdog. The tasks share nothing but
// the two mailboxes; the measuring task never blocks on network state.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/megawatt/energymon/pkg/mailbox"
	"github.com/megawatt/energymon/pkg/output"
	"github.com/megawatt/energymon/pkg/sampler"
	"github.com/megawatt/energymon/pkg/window"
)

const (
	// DefaultMeasureIdle is the pause between sampling cycles.
	DefaultMeasureIdle = time.Second
	// DefaultPublishInterval is how often non-empty mailboxes are drained.
	DefaultPublishInterval = 5 * time.Second
	// DefaultWatchdogInterval is how often the link is checked.
	DefaultWatchdogInterval = 60 * time.Second
)

// Intervals carries the task cadences; zero fields take the defaults.
type Intervals struct {
	MeasureIdle time.Duration
	Publish     time.Duration
	Watchdog    time.Duration
}

func (iv Intervals) withDefaults() Intervals {
	if iv.MeasureIdle == 0 {
		iv.MeasureIdle = DefaultMeasureIdle
	}
	if iv.Publish == 0 {
		iv.Publish = DefaultPublishInterval
	}
	if iv.Watchdog == 0 {
		iv.Watchdog = DefaultWatchdogInterval
	}
	return iv
}

type Monitor struct {
	sampler *sampler.TimedSampler
	win     *window.Window
	out     output.Output
	conn    output.Connectivity

	mainTopic  string
	extraTopic string
	intervals  Intervals

	mailMain  mailbox.Mailbox[string]
	mailExtra mailbox.Mailbox[string]
}

func New(s *sampler.TimedSampler, w *window.Window, out output.Output, conn output.Connectivity,
	mainTopic, extraTopic string, iv Intervals,
) *Monitor {
	return &Monitor{
		sampler:    s,
		win:        w,
		out:        out,
		conn:       conn,
		mainTopic:  mainTopic,
		extraTopic: extraTopic,
		intervals:  iv.withDefaults(),
	}
}

// Run starts the three tasks and blocks until the context is cancelled and
// all of them have wound down.
func (m *Monitor) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); m.measureTask(ctx) }()
	go func() { defer wg.Done(); m.publishTask(ctx) }()
	go func() { defer wg.Done(); m.watchdogTask(ctx) }()
	wg.Wait()
}

// measureTask runs one sampling pass per cycle, folds the result into the
// aggregation window, and posts flushed readings to the mailboxes. An
// aborted pass is logged and retried next cycle; partial buffers never
// reach the RMS stage.
func (m *Monitor) measureTask(ctx context.Context) {
	for {
		done, err := m.sampler.StartPass(ctx)
		if err != nil {
			log.Error().Err(err).Msg("could not start sampling pass")
		} else if err := m.waitPass(ctx, done); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Msg("sampling pass aborted")
		} else {
			amps := m.sampler.AmpsRMS()
			m.win.Accumulate(amps)
			if m.win.ShouldFlush() {
				if r, ok := m.win.Flush(); ok {
					log.Info().Str("main", r.Main).Str("extra", r.Extra).Msg("window flushed")
					m.mailMain.Put(r.Main)
					if r.Extra != "" {
						m.mailExtra.Put(r.Extra)
					}
				}
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(m.intervals.MeasureIdle):
		}
	}
}

func (m *Monitor) waitPass(ctx context.Context, done <-chan error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// publishTask drains the mailboxes on a fixed cadence. A failed delivery
// goes back into its mailbox unless a newer reading has already replaced
// it; the transport's own retry handles the rest.
func (m *Monitor) publishTask(ctx context.Context) {
	ticker := time.NewTicker(m.intervals.Publish)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.drain(&m.mailMain, m.mainTopic)
			m.drain(&m.mailExtra, m.extraTopic)
		}
	}
}

func (m *Monitor) drain(mail *mailbox.Mailbox[string], topic string) {
	v, ok := mail.Take()
	if !ok {
		return
	}
	if err := m.out.Publish(topic, []byte(v)); err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("publish failed, keeping reading")
		mail.PutIfEmpty(v)
		return
	}
	log.Debug().Str("topic", topic).Str("payload", v).Msg("published")
}

// watchdogTask restores the transport link when it drops. Recovery is a
// full teardown followed by a reconnect; a failed attempt is retried on
// the next check.
func (m *Monitor) watchdogTask(ctx context.Context) {
	ticker := time.NewTicker(m.intervals.Watchdog)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m.conn.IsConnected() {
				log.Debug().Msg("link OK")
				continue
			}
			log.Warn().Msg("connectivity lost, reconnecting")
			m.conn.Disconnect()
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			if err := m.conn.Connect(); err != nil {
				log.Error().Err(err).Msg("reconnect failed")
				continue
			}
			log.Info().Msg("reconnected")
		}
	}
}
