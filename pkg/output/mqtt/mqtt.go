package mqtt

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/megawatt/energymon/pkg/config"
)

const (
	// at-least-once delivery for every reading
	publishQoS = 1

	connectTimeout      = 30 * time.Second
	disconnectQuiesceMs = 250
)

type MQTTOutput struct {
	client mqtt.Client
}

// New builds the client without connecting; callers drive the initial
// connect (and any reconnects) through the Connectivity methods.
func New(cfg config.MQTTConfig) *MQTTOutput {
	opts := mqtt.NewClientOptions().AddBroker(cfg.Server).SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetConnectTimeout(connectTimeout)
	return &MQTTOutput{client: mqtt.NewClient(opts)}
}

func (m *MQTTOutput) IsConnected() bool { return m.client.IsConnected() }

func (m *MQTTOutput) Connect() error {
	token := m.client.Connect()
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return nil
}

func (m *MQTTOutput) Disconnect() {
	m.client.Disconnect(disconnectQuiesceMs)
}

// Publish blocks until the broker acknowledges the message or the
// transport gives up; during a reconnect this can stall for its duration.
func (m *MQTTOutput) Publish(topic string, payload []byte) error {
	token := m.client.Publish(topic, publishQoS, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish: %w", err)
	}
	return nil
}

func (m *MQTTOutput) Close() error {
	if m.client.IsConnected() {
		m.client.Disconnect(disconnectQuiesceMs)
	}
	return nil
}
