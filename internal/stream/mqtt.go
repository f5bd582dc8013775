package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"postured/pkg/types"
)

// MQTTConfig configures the MQTT sink.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	// Topic is the prefix; events go to <Topic>/<type>.
	Topic   string
	QoS     byte
	Timeout time.Duration
}

// MQTTSink publishes events as JSON to an MQTT broker.
type MQTTSink struct {
	client  mqtt.Client
	topic   string
	qos     byte
	timeout time.Duration
}

// NewMQTTSink connects to cfg.Broker. The client reconnects on its own after
// the initial connection succeeds.
func NewMQTTSink(cfg MQTTConfig, lg *zerolog.Logger) (*MQTTSink, error) {
	log := zerolog.Nop()
	if lg != nil {
		log = lg.With().Str("sink", "mqtt").Logger()
	}
	broker := cfg.Broker
	if !strings.Contains(broker, "://") {
		broker = "tcp://" + broker
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.OnConnect = func(mqtt.Client) {
		log.Info().Str("broker", broker).Msg("mqtt connection established")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", broker).Msg("mqtt connection lost, will auto-reconnect")
	}
	client := mqtt.NewClient(opts)
	s := newMQTTSink(client, cfg)
	token := client.Connect()
	if !token.WaitTimeout(s.timeout) {
		return nil, fmt.Errorf("mqtt connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connection failed: %w", err)
	}
	return s, nil
}

func newMQTTSink(client mqtt.Client, cfg MQTTConfig) *MQTTSink {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &MQTTSink{
		client:  client,
		topic:   strings.TrimRight(cfg.Topic, "/"),
		qos:     cfg.QoS,
		timeout: timeout,
	}
}

func (s *MQTTSink) Name() string { return "mqtt" }

// Publish sends e to <topic>/<type>.
func (s *MQTTSink) Publish(_ context.Context, e types.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	topic := s.topic + "/" + e.Type
	token := s.client.Publish(topic, s.qos, false, payload)
	if !token.WaitTimeout(s.timeout) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}
	return nil
}

func (s *MQTTSink) Close() error {
	s.client.Disconnect(250)
	return nil
}
