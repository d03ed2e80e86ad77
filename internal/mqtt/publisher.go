// Package mqtt fans decoded AIS messages out to an MQTT broker.
package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/saviobatista/ais-logger/internal/ais"
)

const (
	DefaultTopicPrefix = "ais"
	publishTimeout     = 5 * time.Second
)

// Client is the part of the paho client the publisher needs
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Publisher publishes decoded messages as JSON, one topic per vessel and type
type Publisher struct {
	client Client
	prefix string
}

// New connects to broker. A broker without a scheme is treated as tcp://.
func New(broker, clientID, prefix string) (*Publisher, error) {
	if broker == "" {
		return nil, errors.New("empty MQTT broker address")
	}
	if !strings.Contains(broker, "://") {
		broker = "tcp://" + broker
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10*time.Second) {
		return nil, fmt.Errorf("timed out connecting to MQTT broker %s", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	return NewWithClient(client, prefix), nil
}

// NewWithClient wraps an already connected client
func NewWithClient(client Client, prefix string) *Publisher {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return &Publisher{client: client, prefix: prefix}
}

// Topic returns the topic a message is published on: <prefix>/<mmsi>/<type>
func (p *Publisher) Topic(msg *ais.Message) string {
	return fmt.Sprintf("%s/%d/%d", p.prefix, msg.MMSI, msg.Type)
}

// PublishMessage publishes msg at QoS 0 and waits for the client to hand it off
func (p *Publisher) PublishMessage(msg *ais.Message) error {
	if msg == nil {
		return errors.New("nil message")
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	token := p.client.Publish(p.Topic(msg), 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("timed out publishing to %s", p.Topic(msg))
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// Close disconnects from the broker
func (p *Publisher) Close() {
	if p.client != nil {
		p.client.Disconnect(250)
	}
}
