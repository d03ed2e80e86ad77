package nats

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/saviobatista/ais-logger/internal/types"
)

const (
	SubjectAISRaw = "ais.raw"
	StreamAISRaw  = "AIS_RAW"
)

// Client represents a NATS client
type Client struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// New connects to NATS and makes sure the raw sentence stream exists
func New(url string) (*Client, error) {
	nc, err := nats.Connect(url,
		nats.Name("ais-logger"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:     StreamAISRaw,
		Subjects: []string{SubjectAISRaw},
		Storage:  nats.FileStorage,
		MaxAge:   24 * time.Hour,
	})
	if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		nc.Close()
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	return &Client{
		conn: nc,
		js:   js,
	}, nil
}

// PublishAISMessage publishes a raw sentence to the stream
func (c *Client) PublishAISMessage(msg *types.AISMessage) error {
	if msg == nil {
		return errors.New("nil message")
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if _, err := c.js.Publish(SubjectAISRaw, data); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// SubscribeAISRaw delivers every raw sentence on the stream to handler
func (c *Client) SubscribeAISRaw(handler func(*types.AISMessage)) error {
	if handler == nil {
		return errors.New("nil handler")
	}
	_, err := c.js.Subscribe(SubjectAISRaw, func(msg *nats.Msg) {
		aisMsg, err := decodeMessage(msg.Data)
		if err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			return
		}
		handler(aisMsg)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	return nil
}

func decodeMessage(data []byte) (*types.AISMessage, error) {
	var msg types.AISMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Raw == "" {
		return nil, errors.New("message has no raw sentence")
	}
	return &msg, nil
}

// IsConnected reports whether the underlying connection is up
func (c *Client) IsConnected() bool {
	return c.conn != nil && c.conn.IsConnected()
}

// Close closes the NATS connection
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}
