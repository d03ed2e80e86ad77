package mqtt

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/saviobatista/ais-logger/internal/ais"
)

type fakeToken struct {
	err     error
	timeout bool
}

func (t *fakeToken) Wait() bool { return !t.timeout }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.timeout }
func (t *fakeToken) Error() error { return t.err }

func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakeClient struct {
	mu           sync.Mutex
	messages     []published
	token        *fakeToken
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, published{topic, qos, retained, payload.([]byte)})
	if c.token != nil {
		return c.token
	}
	return &fakeToken{}
}

func (c *fakeClient) Disconnect(uint) {
	c.disconnected = true
}

func TestNewWithClient_Prefix(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"", "ais/244660000/5"},
		{"ais", "ais/244660000/5"},
		{"/vessels/", "vessels/244660000/5"},
		{"site/a", "site/a/244660000/5"},
	}

	msg := &ais.Message{Type: ais.MsgTypeStaticVoyageData, MMSI: 244660000}
	for _, tt := range tests {
		p := NewWithClient(&fakeClient{}, tt.prefix)
		if got := p.Topic(msg); got != tt.want {
			t.Errorf("Topic() with prefix %q = %q, want %q", tt.prefix, got, tt.want)
		}
	}
}

func TestPublisher_PublishMessage(t *testing.T) {
	client := &fakeClient{}
	p := NewWithClient(client, "ais")

	speed := 12.3
	msg := &ais.Message{
		Type: ais.MsgTypePositionReportScheduled,
		MMSI: 371798000,
		Position: &ais.PositionReport{
			Speed: &speed,
		},
	}
	if err := p.PublishMessage(msg); err != nil {
		t.Fatalf("PublishMessage() error = %v", err)
	}

	if len(client.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(client.messages))
	}
	got := client.messages[0]
	if got.topic != "ais/371798000/1" {
		t.Errorf("topic = %q, want %q", got.topic, "ais/371798000/1")
	}
	if got.qos != 0 || got.retained {
		t.Errorf("qos/retained = %d/%v, want 0/false", got.qos, got.retained)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(got.payload, &decoded); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if decoded["messageType"] != float64(1) {
		t.Errorf("messageType = %v, want 1", decoded["messageType"])
	}
}

func TestPublisher_PublishMessage_Errors(t *testing.T) {
	msg := &ais.Message{Type: ais.MsgTypeClassBPositionReport, MMSI: 1}

	tests := []struct {
		name  string
		token *fakeToken
		msg   *ais.Message
	}{
		{"nil message", nil, nil},
		{"broker error", &fakeToken{err: errors.New("not connected")}, msg},
		{"timeout", &fakeToken{timeout: true}, msg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewWithClient(&fakeClient{token: tt.token}, "ais")
			if err := p.PublishMessage(tt.msg); err == nil {
				t.Error("PublishMessage() should fail")
			}
		})
	}
}

func TestPublisher_Close(t *testing.T) {
	client := &fakeClient{}
	NewWithClient(client, "").Close()
	if !client.disconnected {
		t.Error("Close() did not disconnect the client")
	}
}

func TestNew_EmptyBroker(t *testing.T) {
	if _, err := New("", "test", "ais"); err == nil {
		t.Error("New() with empty broker should fail")
	}
}
