package main

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	natscontainer "github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/saviobatista/ais-logger/internal/capture"
	"github.com/saviobatista/ais-logger/internal/nats"
	"github.com/saviobatista/ais-logger/internal/testutils"
	"github.com/saviobatista/ais-logger/internal/types"
)

// setupNATS starts a JetStream enabled NATS server and returns its URL
func setupNATS(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := natscontainer.Run(ctx, "nats:2.10-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server is ready"),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start NATS container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("Failed to terminate NATS container: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("Failed to get NATS connection string: %v", err)
	}
	return url
}

func TestIngestorPipelineIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	natsURL := setupNATS(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	defer listener.Close()

	sentences := []string{
		testutils.KnownPositionSentence,
		testutils.PositionSentence(testutils.PositionReport{MsgType: 18, MMSI: 338123456, Lat: 37.8, Lon: -122.4, Speed: 5.5, Course: 90, Heading: 90}),
		"garbage",
	}
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		for _, s := range sentences {
			fmt.Fprintf(conn, "%s\r\n", s)
		}
		time.Sleep(2 * time.Second)
	}()

	publisher, err := nats.New(natsURL)
	if err != nil {
		t.Fatalf("Failed to create NATS client: %v", err)
	}
	defer publisher.Close()

	subscriber, err := nats.New(natsURL)
	if err != nil {
		t.Fatalf("Failed to create NATS client: %v", err)
	}
	defer subscriber.Close()

	received := make(chan *types.AISMessage, len(sentences))
	if err := subscriber.SubscribeAISRaw(func(msg *types.AISMessage) {
		received <- msg
	}); err != nil {
		t.Fatalf("SubscribeAISRaw() error = %v", err)
	}

	src, err := capture.ParseSource(listener.Addr().String())
	if err != nil {
		t.Fatalf("ParseSource() error = %v", err)
	}
	c := capture.New([]capture.Source{src}, true)
	if err := c.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	go forward(c.Messages(), publisher)
	defer c.Stop()

	for i := 0; i < 2; i++ {
		select {
		case msg := <-received:
			if msg.Raw != sentences[i] {
				t.Errorf("message %d = %q, want %q", i, msg.Raw, sentences[i])
			}
			if msg.Source != src.Raw {
				t.Errorf("Source = %q, want %q", msg.Source, src.Raw)
			}
		case <-time.After(10 * time.Second):
			t.Fatalf("Timeout waiting for message %d", i+1)
		}
	}

	select {
	case msg := <-received:
		t.Errorf("unexpected message %q", msg.Raw)
	case <-time.After(500 * time.Millisecond):
	}
}
