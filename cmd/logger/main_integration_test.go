package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	natscontainer "github.com/testcontainers/testcontainers-go/modules/nats"

	"github.com/saviobatista/ais-logger/internal/nats"
	"github.com/saviobatista/ais-logger/internal/storage"
	"github.com/saviobatista/ais-logger/internal/testutils"
)

func TestLoggerNATSIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := natscontainer.Run(ctx, "nats:2.10-alpine")
	if err != nil {
		t.Fatalf("Failed to start NATS container: %v", err)
	}
	defer func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("Failed to terminate NATS container: %v", err)
		}
	}()

	natsURL, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("Failed to get NATS connection string: %v", err)
	}

	subscriber, err := nats.New(natsURL)
	if err != nil {
		t.Fatalf("Failed to create NATS subscriber: %v", err)
	}
	publisher, err := nats.New(natsURL)
	if err != nil {
		t.Fatalf("Failed to create NATS publisher: %v", err)
	}
	defer publisher.Close()

	dir := t.TempDir()
	store := storage.New(dir)
	if err := store.Start(); err != nil {
		t.Fatalf("Failed to start storage: %v", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- run(runCtx, subscriber, store) }()

	sentences := []string{
		testutils.KnownPositionSentence,
		testutils.StaticVoyageSentence(244660000, "EVER GIVEN", "H3RC", "ROTTERDAM", 70),
	}
	for _, s := range sentences {
		if err := publisher.PublishAISMessage(testutils.MockAISMessage(s)); err != nil {
			t.Fatalf("PublishAISMessage() error = %v", err)
		}
	}

	logPath := filepath.Join(dir, storage.FileName(time.Now()))
	err = testutils.WaitForCondition(func() bool {
		data, err := os.ReadFile(logPath)
		return err == nil && strings.Count(string(data), "\n") >= len(sentences)
	}, 10*time.Second)
	if err != nil {
		t.Fatalf("sentences were not logged: %v", err)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("run() error = %v", err)
	}
	if err := store.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	for _, s := range sentences {
		if !strings.Contains(string(data), s+"\n") {
			t.Errorf("log is missing %q", s)
		}
	}
}
