package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/saviobatista/ais-logger/internal/storage"
	"github.com/saviobatista/ais-logger/internal/testutils"
	"github.com/saviobatista/ais-logger/internal/types"
)

type mockSubscriber struct {
	handler      func(*types.AISMessage)
	subscribeErr error
	subscribed   chan struct{}
	closed       bool
}

func (m *mockSubscriber) SubscribeAISRaw(handler func(*types.AISMessage)) error {
	if m.subscribeErr != nil {
		return m.subscribeErr
	}
	m.handler = handler
	if m.subscribed != nil {
		close(m.subscribed)
	}
	return nil
}

func (m *mockSubscriber) Close() {
	m.closed = true
}

type mockWriter struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (m *mockWriter) WriteMessage(message []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, string(message))
	return nil
}

func TestNewHandler(t *testing.T) {
	tests := []struct {
		name string
		msg  *types.AISMessage
		want int
	}{
		{"raw sentence", testutils.MockAISMessage(testutils.KnownPositionSentence), 1},
		{"nil message", nil, 0},
		{"empty raw", &types.AISMessage{Source: "x"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := &mockWriter{}
			newHandler(writer)(tt.msg)
			if len(writer.messages) != tt.want {
				t.Errorf("wrote %d messages, want %d", len(writer.messages), tt.want)
			}
		})
	}
}

func TestNewHandler_WriteError(t *testing.T) {
	writer := &mockWriter{err: errors.New("disk full")}
	// Must log and carry on.
	newHandler(writer)(testutils.MockAISMessage(testutils.KnownPositionSentence))
}

func TestRun(t *testing.T) {
	sub := &mockSubscriber{subscribed: make(chan struct{})}
	writer := &mockWriter{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- run(ctx, sub, writer) }()

	select {
	case <-sub.subscribed:
	case <-time.After(time.Second):
		t.Fatal("run() did not subscribe")
	}
	sub.handler(testutils.MockAISMessage(testutils.KnownPositionSentence))
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("run() did not return after cancel")
	}

	if !sub.closed {
		t.Error("run() did not close the subscriber")
	}
	if len(writer.messages) != 1 || writer.messages[0] != testutils.KnownPositionSentence {
		t.Errorf("messages = %v", writer.messages)
	}
}

func TestRun_SubscribeError(t *testing.T) {
	sub := &mockSubscriber{subscribeErr: errors.New("no stream")}
	if err := run(context.Background(), sub, &mockWriter{}); err == nil {
		t.Error("run() should fail when subscribe fails")
	}
	if !sub.closed {
		t.Error("run() did not close the subscriber on error")
	}
}

func TestHandlerWithStorage(t *testing.T) {
	dir := t.TempDir()
	store := storage.New(dir)
	if err := store.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	handler := newHandler(store)
	for i := 0; i < 3; i++ {
		handler(testutils.MockAISMessage(testutils.KnownPositionSentence))
	}
	if err := store.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, storage.FileName(time.Now())))
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	if got := strings.Count(string(data), testutils.KnownPositionSentence+"\n"); got != 3 {
		t.Errorf("log contains %d sentences, want 3", got)
	}
}
