package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/saviobatista/ais-logger/internal/config"
	"github.com/saviobatista/ais-logger/internal/nats"
	"github.com/saviobatista/ais-logger/internal/storage"
	"github.com/saviobatista/ais-logger/internal/types"
)

// Subscriber delivers raw sentences from the bus
type Subscriber interface {
	SubscribeAISRaw(handler func(*types.AISMessage)) error
	Close()
}

// MessageWriter persists raw sentences
type MessageWriter interface {
	WriteMessage(message []byte) error
}

func main() {
	if err := runLogger(); err != nil {
		log.Printf("Logger failed: %v", err)
		os.Exit(1)
	}
}

// runLogger wires config, NATS and storage and blocks until a shutdown signal
func runLogger() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store := storage.New(cfg.OutputDir)
	if err := store.Start(); err != nil {
		return fmt.Errorf("failed to start storage: %w", err)
	}
	defer func() {
		if err := store.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "error closing storage: %v\n", err)
		}
	}()

	client, err := nats.New(cfg.NATSURL)
	if err != nil {
		return fmt.Errorf("failed to create NATS client: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("Logging AIS sentences to %s", cfg.OutputDir)
	return run(ctx, client, store)
}

// run subscribes writer to the raw stream and waits for ctx to end
func run(ctx context.Context, sub Subscriber, writer MessageWriter) error {
	defer sub.Close()

	if err := sub.SubscribeAISRaw(newHandler(writer)); err != nil {
		return fmt.Errorf("failed to subscribe to AIS messages: %w", err)
	}

	<-ctx.Done()
	log.Println("Shutting down...")
	return nil
}

func newHandler(writer MessageWriter) func(*types.AISMessage) {
	return func(msg *types.AISMessage) {
		if msg == nil || msg.Raw == "" {
			return
		}
		if err := writer.WriteMessage([]byte(msg.Raw)); err != nil {
			log.Printf("Failed to write message: %v", err)
		}
	}
}
