package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saviobatista/ais-logger/internal/capture"
	"github.com/saviobatista/ais-logger/internal/config"
	"github.com/saviobatista/ais-logger/internal/nats"
	"github.com/saviobatista/ais-logger/internal/types"
)

// NATSClient interface for testability
type NATSClient interface {
	PublishAISMessage(msg *types.AISMessage) error
	Close()
}

func main() {
	if err := runIngestor(); err != nil {
		log.Printf("Ingestor failed: %v", err)
		os.Exit(1)
	}
}

func runIngestor() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.RequireSources(); err != nil {
		return err
	}

	sources := make([]capture.Source, 0, len(cfg.Sources))
	for _, raw := range cfg.Sources {
		src, err := capture.ParseSource(raw)
		if err != nil {
			return err
		}
		sources = append(sources, src)
	}

	client, err := nats.New(cfg.NATSURL)
	if err != nil {
		return fmt.Errorf("failed to create NATS client: %w", err)
	}
	defer client.Close()

	c := capture.New(sources, cfg.VerifyChecksum)
	if err := c.Start(); err != nil {
		return fmt.Errorf("failed to start capture: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		c.Stop()
	}()

	published, failed := forward(c.Messages(), client)
	log.Printf("Ingestor stopped: %d published, %d failed, %d checksum failures",
		published, failed, c.ChecksumFailures())
	return nil
}

// forward publishes every captured sentence until messages is closed
func forward(messages <-chan capture.Message, client NATSClient) (published, failed uint64) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				return published, failed
			}
			if err := client.PublishAISMessage(&types.AISMessage{
				Raw:       msg.Sentence,
				Timestamp: msg.Timestamp,
				Source:    msg.Source,
			}); err != nil {
				failed++
				log.Printf("Failed to publish message: %v", err)
				continue
			}
			published++
		case <-ticker.C:
			log.Printf("Ingestor: %d published, %d failed", published, failed)
		}
	}
}
