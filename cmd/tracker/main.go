package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/saviobatista/ais-logger/internal/config"
	"github.com/saviobatista/ais-logger/internal/db"
	"github.com/saviobatista/ais-logger/internal/mqtt"
	"github.com/saviobatista/ais-logger/internal/nats"
	"github.com/saviobatista/ais-logger/internal/redis"
	"github.com/saviobatista/ais-logger/internal/types"
)

// clients bundles the external connections of the tracker
type clients struct {
	nats      *nats.Client
	db        *db.Client
	redis     *redis.Client
	publisher *mqtt.Publisher
}

// close releases every connection that was opened
func (c *clients) close() {
	if c.nats != nil {
		c.nats.Close()
	}
	if c.publisher != nil {
		c.publisher.Close()
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "error closing dbClient: %v\n", err)
		}
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "error closing redisClient: %v\n", err)
		}
	}
}

// createClients creates all the required clients for the application
func createClients(cfg *config.Config) (*clients, error) {
	c := &clients{}
	var err error

	if c.nats, err = nats.New(cfg.NATSURL); err != nil {
		return nil, fmt.Errorf("failed to create NATS client: %w", err)
	}

	if c.db, err = db.New(cfg.DBConnStr); err != nil {
		c.close()
		return nil, fmt.Errorf("failed to create database client: %w", err)
	}

	if c.redis, err = redis.New(cfg.RedisAddr); err != nil {
		c.close()
		return nil, fmt.Errorf("failed to create Redis client: %w", err)
	}
	c.redis.SetStaticPartTTL(cfg.StaticPartTTL)

	if cfg.MQTTEnabled() {
		if c.publisher, err = mqtt.New(cfg.MQTTBroker, "ais-tracker", cfg.MQTTTopicPrefix); err != nil {
			c.close()
			return nil, fmt.Errorf("failed to create MQTT publisher: %w", err)
		}
		log.Printf("Publishing decoded messages to MQTT broker %s", cfg.MQTTBroker)
	}

	return c, nil
}

// newTracker builds the tracker options from the configuration
func newTracker(cfg *config.Config, c *clients) (*VesselTracker, error) {
	opts := Options{
		DedupSize:     cfg.DedupSize,
		DedupWindow:   cfg.DedupWindow,
		VoyageTimeout: cfg.VoyageTimeout,
	}
	if c.publisher != nil {
		opts.Publisher = c.publisher
	}
	return NewVesselTracker(c.db, c.redis, opts)
}

// Subscriber delivers raw sentences from the bus
type Subscriber interface {
	SubscribeAISRaw(handler func(*types.AISMessage)) error
}

// subscribe feeds every raw sentence from NATS to the tracker
func subscribe(sub Subscriber, tracker *VesselTracker) error {
	if err := sub.SubscribeAISRaw(func(msg *types.AISMessage) {
		if err := tracker.ProcessMessage(msg); err != nil {
			log.Printf("Failed to process message: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to subscribe to AIS messages: %w", err)
	}
	return nil
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	c, err := createClients(cfg)
	if err != nil {
		return err
	}
	defer c.close()

	tracker, err := newTracker(cfg, c)
	if err != nil {
		return fmt.Errorf("failed to create vessel tracker: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := tracker.Start(ctx); err != nil {
		return fmt.Errorf("failed to start vessel tracker: %w", err)
	}
	if err := subscribe(c.nats, tracker); err != nil {
		return err
	}

	<-ctx.Done()
	log.Println("Shutting down...")
	tracker.Flush()
	if err := tracker.stats.Persist(); err != nil {
		log.Printf("Warning: %v", err)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Printf("Tracker failed: %v", err)
		os.Exit(1)
	}
}
