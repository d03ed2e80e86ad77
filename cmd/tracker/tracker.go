package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saviobatista/ais-logger/internal/ais"
	"github.com/saviobatista/ais-logger/internal/assembler"
	"github.com/saviobatista/ais-logger/internal/dedup"
	"github.com/saviobatista/ais-logger/internal/parser"
	"github.com/saviobatista/ais-logger/internal/stats"
	"github.com/saviobatista/ais-logger/internal/types"
)

// DBClient interface for testability
type DBClient interface {
	GetActiveVoyages() ([]*types.Voyage, error)
	CreateVoyage(voyage *types.Voyage) error
	UpdateVoyage(voyage *types.Voyage) error
	StorePosition(state *types.VesselState) error
	UpsertVessel(vessel *types.Vessel) error
	Close() error
}

// RedisClient interface for testability
type RedisClient interface {
	StoreVoyage(ctx context.Context, voyage *types.Voyage) error
	GetVoyage(ctx context.Context, mmsi uint32) (*types.Voyage, error)
	DeleteVoyage(ctx context.Context, mmsi uint32) error
	StoreVesselState(ctx context.Context, state *types.VesselState) error
	GetVesselState(ctx context.Context, mmsi uint32) (*types.VesselState, error)
	DeleteVesselState(ctx context.Context, mmsi uint32) error
	StoreVessel(ctx context.Context, vessel *types.Vessel) error
	GetVessel(ctx context.Context, mmsi uint32) (*types.Vessel, error)
	StoreStaticPart(ctx context.Context, part *types.StaticPart) error
	GetStaticPart(ctx context.Context, mmsi uint32, partNumber uint8) (*types.StaticPart, error)
	IsIgnored(ctx context.Context, mmsi uint32) (bool, error)
	Close() error
}

// Publisher fans decoded messages out to subscribers outside the pipeline
type Publisher interface {
	PublishMessage(msg *ais.Message) error
	Close()
}

// Options tunes a VesselTracker. Zero values select the defaults and a nil
// StaticStore keeps type 24 parts in Redis.
type Options struct {
	DedupSize     int
	DedupWindow   time.Duration
	VoyageTimeout time.Duration
	StaticStore   assembler.Store
	Publisher     Publisher
}

// VesselTracker tracks vessel states and voyages
type VesselTracker struct {
	db            DBClient
	redis         RedisClient
	publisher     Publisher
	parser        *parser.Parser
	dedup         *dedup.Filter
	assembler     *assembler.Assembler
	voyageTimeout time.Duration
	now           func() time.Time

	mu            sync.Mutex
	activeVoyages map[uint32]*types.Voyage
	states        map[uint32]*types.VesselState // Cache of latest merged states

	stats *stats.Stats
}

// NewVesselTracker creates a new vessel tracker
func NewVesselTracker(db DBClient, redis RedisClient, opts Options) (*VesselTracker, error) {
	if opts.DedupSize <= 0 {
		opts.DedupSize = 4096
	}
	if opts.DedupWindow <= 0 {
		opts.DedupWindow = 10 * time.Second
	}
	if opts.VoyageTimeout <= 0 {
		opts.VoyageTimeout = 30 * time.Minute
	}
	if opts.StaticStore == nil {
		opts.StaticStore = redis
	}

	filter, err := dedup.New(opts.DedupSize, opts.DedupWindow)
	if err != nil {
		return nil, err
	}

	return &VesselTracker{
		db:            db,
		redis:         redis,
		publisher:     opts.Publisher,
		parser:        parser.New(),
		dedup:         filter,
		assembler:     assembler.New(opts.StaticStore),
		voyageTimeout: opts.VoyageTimeout,
		now:           time.Now,
		activeVoyages: make(map[uint32]*types.Voyage),
		states:        make(map[uint32]*types.VesselState),
		stats:         stats.New(),
	}, nil
}

// Start loads open voyages and starts the background loops
func (t *VesselTracker) Start(ctx context.Context) error {
	voyages, err := t.db.GetActiveVoyages()
	if err != nil {
		return fmt.Errorf("failed to load active voyages: %w", err)
	}

	t.mu.Lock()
	for _, voyage := range voyages {
		t.activeVoyages[voyage.MMSI] = voyage
		if err := t.redis.StoreVoyage(ctx, voyage); err != nil {
			log.Printf("Warning: Failed to cache voyage in Redis: %v", err)
		}
	}
	t.mu.Unlock()
	log.Printf("Loaded %d active voyages", len(voyages))

	if p, ok := t.db.(stats.Persister); ok {
		t.stats.SetPersister(p)
		go t.stats.StartPersistence(ctx, 5*time.Minute)
	}

	go t.logStats(ctx)
	go t.sweepLoop(ctx, time.Minute)

	return nil
}

// ProcessMessage processes one raw sentence
func (t *VesselTracker) ProcessMessage(msg *types.AISMessage) error {
	start := time.Now()
	t.stats.IncrementTotalMessages()
	t.stats.UpdateLastMessageTime()

	timestamp := msg.Timestamp
	if timestamp.IsZero() {
		timestamp = t.now().UTC()
	}

	if t.dedup.Seen(msg.Raw, timestamp) {
		t.stats.IncrementDuplicateMessages()
		return nil
	}

	result, err := t.parser.ParseFrom(msg.Source, msg.Raw, timestamp)
	if err != nil {
		t.stats.IncrementFailedMessages()
		return fmt.Errorf("failed to parse message: %w", err)
	}

	// Skip sentences that carry nothing to track
	if result == nil {
		return nil
	}

	t.stats.IncrementParsedMessages()
	t.stats.IncrementMessageType(int(result.Message.Type))

	ctx := context.Background()
	ignored, err := t.redis.IsIgnored(ctx, result.Message.MMSI)
	if err != nil {
		log.Printf("Warning: Failed to check ignore list: %v", err)
	} else if ignored {
		return nil
	}

	switch {
	case result.State != nil:
		err = t.processPosition(ctx, result.State)
	case result.Vessel != nil:
		err = t.storeVessel(ctx, result.Vessel)
	case result.Part != nil:
		err = t.processStaticPart(ctx, result.Part)
	}
	if err != nil {
		return err
	}

	if t.publisher != nil {
		if err := t.publisher.PublishMessage(result.Message); err != nil {
			log.Printf("Warning: Failed to publish message: %v", err)
		} else {
			t.stats.IncrementPublishedMessages()
		}
	}

	t.mu.Lock()
	t.stats.SetActiveVessels(uint64(len(t.states)))
	t.stats.SetActiveVoyages(uint64(len(t.activeVoyages)))
	t.mu.Unlock()
	t.stats.AddProcessingTime(time.Since(start))

	return nil
}

// processPosition merges a position report into the vessel state and voyage
func (t *VesselTracker) processPosition(ctx context.Context, report *types.VesselState) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	previous, exists := t.states[report.MMSI]
	if !exists {
		cached, err := t.redis.GetVesselState(ctx, report.MMSI)
		if err != nil {
			log.Printf("Warning: Failed to get vessel state from Redis: %v", err)
		}
		previous = cached
	}

	state := report
	if previous != nil {
		state = previous.Merge(report)
	}

	if err := t.updateVoyage(ctx, state); err != nil {
		return fmt.Errorf("failed to update voyage: %w", err)
	}
	report.VoyageID = state.VoyageID
	t.states[report.MMSI] = state

	if err := t.redis.StoreVesselState(ctx, state); err != nil {
		log.Printf("Warning: Failed to store vessel state in Redis: %v", err)
	}

	if err := t.db.StorePosition(report); err != nil {
		return fmt.Errorf("failed to store position: %w", err)
	}
	t.stats.IncrementStoredPositions()

	return nil
}

// updateVoyage creates, extends or restarts the voyage of a vessel.
// Callers hold t.mu.
func (t *VesselTracker) updateVoyage(ctx context.Context, state *types.VesselState) error {
	if !state.HasPosition() {
		return nil
	}

	voyage := t.activeVoyages[state.MMSI]
	if voyage == nil {
		cached, err := t.redis.GetVoyage(ctx, state.MMSI)
		if err != nil {
			log.Printf("Warning: Failed to get voyage from Redis: %v", err)
		} else if cached != nil {
			voyage = cached
			t.activeVoyages[state.MMSI] = cached
		}
	}

	// A long silence ends the voyage; the report starts a new one
	if voyage != nil && state.Timestamp.Sub(voyage.LastSeenAt) > t.voyageTimeout {
		if err := t.endVoyage(ctx, voyage); err != nil {
			return err
		}
		voyage = nil
	}

	lat, lon := *state.Latitude, *state.Longitude
	var speed float64
	if state.Speed != nil {
		speed = *state.Speed
	}

	if voyage == nil {
		voyage = &types.Voyage{
			VoyageID:       uuid.New().String(),
			MMSI:           state.MMSI,
			Name:           t.vesselName(ctx, state.MMSI),
			StartedAt:      state.Timestamp,
			LastSeenAt:     state.Timestamp,
			FirstLatitude:  lat,
			FirstLongitude: lon,
			LastLatitude:   lat,
			LastLongitude:  lon,
			MaxSpeed:       speed,
			PositionCount:  1,
		}
		t.activeVoyages[state.MMSI] = voyage

		if err := t.redis.StoreVoyage(ctx, voyage); err != nil {
			log.Printf("Warning: Failed to store voyage in Redis: %v", err)
		}
		if err := t.db.CreateVoyage(voyage); err != nil {
			return fmt.Errorf("failed to create voyage: %w", err)
		}
		t.stats.IncrementCreatedVoyages()
	} else {
		if state.Timestamp.After(voyage.LastSeenAt) {
			voyage.LastSeenAt = state.Timestamp
		}
		voyage.LastLatitude = lat
		voyage.LastLongitude = lon
		if speed > voyage.MaxSpeed {
			voyage.MaxSpeed = speed
		}
		voyage.PositionCount++

		if err := t.redis.StoreVoyage(ctx, voyage); err != nil {
			log.Printf("Warning: Failed to update voyage in Redis: %v", err)
		}
		t.stats.IncrementUpdatedVoyages()
	}

	state.VoyageID = voyage.VoyageID
	return nil
}

// endVoyage closes a voyage at its last sighting. Callers hold t.mu.
func (t *VesselTracker) endVoyage(ctx context.Context, voyage *types.Voyage) error {
	voyage.EndedAt = voyage.LastSeenAt
	delete(t.activeVoyages, voyage.MMSI)

	if err := t.redis.DeleteVoyage(ctx, voyage.MMSI); err != nil {
		log.Printf("Warning: Failed to delete voyage from Redis: %v", err)
	}
	if err := t.db.UpdateVoyage(voyage); err != nil {
		return fmt.Errorf("failed to end voyage: %w", err)
	}
	t.stats.IncrementEndedVoyages()
	return nil
}

func (t *VesselTracker) vesselName(ctx context.Context, mmsi uint32) string {
	vessel, err := t.redis.GetVessel(ctx, mmsi)
	if err != nil {
		log.Printf("Warning: Failed to get vessel from Redis: %v", err)
		return ""
	}
	if vessel == nil {
		return ""
	}
	return vessel.Name
}

// storeVessel merges a static report into the cached profile and upserts it
func (t *VesselTracker) storeVessel(ctx context.Context, vessel *types.Vessel) error {
	cached, err := t.redis.GetVessel(ctx, vessel.MMSI)
	if err != nil {
		log.Printf("Warning: Failed to get vessel from Redis: %v", err)
	}
	if cached != nil {
		vessel = cached.Merge(vessel)
	}

	if err := t.redis.StoreVessel(ctx, vessel); err != nil {
		log.Printf("Warning: Failed to store vessel in Redis: %v", err)
	}
	if err := t.db.UpsertVessel(vessel); err != nil {
		return fmt.Errorf("failed to store vessel: %w", err)
	}
	t.stats.IncrementStoredVessels()

	if vessel.Name == "" {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if voyage := t.activeVoyages[vessel.MMSI]; voyage != nil && voyage.Name != vessel.Name {
		voyage.Name = vessel.Name
		if err := t.redis.StoreVoyage(ctx, voyage); err != nil {
			log.Printf("Warning: Failed to update voyage in Redis: %v", err)
		}
	}
	return nil
}

// processStaticPart stores a type 24 part and upserts the profile once
// both parts are known
func (t *VesselTracker) processStaticPart(ctx context.Context, part *types.StaticPart) error {
	vessel, err := t.assembler.Add(ctx, part)
	if err != nil {
		return fmt.Errorf("failed to assemble static data: %w", err)
	}
	if vessel == nil {
		return nil
	}
	return t.storeVessel(ctx, vessel)
}

// Sweep ends voyages and forgets states not heard from within the voyage timeout
func (t *VesselTracker) Sweep(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for _, voyage := range t.activeVoyages {
		if now.Sub(voyage.LastSeenAt) <= t.voyageTimeout {
			continue
		}
		if err := t.endVoyage(ctx, voyage); err != nil {
			log.Printf("Warning: %v", err)
		}
	}
	for mmsi, state := range t.states {
		if now.Sub(state.Timestamp) <= t.voyageTimeout {
			continue
		}
		delete(t.states, mmsi)
		if err := t.redis.DeleteVesselState(ctx, mmsi); err != nil {
			log.Printf("Warning: Failed to delete vessel state from Redis: %v", err)
		}
	}

	t.stats.SetActiveVessels(uint64(len(t.states)))
	t.stats.SetActiveVoyages(uint64(len(t.activeVoyages)))
}

// Flush writes the progress of every open voyage to the database
func (t *VesselTracker) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, voyage := range t.activeVoyages {
		if err := t.db.UpdateVoyage(voyage); err != nil {
			log.Printf("Warning: Failed to flush voyage %s: %v", voyage.VoyageID, err)
		}
	}
}

func (t *VesselTracker) sweepLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Sweep(ctx)
		}
	}
}

// logStats periodically logs statistics
func (t *VesselTracker) logStats(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			log.Printf("Statistics:\n%s", t.stats)
		}
	}
}
