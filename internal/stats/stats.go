package stats

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// MessageTypes is the number of distinct six-bit AIS message types
const MessageTypes = 64

// Persister stores statistics snapshots
type Persister interface {
	StoreSystemStats(stats map[string]interface{}) error
}

// Stats tracks message processing statistics
type Stats struct {
	// Message counts
	TotalMessages     uint64
	ParsedMessages    uint64
	FailedMessages    uint64
	DuplicateMessages uint64
	StoredPositions   uint64
	StoredVessels     uint64
	CreatedVoyages    uint64
	UpdatedVoyages    uint64
	EndedVoyages      uint64
	PublishedMessages uint64

	// Message type counts
	MessageTypeCounts [MessageTypes]uint64 // Index corresponds to message type

	// Timing
	StartedAt       time.Time
	LastMessageTime time.Time
	ProcessingTime  time.Duration

	// Active tracking
	ActiveVessels uint64
	ActiveVoyages uint64

	persister Persister

	mu sync.RWMutex
}

// New creates a new Stats instance
func New() *Stats {
	now := time.Now()
	return &Stats{
		StartedAt:       now,
		LastMessageTime: now,
	}
}

// SetPersister sets where Persist writes snapshots
func (s *Stats) SetPersister(p Persister) {
	s.mu.Lock()
	s.persister = p
	s.mu.Unlock()
}

// Persist stores the current statistics
func (s *Stats) Persist() error {
	s.mu.RLock()
	p := s.persister
	s.mu.RUnlock()
	if p == nil {
		return fmt.Errorf("statistics persister not set")
	}

	if err := p.StoreSystemStats(s.GetStats()); err != nil {
		return fmt.Errorf("failed to persist statistics: %w", err)
	}
	return nil
}

// IncrementTotalMessages increments the total messages counter
func (s *Stats) IncrementTotalMessages() {
	atomic.AddUint64(&s.TotalMessages, 1)
}

// IncrementParsedMessages increments the parsed messages counter
func (s *Stats) IncrementParsedMessages() {
	atomic.AddUint64(&s.ParsedMessages, 1)
}

// IncrementFailedMessages increments the failed messages counter
func (s *Stats) IncrementFailedMessages() {
	atomic.AddUint64(&s.FailedMessages, 1)
}

// IncrementDuplicateMessages increments the dropped duplicates counter
func (s *Stats) IncrementDuplicateMessages() {
	atomic.AddUint64(&s.DuplicateMessages, 1)
}

// IncrementStoredPositions increments the stored positions counter
func (s *Stats) IncrementStoredPositions() {
	atomic.AddUint64(&s.StoredPositions, 1)
}

// IncrementStoredVessels increments the stored vessel profiles counter
func (s *Stats) IncrementStoredVessels() {
	atomic.AddUint64(&s.StoredVessels, 1)
}

// IncrementMessageType increments the counter for a specific message type
func (s *Stats) IncrementMessageType(msgType int) {
	if msgType >= 0 && msgType < len(s.MessageTypeCounts) {
		atomic.AddUint64(&s.MessageTypeCounts[msgType], 1)
	}
}

// IncrementCreatedVoyages increments the created voyages counter
func (s *Stats) IncrementCreatedVoyages() {
	atomic.AddUint64(&s.CreatedVoyages, 1)
}

// IncrementUpdatedVoyages increments the updated voyages counter
func (s *Stats) IncrementUpdatedVoyages() {
	atomic.AddUint64(&s.UpdatedVoyages, 1)
}

// IncrementEndedVoyages increments the ended voyages counter
func (s *Stats) IncrementEndedVoyages() {
	atomic.AddUint64(&s.EndedVoyages, 1)
}

// IncrementPublishedMessages increments the MQTT published counter
func (s *Stats) IncrementPublishedMessages() {
	atomic.AddUint64(&s.PublishedMessages, 1)
}

// SetActiveVessels sets the number of vessels with a cached state
func (s *Stats) SetActiveVessels(count uint64) {
	atomic.StoreUint64(&s.ActiveVessels, count)
}

// SetActiveVoyages sets the number of open voyages
func (s *Stats) SetActiveVoyages(count uint64) {
	atomic.StoreUint64(&s.ActiveVoyages, count)
}

// UpdateLastMessageTime updates the last message time
func (s *Stats) UpdateLastMessageTime() {
	s.mu.Lock()
	s.LastMessageTime = time.Now()
	s.mu.Unlock()
}

// AddProcessingTime adds to the total processing time
func (s *Stats) AddProcessingTime(duration time.Duration) {
	s.mu.Lock()
	s.ProcessingTime += duration
	s.mu.Unlock()
}

// GetStats returns a copy of the current statistics
func (s *Stats) GetStats() map[string]interface{} {
	var types [MessageTypes]uint64
	for i := range s.MessageTypeCounts {
		types[i] = atomic.LoadUint64(&s.MessageTypeCounts[i])
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"total_messages":     atomic.LoadUint64(&s.TotalMessages),
		"parsed_messages":    atomic.LoadUint64(&s.ParsedMessages),
		"failed_messages":    atomic.LoadUint64(&s.FailedMessages),
		"duplicate_messages": atomic.LoadUint64(&s.DuplicateMessages),
		"stored_positions":   atomic.LoadUint64(&s.StoredPositions),
		"stored_vessels":     atomic.LoadUint64(&s.StoredVessels),
		"created_voyages":    atomic.LoadUint64(&s.CreatedVoyages),
		"updated_voyages":    atomic.LoadUint64(&s.UpdatedVoyages),
		"ended_voyages":      atomic.LoadUint64(&s.EndedVoyages),
		"published_messages": atomic.LoadUint64(&s.PublishedMessages),
		"active_vessels":     atomic.LoadUint64(&s.ActiveVessels),
		"active_voyages":     atomic.LoadUint64(&s.ActiveVoyages),
		"message_types":      types,
		"last_message_time":  s.LastMessageTime,
		"processing_time":    s.ProcessingTime,
		"uptime":             time.Since(s.StartedAt),
	}
}

// String returns a string representation of the statistics
func (s *Stats) String() string {
	stats := s.GetStats()
	return fmt.Sprintf(
		"Total Messages: %d\n"+
			"Parsed Messages: %d\n"+
			"Failed Messages: %d\n"+
			"Duplicate Messages: %d\n"+
			"Stored Positions: %d\n"+
			"Stored Vessels: %d\n"+
			"Created Voyages: %d\n"+
			"Updated Voyages: %d\n"+
			"Ended Voyages: %d\n"+
			"Published Messages: %d\n"+
			"Active Vessels: %d\n"+
			"Active Voyages: %d\n"+
			"Last Message Time: %s\n"+
			"Processing Time: %s\n"+
			"Uptime: %s",
		stats["total_messages"],
		stats["parsed_messages"],
		stats["failed_messages"],
		stats["duplicate_messages"],
		stats["stored_positions"],
		stats["stored_vessels"],
		stats["created_voyages"],
		stats["updated_voyages"],
		stats["ended_voyages"],
		stats["published_messages"],
		stats["active_vessels"],
		stats["active_voyages"],
		stats["last_message_time"],
		stats["processing_time"],
		stats["uptime"],
	)
}

// StartPersistence starts periodic persistence of statistics
func (s *Stats) StartPersistence(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final persistence before shutdown
			if err := s.Persist(); err != nil {
				log.Printf("Failed to persist final statistics: %v", err)
			}
			return
		case <-ticker.C:
			if err := s.Persist(); err != nil {
				log.Printf("Failed to persist statistics: %v", err)
			}
		}
	}
}
