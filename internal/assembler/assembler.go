package assembler

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/saviobatista/ais-logger/internal/types"
)

// Store holds type 24 parts until their sibling arrives
type Store interface {
	StoreStaticPart(ctx context.Context, part *types.StaticPart) error
	GetStaticPart(ctx context.Context, mmsi uint32, partNumber uint8) (*types.StaticPart, error)
}

// Assembler joins type 24 part A (name) and part B (type, call sign,
// dimensions) into a vessel profile.
type Assembler struct {
	store Store
}

// New creates an assembler backed by store
func New(store Store) *Assembler {
	return &Assembler{store: store}
}

// Add records a part and returns the joined profile once both parts of the
// same MMSI are present. It returns nil while the sibling is missing.
func (a *Assembler) Add(ctx context.Context, part *types.StaticPart) (*types.Vessel, error) {
	if part.PartNumber > 1 {
		return nil, fmt.Errorf("unsupported static data part: %d", part.PartNumber)
	}

	if err := a.store.StoreStaticPart(ctx, part); err != nil {
		return nil, fmt.Errorf("failed to store static part: %w", err)
	}

	sibling, err := a.store.GetStaticPart(ctx, part.MMSI, 1-part.PartNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get static part: %w", err)
	}
	if sibling == nil {
		return nil, nil
	}

	partA, partB := part, sibling
	if part.PartNumber == 1 {
		partA, partB = sibling, part
	}
	return Join(partA, partB), nil
}

// Join builds a vessel profile from part A and part B
func Join(partA, partB *types.StaticPart) *types.Vessel {
	updated := partA.ReceivedAt
	if partB.ReceivedAt.After(updated) {
		updated = partB.ReceivedAt
	}

	return &types.Vessel{
		MMSI:        partA.MMSI,
		Name:        partA.Name,
		CallSign:    partB.CallSign,
		VesselType:  partB.VesselType,
		ToBow:       partB.ToBow,
		ToStern:     partB.ToStern,
		ToPort:      partB.ToPort,
		ToStarboard: partB.ToStarboard,
		SourceType:  24,
		UpdatedAt:   updated,
	}
}

// MemoryStore is an in-process Store with per-part expiry
type MemoryStore struct {
	parts *cache.Cache
}

// NewMemoryStore creates a store whose parts expire after ttl
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{parts: cache.New(ttl, ttl/2)}
}

func partKey(mmsi uint32, partNumber uint8) string {
	return fmt.Sprintf("%d:%d", mmsi, partNumber)
}

// StoreStaticPart stores a part, replacing any earlier one with the same key
func (s *MemoryStore) StoreStaticPart(ctx context.Context, part *types.StaticPart) error {
	s.parts.SetDefault(partKey(part.MMSI, part.PartNumber), part)
	return nil
}

// GetStaticPart returns a stored part, or nil when absent or expired
func (s *MemoryStore) GetStaticPart(ctx context.Context, mmsi uint32, partNumber uint8) (*types.StaticPart, error) {
	v, found := s.parts.Get(partKey(mmsi, partNumber))
	if !found {
		return nil, nil
	}
	return v.(*types.StaticPart), nil
}

// Len returns the number of unexpired parts
func (s *MemoryStore) Len() int {
	return s.parts.ItemCount()
}
