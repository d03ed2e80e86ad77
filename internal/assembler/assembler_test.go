package assembler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/saviobatista/ais-logger/internal/types"
)

func uint8Ptr(v uint8) *uint8 { return &v }

func partA(mmsi uint32, name string, at time.Time) *types.StaticPart {
	return &types.StaticPart{MMSI: mmsi, PartNumber: 0, Name: name, ReceivedAt: at}
}

func partB(mmsi uint32, callSign string, at time.Time) *types.StaticPart {
	return &types.StaticPart{
		MMSI:        mmsi,
		PartNumber:  1,
		CallSign:    callSign,
		VesselType:  uint8Ptr(37),
		ToBow:       8,
		ToStern:     4,
		ToPort:      2,
		ToStarboard: 3,
		ReceivedAt:  at,
	}
}

func TestAssembler_Add(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		parts []*types.StaticPart
		want  []bool
	}{
		{
			name:  "A then B",
			parts: []*types.StaticPart{partA(1, "SEA BREEZE", ts), partB(1, "PD1234", ts.Add(time.Second))},
			want:  []bool{false, true},
		},
		{
			name:  "B then A",
			parts: []*types.StaticPart{partB(1, "PD1234", ts), partA(1, "SEA BREEZE", ts.Add(time.Second))},
			want:  []bool{false, true},
		},
		{
			name:  "different MMSIs never join",
			parts: []*types.StaticPart{partA(1, "SEA BREEZE", ts), partB(2, "PD1234", ts)},
			want:  []bool{false, false},
		},
		{
			name:  "repeated part A waits for B",
			parts: []*types.StaticPart{partA(1, "OLD NAME", ts), partA(1, "SEA BREEZE", ts), partB(1, "PD1234", ts)},
			want:  []bool{false, false, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(NewMemoryStore(time.Minute))

			var last *types.Vessel
			for i, part := range tt.parts {
				vessel, err := a.Add(ctx, part)
				if err != nil {
					t.Fatalf("Add() error = %v", err)
				}
				if (vessel != nil) != tt.want[i] {
					t.Errorf("Add() #%d vessel = %v, want joined %v", i, vessel, tt.want[i])
				}
				if vessel != nil {
					last = vessel
				}
			}

			if last == nil {
				return
			}
			if last.Name != "SEA BREEZE" {
				t.Errorf("Name = %q, want %q", last.Name, "SEA BREEZE")
			}
			if last.CallSign != "PD1234" {
				t.Errorf("CallSign = %q, want %q", last.CallSign, "PD1234")
			}
			if last.SourceType != 24 {
				t.Errorf("SourceType = %d, want 24", last.SourceType)
			}
			if last.Length() != 12 {
				t.Errorf("Length() = %d, want 12", last.Length())
			}
		})
	}
}

func TestAssembler_AddRejectsReservedParts(t *testing.T) {
	a := New(NewMemoryStore(time.Minute))
	_, err := a.Add(context.Background(), &types.StaticPart{MMSI: 1, PartNumber: 2})
	if err == nil {
		t.Error("Add() should reject part number 2")
	}
}

func TestJoin_UsesLatestTimestamp(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	v := Join(partA(1, "A", ts.Add(time.Minute)), partB(1, "B", ts))
	if !v.UpdatedAt.Equal(ts.Add(time.Minute)) {
		t.Errorf("UpdatedAt = %v, want %v", v.UpdatedAt, ts.Add(time.Minute))
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(50 * time.Millisecond)

	if err := s.StoreStaticPart(ctx, partA(1, "SEA BREEZE", time.Now())); err != nil {
		t.Fatalf("StoreStaticPart() error = %v", err)
	}
	if got, _ := s.GetStaticPart(ctx, 1, 0); got == nil {
		t.Fatal("GetStaticPart() = nil, want stored part")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}

	time.Sleep(100 * time.Millisecond)

	if got, _ := s.GetStaticPart(ctx, 1, 0); got != nil {
		t.Errorf("GetStaticPart() = %v, want nil after expiry", got)
	}
}

type failingStore struct{}

func (failingStore) StoreStaticPart(ctx context.Context, part *types.StaticPart) error {
	return errors.New("store down")
}

func (failingStore) GetStaticPart(ctx context.Context, mmsi uint32, partNumber uint8) (*types.StaticPart, error) {
	return nil, nil
}

func TestAssembler_StoreError(t *testing.T) {
	a := New(failingStore{})
	if _, err := a.Add(context.Background(), partA(1, "X", time.Now())); err == nil {
		t.Error("Add() should propagate store errors")
	}
}
