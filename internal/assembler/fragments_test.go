package assembler

import (
	"errors"
	"testing"
	"time"

	"github.com/saviobatista/ais-logger/internal/ais"
)

func envelope(count, number int, seqID, payload string, fill int) *ais.Envelope {
	return &ais.Envelope{
		Tag:            "!AIVDM",
		FragmentCount:  count,
		FragmentNumber: number,
		SequenceID:     seqID,
		Channel:        "A",
		Payload:        payload,
		FillBits:       fill,
	}
}

func TestFragments_Add(t *testing.T) {
	tests := []struct {
		name        string
		envelopes   []*ais.Envelope
		wantPayload string
		wantFill    int
		wantErr     error
	}{
		{
			name:        "single fragment passes through",
			envelopes:   []*ais.Envelope{envelope(1, 1, "", "15RTgt0", 0)},
			wantPayload: "15RTgt0",
		},
		{
			name:        "two fragments join",
			envelopes:   []*ais.Envelope{envelope(2, 1, "3", "55P5TL", 0), envelope(2, 2, "3", "01VIaAL", 2)},
			wantPayload: "55P5TL01VIaAL",
			wantFill:    2,
		},
		{
			name: "three fragments join",
			envelopes: []*ais.Envelope{
				envelope(3, 1, "1", "aaa", 0),
				envelope(3, 2, "1", "bbb", 0),
				envelope(3, 3, "1", "ccc", 4),
			},
			wantPayload: "aaabbbccc",
			wantFill:    4,
		},
		{
			name: "repeated first fragment starts over",
			envelopes: []*ais.Envelope{
				envelope(2, 1, "3", "old", 0),
				envelope(2, 1, "3", "new", 0),
				envelope(2, 2, "3", "tail", 0),
			},
			wantPayload: "newtail",
		},
		{
			name:      "continuation without first fragment",
			envelopes: []*ais.Envelope{envelope(2, 2, "7", "88888888880", 2)},
			wantErr:   ErrOrphanFragment,
		},
		{
			name: "skipped fragment",
			envelopes: []*ais.Envelope{
				envelope(3, 1, "1", "aaa", 0),
				envelope(3, 3, "1", "ccc", 0),
			},
			wantErr: ErrOrphanFragment,
		},
		{
			name:      "different sequence ids never join",
			envelopes: []*ais.Envelope{envelope(2, 1, "1", "aaa", 0), envelope(2, 2, "2", "bbb", 0)},
			wantErr:   ErrOrphanFragment,
		},
		{
			name:      "fragment number above count",
			envelopes: []*ais.Envelope{envelope(2, 3, "1", "aaa", 0)},
			wantErr:   ErrInvalidFragment,
		},
		{
			name:      "fragment number zero",
			envelopes: []*ais.Envelope{envelope(2, 0, "1", "aaa", 0)},
			wantErr:   ErrInvalidFragment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFragments(time.Minute)

			var got *ais.Envelope
			var err error
			for i, env := range tt.envelopes {
				got, err = f.Add("rx1", env)
				if err != nil {
					break
				}
				if i < len(tt.envelopes)-1 && got != nil {
					t.Fatalf("Add() fragment %d returned %+v before the message was complete", i+1, got)
				}
			}

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Add() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Add() error = %v", err)
			}
			if got == nil {
				t.Fatal("Add() returned nil for a complete message")
			}
			if got.Payload != tt.wantPayload {
				t.Errorf("Payload = %q, want %q", got.Payload, tt.wantPayload)
			}
			if got.FillBits != tt.wantFill {
				t.Errorf("FillBits = %d, want %d", got.FillBits, tt.wantFill)
			}
			if got.Multipart() {
				t.Errorf("joined envelope is still multipart: %+v", got)
			}
			if f.Pending() != 0 {
				t.Errorf("Pending() = %d, want 0", f.Pending())
			}
		})
	}
}

func TestFragments_SourcesKeptApart(t *testing.T) {
	f := NewFragments(time.Minute)

	if _, err := f.Add("rx1", envelope(2, 1, "3", "aaa", 0)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := f.Add("rx2", envelope(2, 1, "3", "xxx", 0)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if f.Pending() != 2 {
		t.Errorf("Pending() = %d, want 2", f.Pending())
	}

	got, err := f.Add("rx2", envelope(2, 2, "3", "yyy", 0))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if got == nil || got.Payload != "xxxyyy" {
		t.Errorf("Add() = %+v, want payload xxxyyy", got)
	}
	if f.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", f.Pending())
	}
}

func TestFragments_Expiry(t *testing.T) {
	f := NewFragments(50 * time.Millisecond)

	if _, err := f.Add("rx1", envelope(2, 1, "3", "aaa", 0)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	if _, err := f.Add("rx1", envelope(2, 2, "3", "bbb", 0)); !errors.Is(err, ErrOrphanFragment) {
		t.Errorf("Add() after expiry error = %v, want %v", err, ErrOrphanFragment)
	}
}
