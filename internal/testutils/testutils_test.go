package testutils

import (
	"strings"
	"testing"
	"time"
)

func TestMockAISMessage(t *testing.T) {
	msg := MockAISMessage(KnownPositionSentence)

	if msg == nil {
		t.Fatal("MockAISMessage() returned nil")
	}
	if msg.Raw != KnownPositionSentence {
		t.Errorf("Raw = %q, want %q", msg.Raw, KnownPositionSentence)
	}
	if time.Since(msg.Timestamp) > 5*time.Second {
		t.Error("Timestamp should be recent")
	}
	if msg.Source != "test-source" {
		t.Errorf("Expected source 'test-source', got '%s'", msg.Source)
	}
}

func TestPayloadBuilder_Armor(t *testing.T) {
	tests := []struct {
		name        string
		build       func() *PayloadBuilder
		wantPayload string
		wantFill    int
	}{
		{
			name: "whole characters",
			build: func() *PayloadBuilder {
				return NewPayloadBuilder(0).SetUint(0, 6, 1).SetUint(6, 6, 5)
			},
			wantPayload: "15",
			wantFill:    0,
		},
		{
			name: "upper armor range",
			build: func() *PayloadBuilder {
				return NewPayloadBuilder(0).SetUint(0, 6, 39).SetUint(6, 6, 40).SetUint(12, 6, 63)
			},
			wantPayload: "W`w",
			wantFill:    0,
		},
		{
			name: "partial character is padded",
			build: func() *PayloadBuilder {
				return NewPayloadBuilder(8).SetUint(0, 8, 0xFF)
			},
			wantPayload: "wh",
			wantFill:    4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, fill := tt.build().Armor()
			if payload != tt.wantPayload {
				t.Errorf("Armor() payload = %q, want %q", payload, tt.wantPayload)
			}
			if fill != tt.wantFill {
				t.Errorf("Armor() fill = %d, want %d", fill, tt.wantFill)
			}
		})
	}
}

func TestPayloadBuilder_SetText(t *testing.T) {
	p := NewPayloadBuilder(0).SetText(0, 18, "a1")

	if p.Len() != 18 {
		t.Fatalf("Len() = %d, want 18", p.Len())
	}

	// 'A' = 1, '1' = 49, padding '@' = 0
	payload, _ := p.Armor()
	if payload != "1i0" {
		t.Errorf("Armor() = %q, want %q", payload, "1i0")
	}
}

func TestWrapPayload(t *testing.T) {
	if got := WrapPayload("15", 0); got != "!AIVDM,1,1,,A,15,0*22" {
		t.Errorf("WrapPayload() = %q, want %q", got, "!AIVDM,1,1,,A,15,0*22")
	}
	if got := WrapPayload("15RTgt0PAso;90TKcjM8h6g208CQ", 0); got != KnownPositionSentence {
		t.Errorf("WrapPayload() = %q, want %q", got, KnownPositionSentence)
	}
}

func TestSentenceHelpers(t *testing.T) {
	sentences := []string{
		PositionSentence(PositionReport{MsgType: 1, MMSI: 244660000, Lat: 51.9, Lon: 4.1, Speed: 10, Course: 90, Heading: 91}),
		PositionSentence(PositionReport{MsgType: 18, MMSI: 244660001, Lat: -33.8, Lon: 151.2, Speed: 3.4, Course: 10, Heading: 511}),
		StaticVoyageSentence(244660000, "EVER GIVEN", "H3RC", "ROTTERDAM", 70),
		StaticPartASentence(244660001, "SEA BREEZE"),
		StaticPartBSentence(244660001, 37, "PD1234", 8, 4, 2, 2),
	}

	for _, s := range sentences {
		if !strings.HasPrefix(s, "!AIVDM,1,1,,A,") {
			t.Errorf("sentence %q has unexpected prefix", s)
		}
		if idx := strings.LastIndex(s, "*"); idx != len(s)-3 {
			t.Errorf("sentence %q has no two digit checksum", s)
		}
	}
}

func TestStaticVoyageFragments(t *testing.T) {
	single := StaticVoyageSentence(244660000, "EVER GIVEN", "H3RC", "ROTTERDAM EUROPOORT", 70)
	fragments := StaticVoyageFragments(244660000, "EVER GIVEN", "H3RC", "ROTTERDAM EUROPOORT", 70, "3")

	if len(fragments) != 2 {
		t.Fatalf("StaticVoyageFragments() returned %d sentences, want 2", len(fragments))
	}
	if !strings.HasPrefix(fragments[0], "!AIVDM,2,1,3,A,") {
		t.Errorf("first fragment = %q", fragments[0])
	}
	if !strings.HasPrefix(fragments[1], "!AIVDM,2,2,3,A,") {
		t.Errorf("second fragment = %q", fragments[1])
	}

	payload := func(s string) string { return strings.Split(s, ",")[5] }
	if joined := payload(fragments[0]) + payload(fragments[1]); joined != payload(single) {
		t.Errorf("joined payload = %q, want %q", joined, payload(single))
	}
	if len(payload(fragments[0])) != 60 {
		t.Errorf("first fragment carries %d characters, want 60", len(payload(fragments[0])))
	}
	if !strings.Contains(fragments[0], ",0*") || !strings.Contains(fragments[1], ",2*") {
		t.Errorf("fill bits not on the last fragment: %q %q", fragments[0], fragments[1])
	}
}

func TestWaitForCondition(t *testing.T) {
	t.Run("condition becomes true", func(t *testing.T) {
		start := time.Now()
		err := WaitForCondition(func() bool {
			return time.Since(start) > 150*time.Millisecond
		}, 2*time.Second)
		if err != nil {
			t.Errorf("WaitForCondition() error = %v", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		err := WaitForCondition(func() bool { return false }, 250*time.Millisecond)
		if err == nil {
			t.Error("WaitForCondition() should return an error on timeout")
		}
	})
}
