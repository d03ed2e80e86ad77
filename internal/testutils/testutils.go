package testutils

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/adrianmo/go-nmea"

	"github.com/saviobatista/ais-logger/internal/types"
)

// KnownPositionSentence is a real Class A position report for MMSI 371798000
const KnownPositionSentence = "!AIVDM,1,1,,A,15RTgt0PAso;90TKcjM8h6g208CQ,0*4A"

// MockAISMessage wraps a raw sentence the way the ingestor publishes it
func MockAISMessage(raw string) *types.AISMessage {
	return &types.AISMessage{
		Raw:       raw,
		Timestamp: time.Now().UTC(),
		Source:    "test-source",
	}
}

// PayloadBuilder writes AIS fields into a bit sequence and armors it.
// Each element of bits holds a single bit.
type PayloadBuilder struct {
	bits []byte
}

// NewPayloadBuilder creates a builder holding length zero bits
func NewPayloadBuilder(length int) *PayloadBuilder {
	return &PayloadBuilder{bits: make([]byte, length)}
}

func (p *PayloadBuilder) grow(end int) {
	if end > len(p.bits) {
		p.bits = append(p.bits, make([]byte, end-len(p.bits))...)
	}
}

// SetUint writes the low length bits of v at start, MSB first
func (p *PayloadBuilder) SetUint(start, length int, v uint64) *PayloadBuilder {
	p.grow(start + length)
	for i := 0; i < length; i++ {
		p.bits[start+i] = byte(v>>(length-1-i)) & 1
	}
	return p
}

// SetInt writes v as a length-bit two's complement integer at start
func (p *PayloadBuilder) SetInt(start, length int, v int64) *PayloadBuilder {
	return p.SetUint(start, length, uint64(v))
}

// SetText writes s as six-bit characters at start, padding with '@'
func (p *PayloadBuilder) SetText(start, length int, s string) *PayloadBuilder {
	s = strings.ToUpper(s)
	for i := 0; i < length/6; i++ {
		var c byte
		if i < len(s) {
			c = sixBit(s[i])
		}
		p.SetUint(start+i*6, 6, uint64(c))
	}
	return p
}

func sixBit(c byte) byte {
	switch {
	case c >= 64 && c < 96:
		return c - 64
	case c >= 32 && c < 64:
		return c
	default:
		return 0
	}
}

// Len returns the number of bits written so far
func (p *PayloadBuilder) Len() int {
	return len(p.bits)
}

// Armor returns the armored payload and the number of fill bits
func (p *PayloadBuilder) Armor() (string, int) {
	fill := (6 - len(p.bits)%6) % 6
	padded := append(append([]byte(nil), p.bits...), make([]byte, fill)...)

	var sb strings.Builder
	for i := 0; i < len(padded); i += 6 {
		var v byte
		for j := 0; j < 6; j++ {
			v = v<<1 | padded[i+j]
		}
		if v < 40 {
			sb.WriteByte(v + 48)
		} else {
			sb.WriteByte(v + 56)
		}
	}
	return sb.String(), fill
}

// Sentence wraps the armored payload in a single-fragment !AIVDM sentence
func (p *PayloadBuilder) Sentence() string {
	payload, fill := p.Armor()
	return WrapPayload(payload, fill)
}

// WrapPayload builds a !AIVDM sentence with a valid checksum
func WrapPayload(payload string, fill int) string {
	body := fmt.Sprintf("AIVDM,1,1,,A,%s,%d", payload, fill)
	return fmt.Sprintf("!%s*%s", body, nmea.Checksum(body))
}

// WrapFragment wraps one fragment of a multi-sentence message on channel A
func WrapFragment(count, number int, seqID, payload string, fill int) string {
	body := fmt.Sprintf("AIVDM,%d,%d,%s,A,%s,%d", count, number, seqID, payload, fill)
	return fmt.Sprintf("!%s*%s", body, nmea.Checksum(body))
}

// FragmentPayload splits an armored payload into sentences carrying at most
// 60 characters each. Only the last sentence carries the fill bits.
func FragmentPayload(payload string, fill int, seqID string) []string {
	const maxChars = 60
	count := (len(payload) + maxChars - 1) / maxChars
	sentences := make([]string, 0, count)
	for i := 0; i < count; i++ {
		end := (i + 1) * maxChars
		if end > len(payload) {
			end = len(payload)
		}
		partFill := 0
		if i == count-1 {
			partFill = fill
		}
		sentences = append(sentences, WrapFragment(count, i+1, seqID, payload[i*maxChars:end], partFill))
	}
	return sentences
}

// PositionReport describes a position message for the sentence helpers
type PositionReport struct {
	MsgType int
	MMSI    uint32
	Lat     float64
	Lon     float64
	Speed   float64
	Course  float64
	Heading int
}

// PositionSentence builds a Class A (1/2/3) or Class B (18) position report
func PositionSentence(r PositionReport) string {
	p := NewPayloadBuilder(168)
	p.SetUint(0, 6, uint64(r.MsgType))
	p.SetUint(8, 30, uint64(r.MMSI))

	speed := uint64(math.Round(r.Speed * 10))
	course := uint64(math.Round(r.Course * 10))
	lon := int64(math.Round(r.Lon * 600000))
	lat := int64(math.Round(r.Lat * 600000))

	if r.MsgType == 18 || r.MsgType == 19 {
		p.SetUint(46, 10, speed)
		p.SetInt(57, 28, lon)
		p.SetInt(85, 27, lat)
		p.SetUint(112, 12, course)
		p.SetUint(124, 9, uint64(r.Heading))
		p.SetUint(133, 6, 60)
	} else {
		p.SetInt(42, 8, -128)
		p.SetUint(50, 10, speed)
		p.SetInt(61, 28, lon)
		p.SetInt(89, 27, lat)
		p.SetUint(116, 12, course)
		p.SetUint(128, 9, uint64(r.Heading))
		p.SetUint(137, 6, 60)
	}
	return p.Sentence()
}

// StaticVoyageSentence builds a type 5 report with the given identity
func StaticVoyageSentence(mmsi uint32, name, callSign, destination string, vesselType uint8) string {
	return staticVoyagePayload(mmsi, name, callSign, destination, vesselType).Sentence()
}

// StaticVoyageFragments builds a type 5 report split over two sentences the
// way receivers transmit it
func StaticVoyageFragments(mmsi uint32, name, callSign, destination string, vesselType uint8, seqID string) []string {
	payload, fill := staticVoyagePayload(mmsi, name, callSign, destination, vesselType).Armor()
	return FragmentPayload(payload, fill, seqID)
}

func staticVoyagePayload(mmsi uint32, name, callSign, destination string, vesselType uint8) *PayloadBuilder {
	p := NewPayloadBuilder(424)
	p.SetUint(0, 6, 5)
	p.SetUint(8, 30, uint64(mmsi))
	p.SetText(70, 42, callSign)
	p.SetText(112, 120, name)
	p.SetUint(232, 8, uint64(vesselType))
	p.SetText(302, 120, destination)
	return p
}

// StaticPartASentence builds a type 24 part A report
func StaticPartASentence(mmsi uint32, name string) string {
	p := NewPayloadBuilder(168)
	p.SetUint(0, 6, 24)
	p.SetUint(8, 30, uint64(mmsi))
	p.SetUint(38, 2, 0)
	p.SetText(40, 120, name)
	return p.Sentence()
}

// StaticPartBSentence builds a type 24 part B report
func StaticPartBSentence(mmsi uint32, vesselType uint8, callSign string, bow, stern, port, starboard int) string {
	p := NewPayloadBuilder(168)
	p.SetUint(0, 6, 24)
	p.SetUint(8, 30, uint64(mmsi))
	p.SetUint(38, 2, 1)
	p.SetUint(40, 8, uint64(vesselType))
	p.SetText(90, 42, callSign)
	p.SetUint(132, 9, uint64(bow))
	p.SetUint(141, 9, uint64(stern))
	p.SetUint(150, 6, uint64(port))
	p.SetUint(156, 6, uint64(starboard))
	return p.Sentence()
}

// WaitForCondition waits for a condition to be true with timeout
func WaitForCondition(condition func() bool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for condition")
		case <-ticker.C:
			if condition() {
				return nil
			}
		}
	}
}
