// Package ais decodes AIS messages carried in NMEA0183 !AIVDM sentences.
package ais

import (
	"fmt"
	"time"
)

// Decoder decodes AIS sentences. The zero value is not usable; use NewDecoder.
type Decoder struct {
	now func() time.Time
}

// NewDecoder creates a decoder that resolves ETAs against the wall clock.
func NewDecoder() *Decoder {
	return &Decoder{now: time.Now}
}

// NewDecoderWithClock creates a decoder that resolves ETAs against now.
func NewDecoderWithClock(now func() time.Time) *Decoder {
	return &Decoder{now: now}
}

var defaultDecoder = NewDecoder()

// Decode decodes a single-fragment !AIVDM sentence using the wall clock.
func Decode(sentence string) (*Message, error) {
	return defaultDecoder.Decode(sentence)
}

// DecodePayload decodes an armored payload using the wall clock.
func DecodePayload(payload string) (*Message, error) {
	return defaultDecoder.DecodePayload(payload, 0)
}

// Decode parses the envelope and decodes its payload.
func (d *Decoder) Decode(sentence string) (*Message, error) {
	env, err := ParseEnvelope(sentence)
	if err != nil {
		return nil, err
	}
	return d.DecodePayload(env.Payload, env.FillBits)
}

// DecodePayload dearmors payload and decodes the resulting bits.
func (d *Decoder) DecodePayload(payload string, fillBits int) (*Message, error) {
	bits, err := DearmorFill(payload, fillBits)
	if err != nil {
		return nil, fmt.Errorf("failed to dearmor payload: %w", err)
	}
	return d.DecodeBits(bits), nil
}

// DecodeBits dispatches on the message type. Types without a dedicated
// decoder return a message carrying only Type and MMSI.
func (d *Decoder) DecodeBits(b *Bits) *Message {
	msg := &Message{
		Type: MessageType(b.Unsigned(0, 6)),
		MMSI: uint32(b.Unsigned(8, 30)),
	}

	switch msg.Type {
	case MsgTypePositionReportScheduled, MsgTypePositionReportAssigned, MsgTypePositionReportResponse:
		msg.Position = decodeClassA(b)
	case MsgTypeStaticVoyageData:
		msg.Voyage = decodeStaticVoyage(b, d.now())
	case MsgTypeClassBPositionReport, MsgTypeExtendedClassBPositionReport:
		msg.Position = decodeClassB(b, msg.Type)
	case MsgTypeStaticDataReport:
		msg.StaticData = decodeStaticData(b)
	}

	return msg
}
