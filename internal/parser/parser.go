package parser

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bbailey1024/geohash"

	"github.com/saviobatista/ais-logger/internal/ais"
	"github.com/saviobatista/ais-logger/internal/assembler"
	"github.com/saviobatista/ais-logger/internal/types"
)

// Result holds the tracker view of one decoded sentence. Exactly one of
// State, Vessel and Part is set.
type Result struct {
	Message *ais.Message
	State   *types.VesselState
	Vessel  *types.Vessel
	Part    *types.StaticPart
}

// Parser turns raw sentences into tracker records. Multipart messages are
// joined before decoding.
type Parser struct {
	decoder   *ais.Decoder
	fragments *assembler.Fragments
}

// New creates a parser that resolves ETAs against the wall clock
func New() *Parser {
	return NewWithDecoder(ais.NewDecoder())
}

// NewWithDecoder creates a parser around an existing decoder
func NewWithDecoder(decoder *ais.Decoder) *Parser {
	return &Parser{
		decoder:   decoder,
		fragments: assembler.NewFragments(assembler.DefaultFragmentTTL),
	}
}

var defaultParser = New()

// ParseMessage parses a raw AIS sentence with the default parser
func ParseMessage(raw string, timestamp time.Time) (*Result, error) {
	return defaultParser.ParseMessage(raw, timestamp)
}

// ParseMessage parses a raw AIS sentence into a tracker record. Sentences
// that carry nothing the tracker keeps return a nil result and no error.
func (p *Parser) ParseMessage(raw string, timestamp time.Time) (*Result, error) {
	return p.ParseFrom("", raw, timestamp)
}

// ParseFrom parses a raw sentence heard by source. Fragments of a multipart
// message return a nil result until the last one arrives; continuation
// fragments whose start was never seen are dropped the same way.
func (p *Parser) ParseFrom(source, raw string, timestamp time.Time) (*Result, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "!") {
		return nil, fmt.Errorf("invalid message format: not an encapsulated sentence")
	}

	env, err := ais.ParseEnvelope(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse envelope: %w", err)
	}

	env, err = p.fragments.Add(source, env)
	if errors.Is(err, assembler.ErrOrphanFragment) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if env == nil {
		return nil, nil
	}

	msg, err := p.decoder.DecodePayload(env.Payload, env.FillBits)
	if err != nil {
		return nil, err
	}

	result := &Result{Message: msg}
	switch {
	case msg.Position != nil:
		result.State = NewVesselState(msg, timestamp)
	case msg.Voyage != nil:
		result.Vessel = NewVessel(msg, timestamp)
	case msg.StaticData != nil:
		if msg.StaticData.PartNumber > ais.StaticPartB {
			return nil, nil
		}
		result.Part = NewStaticPart(msg, timestamp)
	default:
		return nil, nil
	}

	return result, nil
}

// NewVesselState flattens a position report into a vessel state
func NewVesselState(msg *ais.Message, timestamp time.Time) *types.VesselState {
	pos := msg.Position
	state := &types.VesselState{
		MMSI:             msg.MMSI,
		Class:            string(pos.Class),
		RateOfTurn:       pos.RateOfTurn,
		Speed:            pos.Speed,
		Course:           pos.Course,
		Heading:          pos.Heading,
		PositionAccuracy: pos.PositionAccuracy,
		MsgType:          int(msg.Type),
		Timestamp:        timestamp,
	}

	if pos.NavigationStatus != nil {
		status := uint8(*pos.NavigationStatus)
		state.NavigationStatus = &status
	}

	if pos.HasPosition() {
		state.Latitude = pos.Latitude
		state.Longitude = pos.Longitude
		state.Geohash = geohash.EncodeInt(*pos.Latitude, *pos.Longitude)
	}

	return state
}

// NewVessel builds a vessel profile from a type 5 report
func NewVessel(msg *ais.Message, timestamp time.Time) *types.Vessel {
	v := msg.Voyage
	vesselType := v.VesselType
	return &types.Vessel{
		MMSI:        msg.MMSI,
		IMONumber:   v.IMONumber,
		Name:        v.VesselName,
		CallSign:    v.CallSign,
		VesselType:  &vesselType,
		ToBow:       int(v.Dimensions.ToBow),
		ToStern:     int(v.Dimensions.ToStern),
		ToPort:      int(v.Dimensions.ToPort),
		ToStarboard: int(v.Dimensions.ToStarboard),
		Draught:     v.Draught,
		Destination: v.Destination,
		ETA:         v.ETA,
		SourceType:  int(msg.Type),
		UpdatedAt:   timestamp,
	}
}

// NewStaticPart converts a type 24 report into a part awaiting its sibling
func NewStaticPart(msg *ais.Message, timestamp time.Time) *types.StaticPart {
	sd := msg.StaticData
	part := &types.StaticPart{
		MMSI:       msg.MMSI,
		PartNumber: sd.PartNumber,
		Name:       sd.VesselName,
		CallSign:   sd.CallSign,
		VesselType: sd.VesselType,
		ReceivedAt: timestamp,
	}

	if sd.Dimensions != nil {
		part.ToBow = int(sd.Dimensions.ToBow)
		part.ToStern = int(sd.Dimensions.ToStern)
		part.ToPort = int(sd.Dimensions.ToPort)
		part.ToStarboard = int(sd.Dimensions.ToStarboard)
	}

	return part
}
