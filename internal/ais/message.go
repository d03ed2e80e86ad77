package ais

import "time"

// MessageType is the six-bit AIS message identifier.
type MessageType uint8

// Message types with dedicated decoders
const (
	MsgTypePositionReportScheduled      MessageType = 1
	MsgTypePositionReportAssigned       MessageType = 2
	MsgTypePositionReportResponse       MessageType = 3
	MsgTypeStaticVoyageData             MessageType = 5
	MsgTypeClassBPositionReport         MessageType = 18
	MsgTypeExtendedClassBPositionReport MessageType = 19
	MsgTypeStaticDataReport             MessageType = 24
)

// PositionClass distinguishes Class A from Class B transponders.
type PositionClass string

// Transponder classes
const (
	ClassA PositionClass = "A"
	ClassB PositionClass = "B"
)

// Message is one decoded AIS message. Type and MMSI are always set; at most
// one of the per-type groups is populated, depending on Type.
type Message struct {
	Type       MessageType       `json:"messageType"`
	MMSI       uint32            `json:"mmsi"`
	Position   *PositionReport   `json:"position,omitempty"`
	Voyage     *StaticVoyageData `json:"voyage,omitempty"`
	StaticData *StaticDataReport `json:"staticData,omitempty"`
}

// Supported reports whether Type has a dedicated decoder.
func (m *Message) Supported() bool {
	switch m.Type {
	case MsgTypePositionReportScheduled, MsgTypePositionReportAssigned, MsgTypePositionReportResponse,
		MsgTypeStaticVoyageData, MsgTypeClassBPositionReport, MsgTypeExtendedClassBPositionReport,
		MsgTypeStaticDataReport:
		return true
	}
	return false
}

// PositionReport holds the dynamic fields of message types 1, 2, 3, 18 and 19.
// Class B reports leave NavigationStatus, RateOfTurn and ManeuverIndicator unset.
type PositionReport struct {
	Class             PositionClass     `json:"class"`
	NavigationStatus  *NavigationStatus `json:"navigationStatus,omitempty"`
	RateOfTurn        *float64          `json:"rateOfTurn,omitempty"`
	Speed             *float64          `json:"speed,omitempty"`
	PositionAccuracy  bool              `json:"positionAccuracy"`
	Longitude         *float64          `json:"longitude,omitempty"`
	Latitude          *float64          `json:"latitude,omitempty"`
	Course            *float64          `json:"course,omitempty"`
	Heading           *uint16           `json:"heading,omitempty"`
	TimestampSeconds  *uint8            `json:"timestampSeconds,omitempty"`
	ManeuverIndicator *uint8            `json:"maneuverIndicator,omitempty"`
	RAIM              bool              `json:"raimFlag"`
}

// HasPosition reports whether both coordinates are available.
func (p *PositionReport) HasPosition() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// Dimensions are the distances from the position reference point to the hull.
type Dimensions struct {
	ToBow       uint16 `json:"dimensionToBow"`
	ToStern     uint16 `json:"dimensionToStern"`
	ToPort      uint8  `json:"dimensionToPort"`
	ToStarboard uint8  `json:"dimensionToStarboard"`
}

// Length returns the overall length in metres.
func (d Dimensions) Length() int {
	return int(d.ToBow) + int(d.ToStern)
}

// Beam returns the overall width in metres.
func (d Dimensions) Beam() int {
	return int(d.ToPort) + int(d.ToStarboard)
}

// StaticVoyageData holds the fields of message type 5.
type StaticVoyageData struct {
	IMONumber   *uint32    `json:"imoNumber,omitempty"`
	CallSign    string     `json:"callSign"`
	VesselName  string     `json:"vesselName"`
	VesselType  uint8      `json:"vesselType"`
	Dimensions  Dimensions `json:"dimensions"`
	Draught     *float64   `json:"draught,omitempty"`
	Destination string     `json:"destination"`
	ETA         *time.Time `json:"eta,omitempty"`
}

// StaticDataReport holds one part of message type 24. Part A (0) carries
// the vessel name, part B (1) the type, call sign and dimensions.
type StaticDataReport struct {
	PartNumber uint8       `json:"partNumber"`
	VesselName string      `json:"vesselName,omitempty"`
	CallSign   string      `json:"callSign,omitempty"`
	VesselType *uint8      `json:"vesselType,omitempty"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
}

// Static data report parts
const (
	StaticPartA uint8 = 0
	StaticPartB uint8 = 1
)
