package types

import (
	"time"
)

// AISMessage represents a raw NMEA sentence as captured from a receiver
type AISMessage struct {
	Raw       string    `json:"raw"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

// VesselState represents the latest dynamic state of a vessel
type VesselState struct {
	MMSI             uint32    `json:"mmsi"`
	Class            string    `json:"class"`
	NavigationStatus *uint8    `json:"navigation_status,omitempty"`
	RateOfTurn       *float64  `json:"rate_of_turn,omitempty"`
	Speed            *float64  `json:"speed,omitempty"`
	Course           *float64  `json:"course,omitempty"`
	Heading          *uint16   `json:"heading,omitempty"`
	Latitude         *float64  `json:"latitude,omitempty"`
	Longitude        *float64  `json:"longitude,omitempty"`
	Geohash          uint64    `json:"geohash,omitempty"`
	PositionAccuracy bool      `json:"position_accuracy"`
	MsgType          int       `json:"msg_type"`
	Timestamp        time.Time `json:"timestamp"`
	VoyageID         string    `json:"voyage_id"`
}

// HasPosition reports whether the state carries both coordinates
func (s *VesselState) HasPosition() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// Merge combines s with another report of the same vessel into a new state.
// The more recent of the two wins; the older one only fills absent fields,
// so a report arriving late never rolls the state back.
func (s *VesselState) Merge(other *VesselState) *VesselState {
	base, older := other, s
	if other.Timestamp.Before(s.Timestamp) {
		base, older = s, other
	}

	merged := *base
	if merged.Class == "" {
		merged.Class = older.Class
	}
	if merged.NavigationStatus == nil {
		merged.NavigationStatus = older.NavigationStatus
	}
	if merged.RateOfTurn == nil {
		merged.RateOfTurn = older.RateOfTurn
	}
	if merged.Speed == nil {
		merged.Speed = older.Speed
	}
	if merged.Course == nil {
		merged.Course = older.Course
	}
	if merged.Heading == nil {
		merged.Heading = older.Heading
	}
	if !merged.HasPosition() {
		merged.Latitude = older.Latitude
		merged.Longitude = older.Longitude
		merged.Geohash = older.Geohash
	}
	if merged.VoyageID == "" {
		merged.VoyageID = older.VoyageID
	}
	return &merged
}

// Vessel represents the static profile of a vessel
type Vessel struct {
	MMSI        uint32     `json:"mmsi"`
	IMONumber   *uint32    `json:"imo_number,omitempty"`
	Name        string     `json:"name"`
	CallSign    string     `json:"call_sign"`
	VesselType  *uint8     `json:"vessel_type,omitempty"`
	ToBow       int        `json:"to_bow"`
	ToStern     int        `json:"to_stern"`
	ToPort      int        `json:"to_port"`
	ToStarboard int        `json:"to_starboard"`
	Draught     *float64   `json:"draught,omitempty"`
	Destination string     `json:"destination"`
	ETA         *time.Time `json:"eta,omitempty"`
	SourceType  int        `json:"source_type"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Length returns the overall length in metres
func (v *Vessel) Length() int {
	return v.ToBow + v.ToStern
}

// Merge overlays the non-empty fields of newer onto a copy of v
func (v *Vessel) Merge(newer *Vessel) *Vessel {
	merged := *v
	merged.MMSI = newer.MMSI
	if newer.IMONumber != nil {
		merged.IMONumber = newer.IMONumber
	}
	if newer.Name != "" {
		merged.Name = newer.Name
	}
	if newer.CallSign != "" {
		merged.CallSign = newer.CallSign
	}
	if newer.VesselType != nil {
		merged.VesselType = newer.VesselType
	}
	if newer.Length() > 0 || newer.ToPort+newer.ToStarboard > 0 {
		merged.ToBow = newer.ToBow
		merged.ToStern = newer.ToStern
		merged.ToPort = newer.ToPort
		merged.ToStarboard = newer.ToStarboard
	}
	if newer.Draught != nil {
		merged.Draught = newer.Draught
	}
	if newer.Destination != "" {
		merged.Destination = newer.Destination
	}
	if newer.ETA != nil {
		merged.ETA = newer.ETA
	}
	merged.SourceType = newer.SourceType
	merged.UpdatedAt = newer.UpdatedAt
	return &merged
}

// Voyage represents a continuous tracking session of one vessel
type Voyage struct {
	VoyageID       string    `json:"voyage_id"`
	MMSI           uint32    `json:"mmsi"`
	Name           string    `json:"name"`
	StartedAt      time.Time `json:"started_at"`
	LastSeenAt     time.Time `json:"last_seen_at"`
	EndedAt        time.Time `json:"ended_at"`
	FirstLatitude  float64   `json:"first_latitude"`
	FirstLongitude float64   `json:"first_longitude"`
	LastLatitude   float64   `json:"last_latitude"`
	LastLongitude  float64   `json:"last_longitude"`
	MaxSpeed       float64   `json:"max_speed"`
	PositionCount  int       `json:"position_count"`
}

// StaticPart represents one half of a type 24 static data report
type StaticPart struct {
	MMSI        uint32    `json:"mmsi"`
	PartNumber  uint8     `json:"part_number"`
	Name        string    `json:"name,omitempty"`
	CallSign    string    `json:"call_sign,omitempty"`
	VesselType  *uint8    `json:"vessel_type,omitempty"`
	ToBow       int       `json:"to_bow"`
	ToStern     int       `json:"to_stern"`
	ToPort      int       `json:"to_port"`
	ToStarboard int       `json:"to_starboard"`
	ReceivedAt  time.Time `json:"received_at"`
}
