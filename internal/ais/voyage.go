package ais

import "time"

func decodeStaticVoyage(b *Bits, now time.Time) *StaticVoyageData {
	return &StaticVoyageData{
		IMONumber:   imoNumber(b, 40),
		CallSign:    text(b, 70, 42),
		VesselName:  text(b, 112, 120),
		VesselType:  uint8(b.Unsigned(232, 8)),
		Dimensions:  dimensions(b, 240),
		ETA:         eta(b, 274, now),
		Draught:     draught(b, 294),
		Destination: text(b, 302, 120),
	}
}
