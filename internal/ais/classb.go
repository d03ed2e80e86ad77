package ais

// Type 19 inserts its extra fields after bit 143, so its RAIM flag sits one
// bit earlier than the type 18 one.
const (
	classBRAIMBit         = 148
	extendedClassBRAIMBit = 147
)

func decodeClassB(b *Bits, typ MessageType) *PositionReport {
	raim := classBRAIMBit
	if typ == MsgTypeExtendedClassBPositionReport {
		raim = extendedClassBRAIMBit
	}

	return &PositionReport{
		Class:            ClassB,
		Speed:            speedOverGround(b, 46),
		PositionAccuracy: b.Flag(56),
		Longitude:        longitude(b, 57),
		Latitude:         latitude(b, 85),
		Course:           courseOverGround(b, 112),
		Heading:          trueHeading(b, 124),
		TimestampSeconds: timestampSeconds(b, 133),
		RAIM:             b.Flag(raim),
	}
}
