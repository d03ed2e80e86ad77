package ais

func decodeClassA(b *Bits) *PositionReport {
	status := NavigationStatus(b.Unsigned(38, 4))
	maneuver := uint8(b.Unsigned(143, 2))

	return &PositionReport{
		Class:             ClassA,
		NavigationStatus:  &status,
		RateOfTurn:        rateOfTurn(b, 42),
		Speed:             speedOverGround(b, 50),
		PositionAccuracy:  b.Flag(60),
		Longitude:         longitude(b, 61),
		Latitude:          latitude(b, 89),
		Course:            courseOverGround(b, 116),
		Heading:           trueHeading(b, 128),
		TimestampSeconds:  timestampSeconds(b, 137),
		ManeuverIndicator: &maneuver,
		RAIM:              b.Flag(148),
	}
}
