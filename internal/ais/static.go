package ais

func decodeStaticData(b *Bits) *StaticDataReport {
	report := &StaticDataReport{
		PartNumber: uint8(b.Unsigned(38, 2)),
	}

	switch report.PartNumber {
	case StaticPartA:
		report.VesselName = text(b, 40, 120)
	case StaticPartB:
		vesselType := uint8(b.Unsigned(40, 8))
		dims := dimensions(b, 132)
		report.VesselType = &vesselType
		report.CallSign = text(b, 90, 42)
		report.Dimensions = &dims
	}

	return report
}
