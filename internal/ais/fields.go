package ais

import (
	"math"
	"strings"
	"time"
)

// Raw values meaning "not available". Longitude and latitude use 181 and 91
// degrees; rate of turn is 0x80 read as a signed byte.
const (
	rateOfTurnNotAvailable = -128
	speedNotAvailable      = 1023
	longitudeNotAvailable  = 0x6791AC0
	latitudeNotAvailable   = 0x3412140
	courseNotAvailable     = 3600
	headingNotAvailable    = 511
	timestampNotAvailable  = 60
	imoNotAvailable        = 0
	draughtNotAvailable    = 0
	etaMonthNotAvailable   = 0
	etaDayNotAvailable     = 0
)

const (
	rateOfTurnScale = 4.733
	coordinateScale = 600000.0
	tenthScale      = 10.0
)

func rateOfTurn(b *Bits, start int) *float64 {
	raw := b.Signed(start, 8)
	if raw == rateOfTurnNotAvailable {
		return nil
	}
	v := math.Pow(float64(raw)/rateOfTurnScale, 2)
	if raw < 0 {
		v = -v
	}
	return &v
}

func speedOverGround(b *Bits, start int) *float64 {
	raw := b.Unsigned(start, 10)
	if raw == speedNotAvailable {
		return nil
	}
	v := float64(raw) / tenthScale
	return &v
}

func longitude(b *Bits, start int) *float64 {
	raw := b.Signed(start, 28)
	if raw == longitudeNotAvailable {
		return nil
	}
	v := float64(raw) / coordinateScale
	return &v
}

func latitude(b *Bits, start int) *float64 {
	raw := b.Signed(start, 27)
	if raw == latitudeNotAvailable {
		return nil
	}
	v := float64(raw) / coordinateScale
	return &v
}

func courseOverGround(b *Bits, start int) *float64 {
	raw := b.Unsigned(start, 12)
	if raw == courseNotAvailable {
		return nil
	}
	v := float64(raw) / tenthScale
	return &v
}

func trueHeading(b *Bits, start int) *uint16 {
	raw := b.Unsigned(start, 9)
	if raw == headingNotAvailable {
		return nil
	}
	v := uint16(raw)
	return &v
}

func timestampSeconds(b *Bits, start int) *uint8 {
	raw := b.Unsigned(start, 6)
	if raw == timestampNotAvailable {
		return nil
	}
	v := uint8(raw)
	return &v
}

func imoNumber(b *Bits, start int) *uint32 {
	raw := b.Unsigned(start, 30)
	if raw == imoNotAvailable {
		return nil
	}
	v := uint32(raw)
	return &v
}

func draught(b *Bits, start int) *float64 {
	raw := b.Unsigned(start, 8)
	if raw == draughtNotAvailable {
		return nil
	}
	v := float64(raw) / tenthScale
	return &v
}

// dimensions reads the 9/9/6/6 bit block shared by types 5 and 24B.
func dimensions(b *Bits, start int) Dimensions {
	return Dimensions{
		ToBow:       uint16(b.Unsigned(start, 9)),
		ToStern:     uint16(b.Unsigned(start+9, 9)),
		ToPort:      uint8(b.Unsigned(start+18, 6)),
		ToStarboard: uint8(b.Unsigned(start+24, 6)),
	}
}

// eta reads the month/day/hour/minute block and places it in the next
// occurrence relative to now. Out of range hours or minutes roll over the
// way time.Date normalizes them.
func eta(b *Bits, start int, now time.Time) *time.Time {
	month := int(b.Unsigned(start, 4))
	day := int(b.Unsigned(start+4, 5))
	hour := int(b.Unsigned(start+9, 5))
	minute := int(b.Unsigned(start+14, 6))
	if month == etaMonthNotAvailable || day == etaDayNotAvailable {
		return nil
	}

	now = now.UTC()
	t := time.Date(now.Year(), time.Month(month), day, hour, minute, 0, 0, time.UTC)
	if t.Before(now) {
		t = time.Date(now.Year()+1, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	}
	return &t
}

func text(b *Bits, start, length int) string {
	return TrimText(b.Text(start, length))
}

// TrimText removes trailing spaces and '@' padding from decoded text.
func TrimText(s string) string {
	return strings.TrimRight(s, " @")
}
