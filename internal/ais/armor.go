package ais

import "fmt"

// armorValue maps an armored payload character to its six-bit value.
func armorValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= 'W':
		return c - '0', true
	case c >= '`' && c <= 'w':
		return c - '8', true
	default:
		return 0, false
	}
}

// Dearmor converts an armored payload into a packed bit buffer.
func Dearmor(payload string) (*Bits, error) {
	return DearmorFill(payload, 0)
}

// DearmorFill converts an armored payload into a packed bit buffer and drops
// fillBits trailing pad bits from its logical length.
func DearmorFill(payload string, fillBits int) (*Bits, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}

	n := len(payload) * 6
	buf := make([]byte, (n+7)/8)
	for i := 0; i < len(payload); i++ {
		v, ok := armorValue(payload[i])
		if !ok {
			return nil, fmt.Errorf("%w %q at offset %d", ErrInvalidArmor, payload[i], i)
		}

		// Place the six bits MSB-first at bit offset i*6
		for j := 0; j < 6; j++ {
			if v&(1<<(5-j)) == 0 {
				continue
			}
			pos := i*6 + j
			buf[pos>>3] |= 1 << (7 - uint(pos&7))
		}
	}

	if fillBits > 0 && fillBits <= 5 && fillBits < n {
		n -= fillBits
	}
	return NewBits(buf, n), nil
}
