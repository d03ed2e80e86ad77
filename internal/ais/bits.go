package ais

// Bits is a packed, MSB-first bit buffer holding a dearmored payload.
// Reads past the end of the buffer yield zero bits, so truncated messages
// decode with zeroed trailing fields instead of failing.
type Bits struct {
	buf []byte
	n   int
}

// NewBits wraps an already packed buffer of n bits.
func NewBits(buf []byte, n int) *Bits {
	if n < 0 {
		n = 0
	}
	if n > len(buf)*8 {
		n = len(buf) * 8
	}
	return &Bits{buf: buf, n: n}
}

// Len returns the number of valid bits in the buffer.
func (b *Bits) Len() int {
	return b.n
}

// bit returns the bit at index i, or 0 outside [0, Len).
func (b *Bits) bit(i int) uint64 {
	if i < 0 || i >= b.n {
		return 0
	}
	return uint64(b.buf[i>>3]>>(7-uint(i&7))) & 1
}

// Unsigned reads length bits starting at start as a big-endian unsigned
// integer. A length above 64 keeps the low-order 64 bits.
func (b *Bits) Unsigned(start, length int) uint64 {
	if length <= 0 {
		return 0
	}
	if length > 64 {
		start += length - 64
		length = 64
	}

	var v uint64
	for i := 0; i < length; i++ {
		v = v<<1 | b.bit(start+i)
	}
	return v
}

// Signed reads length bits starting at start as a two's complement integer.
func (b *Bits) Signed(start, length int) int64 {
	if length <= 0 {
		return 0
	}
	if length > 64 {
		start += length - 64
		length = 64
	}

	v := b.Unsigned(start, length)
	if length < 64 && v&(1<<(length-1)) != 0 {
		v |= ^uint64(0) << length
	}
	return int64(v)
}

// Flag reads a single bit as a boolean.
func (b *Bits) Flag(i int) bool {
	return b.bit(i) == 1
}

// Text reads length bits starting at start as six-bit AIS characters.
// Decoding stops at the first NUL character. Trailing padding is left for
// the caller to trim with TrimText.
func (b *Bits) Text(start, length int) string {
	chars := length / 6
	if chars <= 0 {
		return ""
	}

	out := make([]byte, 0, chars)
	for i := 0; i < chars; i++ {
		c := byte(b.Unsigned(start+i*6, 6))
		if c == 0 {
			break
		}
		if c < 32 {
			c += 64
		}
		out = append(out, c)
	}
	return string(out)
}
