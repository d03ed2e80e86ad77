package ais

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saviobatista/ais-logger/internal/testutils"
)

func TestBits_Unsigned(t *testing.T) {
	b := NewBits([]byte{0xA5, 0x0F}, 16) // 1010 0101 0000 1111

	tests := []struct {
		name   string
		start  int
		length int
		want   uint64
	}{
		{"first nibble", 0, 4, 0xA},
		{"whole first byte", 0, 8, 0xA5},
		{"across byte boundary", 6, 4, 0x4},
		{"last bits", 12, 4, 0xF},
		{"zero length", 3, 0, 0},
		{"negative length", 3, -2, 0},
		{"reads past the end are zero", 12, 8, 0xF0},
		{"reads before the start are zero", -4, 8, 0x0A},
		{"entirely out of range", 100, 12, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Unsigned(tt.start, tt.length))
		})
	}
}

func TestBits_UnsignedWide(t *testing.T) {
	buf := []byte{0x01, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	b := NewBits(buf, 72)

	// 72 bits requested: only the low 64 are kept
	assert.Equal(t, ^uint64(0), b.Unsigned(0, 72))
	assert.Equal(t, uint64(0x01FFFFFFFFFFFFFF), b.Unsigned(0, 64))
}

func TestBits_Signed(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want int64
	}{
		{"minimum", []byte{0x80}, -128},
		{"maximum", []byte{0x7F}, 127},
		{"minus one", []byte{0xFF}, -1},
		{"zero", []byte{0x00}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBits(tt.buf, 8)
			assert.Equal(t, tt.want, b.Signed(0, 8))
		})
	}

	t.Run("27 bit latitude", func(t *testing.T) {
		p := testutils.NewPayloadBuilder(27).SetInt(0, 27, -29028980)
		payload, fill := p.Armor()
		b, err := DearmorFill(payload, fill)
		require.NoError(t, err)
		assert.Equal(t, int64(-29028980), b.Signed(0, 27))
	})

	t.Run("zero length", func(t *testing.T) {
		assert.Equal(t, int64(0), NewBits([]byte{0xFF}, 8).Signed(0, 0))
	})

	t.Run("full width", func(t *testing.T) {
		b := NewBits([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFE}, 64)
		assert.Equal(t, int64(-2), b.Signed(0, 64))
	})
}

func TestBits_Flag(t *testing.T) {
	b := NewBits([]byte{0x40}, 8)
	assert.False(t, b.Flag(0))
	assert.True(t, b.Flag(1))
	assert.False(t, b.Flag(8))
}

func TestNewBits_ClampsLength(t *testing.T) {
	assert.Equal(t, 8, NewBits([]byte{0xFF}, 20).Len())
	assert.Equal(t, 0, NewBits([]byte{0xFF}, -1).Len())
}

func TestBits_Text(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		length  int
		raw     []uint64
		want    string
		trimmed string
	}{
		{
			name:    "padding only",
			raw:     []uint64{0, 0, 0},
			want:    "",
			trimmed: "",
		},
		{
			name:    "NUL truncates",
			raw:     []uint64{1, 2, 0, 3},
			want:    "AB",
			trimmed: "AB",
		},
		{
			name:    "letters digits and punctuation",
			raw:     []uint64{8, 9, 32, 49, 50, 45, 26},
			want:    "HI 12-Z",
			trimmed: "HI 12-Z",
		},
		{
			name:    "trailing spaces are trimmed",
			raw:     []uint64{1, 32, 32},
			want:    "A  ",
			trimmed: "A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testutils.NewPayloadBuilder(0)
			for i, c := range tt.raw {
				p.SetUint(i*6, 6, c)
			}
			payload, fill := p.Armor()
			b, err := DearmorFill(payload, fill)
			require.NoError(t, err)

			got := b.Text(0, len(tt.raw)*6)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.trimmed, TrimText(got))
		})
	}
}

func TestTrimText(t *testing.T) {
	assert.Equal(t, "EVER GIVEN", TrimText("EVER GIVEN@@@@  @"))
	assert.Equal(t, "", TrimText("@@@"))
	assert.Equal(t, " A", TrimText(" A "))
}
