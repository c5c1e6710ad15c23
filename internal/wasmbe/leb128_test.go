package wasmbe

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLEB128Vectors(t *testing.T) {
	tests := []struct {
		name string
		got  []byte
		want []byte
	}{
		{"unsigned zero", EncodeUnsigned(0), []byte{0x00}},
		{"unsigned 127", EncodeUnsigned(127), []byte{0x7f}},
		{"unsigned 128", EncodeUnsigned(128), []byte{0x80, 0x01}},
		{"unsigned 624485", EncodeUnsigned(624485), []byte{0xe5, 0x8e, 0x26}},
		{"signed zero", EncodeSigned(0), []byte{0x00}},
		{"signed 63", EncodeSigned(63), []byte{0x3f}},
		{"signed 64", EncodeSigned(64), []byte{0xc0, 0x00}},
		{"signed 127", EncodeSigned(127), []byte{0xff, 0x00}},
		{"signed -1", EncodeSigned(-1), []byte{0x7f}},
		{"signed -64", EncodeSigned(-64), []byte{0x40}},
		{"signed -65", EncodeSigned(-65), []byte{0xbf, 0x7f}},
		{"signed -128", EncodeSigned(-128), []byte{0x80, 0x7f}},
		{"signed -624485", EncodeSigned(-624485), []byte{0x9b, 0xf1, 0x59}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestLEB128RoundTrip(t *testing.T) {
	unsigned := []uint64{0, 1, 63, 64, 127, 128, 255, 300, 16383, 16384, 624485, math.MaxUint32, math.MaxInt64, math.MaxUint64}
	for _, v := range unsigned {
		enc := EncodeUnsigned(v)
		got, n, err := DecodeUnsigned(enc)
		require.NoError(t, err, "unsigned %d", v)
		assert.Equal(t, v, got)
		assert.Equal(t, len(enc), n)
	}

	signed := []int64{0, 1, -1, 63, 64, -64, -65, 127, -128, 8191, -8192, 624485, -624485,
		math.MaxInt32, math.MinInt32, math.MaxInt64, math.MinInt64}
	for _, v := range signed {
		enc := EncodeSigned(v)
		got, n, err := DecodeSigned(enc)
		require.NoError(t, err, "signed %d", v)
		assert.Equal(t, v, got)
		assert.Equal(t, len(enc), n)
	}
}

func TestLEB128DecodeStopsAtValue(t *testing.T) {
	v, n, err := DecodeUnsigned([]byte{0xe5, 0x8e, 0x26, 0xff})
	require.NoError(t, err)
	assert.Equal(t, uint64(624485), v)
	assert.Equal(t, 3, n)
}

func TestLEB128DecodeErrors(t *testing.T) {
	_, _, err := DecodeUnsigned([]byte{0x80, 0x80})
	assert.ErrorIs(t, err, ErrTruncated)

	_, _, err = DecodeSigned(nil)
	assert.ErrorIs(t, err, ErrTruncated)

	tooLong := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}
	_, _, err = DecodeUnsigned(tooLong)
	assert.ErrorIs(t, err, ErrOverflow)
	_, _, err = DecodeSigned(tooLong)
	assert.ErrorIs(t, err, ErrOverflow)
}
