package wasmbe

import (
	"encoding/binary"
	"errors"
	"math"
)

var (
	// ErrTruncated is returned when input ends inside a LEB128 value.
	ErrTruncated = errors.New("leb128: truncated input")
	// ErrOverflow is returned when a LEB128 value does not fit 64 bits.
	ErrOverflow = errors.New("leb128: value overflows 64 bits")
)

// EncodeUnsigned encodes value as unsigned LEB128: the low 7 bits at a time,
// with the continuation bit set on every byte but the last. Zero encodes as
// a single zero byte.
func EncodeUnsigned(value uint64) []byte {
	if value == 0 {
		return []byte{0}
	}
	var result []byte
	for value > 0 {
		b := byte(value & 0x7F)
		value >>= 7
		if value > 0 {
			b |= 0x80
		}
		result = append(result, b)
	}
	return result
}

// EncodeSigned encodes value as signed LEB128. Encoding stops once the
// remaining bits are pure sign extension and the sign bit (0x40) of the last
// byte agrees with the sign of value; otherwise one more byte is written.
// That is why 127 takes two bytes: 0xff 0x00.
func EncodeSigned(value int64) []byte {
	var result []byte
	more := true
	for more {
		b := byte(value & 0x7F)
		value >>= 7
		if (value == 0 && b&0x40 == 0) || (value == -1 && b&0x40 != 0) {
			more = false
		} else {
			b |= 0x80
		}
		result = append(result, b)
	}
	return result
}

// DecodeUnsigned decodes an unsigned LEB128 value from the front of b and
// returns it with the number of bytes read.
func DecodeUnsigned(b []byte) (uint64, int, error) {
	var result uint64
	var shift uint
	for i, c := range b {
		if shift >= 64 || (shift == 63 && c > 1) {
			return 0, 0, ErrOverflow
		}
		result |= uint64(c&0x7F) << shift
		if c&0x80 == 0 {
			return result, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, ErrTruncated
}

// DecodeSigned decodes a signed LEB128 value from the front of b and returns
// it with the number of bytes read.
func DecodeSigned(b []byte) (int64, int, error) {
	var result int64
	var shift uint
	for i, c := range b {
		if shift >= 64 {
			return 0, 0, ErrOverflow
		}
		result |= int64(c&0x7F) << shift
		shift += 7
		if c&0x80 == 0 {
			if shift < 64 && c&0x40 != 0 {
				result |= -1 << shift
			}
			return result, i + 1, nil
		}
	}
	return 0, 0, ErrTruncated
}

// encodeF64 encodes a float64 as 8 bytes little-endian.
func encodeF64(value float64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(value))
	return buf[:]
}

// encodeName encodes a UTF-8 string with its length prefix.
func encodeName(s string) []byte {
	result := EncodeUnsigned(uint64(len(s)))
	result = append(result, []byte(s)...)
	return result
}

// encodeSection encodes a section with its ID and length prefix.
func encodeSection(id byte, contents []byte) []byte {
	result := []byte{id}
	result = append(result, EncodeUnsigned(uint64(len(contents)))...)
	result = append(result, contents...)
	return result
}

// encodeVector encodes a vector of items with a count prefix.
func encodeVector(count int, items []byte) []byte {
	result := EncodeUnsigned(uint64(count))
	result = append(result, items...)
	return result
}
