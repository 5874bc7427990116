package accel

import (
	"math/bits"

	"github.com/pkg/errors"
)

// maxVarint32Len is the longest LEB128 encoding of a uint32.
const maxVarint32Len = 5

// VInt is a signed integer written with zigzag encoding and only as many bytes as it needs.
type VInt int64

// VUInt is an unsigned integer written with only as many bytes as it needs.
type VUInt uint64

// Char is a single UTF-16 code unit.
type Char uint16

// Float128 is an opaque 128-bit value kept in little-endian byte order.
type Float128 [16]byte

func zig(v VInt) VUInt {
	return VUInt(uint64(v>>63) ^ uint64(v)<<1)
}

func zag(u VUInt) VInt {
	return VInt(int64(u>>1) ^ -int64(u&1))
}

// varUintLen returns the number of low-order bytes needed to hold v, at least one.
func varUintLen(v uint64) int {
	n := (bits.Len64(v) + 7) / 8
	if n == 0 {
		return 1
	}
	return n
}

func appendUvarint32(dst []byte, v uint32) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// uvarint32 decodes a LEB128 value from b, returning the value and the number of bytes consumed.
func uvarint32(b []byte) (uint32, int, error) {
	var v uint32
	for i := 0; i < len(b); i++ {
		if i == maxVarint32Len {
			return 0, 0, errors.New("varint overflows 32 bits")
		}
		c := b[i]
		if i == maxVarint32Len-1 && c > 0x0f {
			return 0, 0, errors.New("varint overflows 32 bits")
		}
		v |= uint32(c&0x7f) << (7 * i)
		if c < 0x80 {
			return v, i + 1, nil
		}
	}
	return 0, 0, errors.Errorf("unterminated varint after %d bytes", len(b))
}
