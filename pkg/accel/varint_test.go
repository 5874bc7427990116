package accel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavesplatform/goaccel/pkg/types"
)

func TestZigZag(t *testing.T) {
	for _, test := range []struct {
		v VInt
		u VUInt
	}{
		{0, 0},
		{-1, 1},
		{1, 2},
		{-2, 3},
		{math.MaxInt64, math.MaxUint64 - 1},
		{math.MinInt64, math.MaxUint64},
	} {
		assert.Equal(t, test.u, zig(test.v), "zig(%d)", test.v)
		assert.Equal(t, test.v, zag(test.u), "zag(%d)", test.u)
	}
}

func TestVarUintLen(t *testing.T) {
	for _, test := range []struct {
		v    uint64
		want int
	}{
		{0, 1},
		{0xff, 1},
		{0x100, 2},
		{0xffffff, 3},
		{1 << 32, 5},
		{math.MaxUint64, 8},
	} {
		assert.Equal(t, test.want, varUintLen(test.v), "v=%x", test.v)
	}
}

func TestUvarint32(t *testing.T) {
	for _, v := range []uint32{0, 1, 0x7f, 0x80, 0x3fff, 0x4000, math.MaxUint32} {
		b := appendUvarint32(nil, v)
		assert.LessOrEqual(t, len(b), maxVarint32Len)
		got, n, err := uvarint32(append(b, 0xaa))
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Equal(t, len(b), n)
	}
	_, _, err := uvarint32([]byte{0xff, 0xff, 0xff, 0xff, 0x1f})
	assert.Error(t, err)
	_, _, err = uvarint32(nil)
	assert.Error(t, err)
}

func TestObjectType(t *testing.T) {
	for _, test := range []struct {
		n    int
		want ObjectType
	}{
		{0, LengthPrefixed},
		{1, Fixed8},
		{8, Fixed64},
		{13, Fixed104},
		{14, LengthPrefixed},
		{16, Fixed128},
		{17, LengthPrefixed},
	} {
		assert.Equal(t, test.want, objectTypeByLength(test.n), "n=%d", test.n)
	}
	n, ok := Fixed128.FixedSize()
	assert.True(t, ok)
	assert.Equal(t, 16, n)
	_, ok = LengthPrefixed.FixedSize()
	assert.False(t, ok)
	_, ok = Missing.FixedSize()
	assert.False(t, ok)
	assert.Equal(t, "Fixed24", Fixed24.String())
	assert.Equal(t, "ObjectType(16)", ObjectType(16).String())
}

func TestHeader(t *testing.T) {
	for _, enc := range []Encoding{UTF8, Unicode, ASCII} {
		for _, end := range []Endian{BigEndian, LittleEndian} {
			gotEnc, gotEnd, err := parseHeader(header(enc, end))
			require.NoError(t, err)
			assert.Equal(t, enc, gotEnc)
			assert.Equal(t, end, gotEnd)
		}
	}
	assert.Equal(t, "Unicode", Unicode.String())
	assert.Equal(t, "LittleEndian", LittleEndian.String())
}

func TestFixedOf(t *testing.T) {
	assert.Equal(t, Fixed8, fixedOf[types.Boolean]())
	assert.Equal(t, Fixed8, fixedOf[types.Int8]())
	assert.Equal(t, Fixed16, fixedOf[types.UInt16]())
	assert.Equal(t, Fixed32, fixedOf[types.Int32]())
	assert.Equal(t, Fixed32, fixedOf[types.Float32]())
	assert.Equal(t, Fixed64, fixedOf[types.UInt64]())
}
