package accel

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavesplatform/goaccel/pkg/errs"
)

func TestReader_Iterates(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.WriteBool(1, true))
	require.NoError(t, w.WriteInt16(2, -300))
	require.NoError(t, w.WriteString(3, "0123456789abcd"))
	require.NoError(t, w.WriteVInt(20, -12345))
	require.NoError(t, w.WriteFloat64(21, 2.5))
	require.NoError(t, w.WriteChar(22, 'ж'))

	r := NewReader(w.Bytes())
	require.True(t, r.Next())
	assert.Equal(t, 1, r.Index())
	assert.Equal(t, Fixed8, r.Type())
	b, err := r.ReadBool()
	require.NoError(t, err)
	assert.True(t, b)

	require.True(t, r.Next())
	assert.Equal(t, Fixed16, r.Type())
	i16, err := r.ReadInt16()
	require.NoError(t, err)
	assert.EqualValues(t, -300, i16)

	require.True(t, r.Next())
	assert.Equal(t, LengthPrefixed, r.Type())
	s, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcd", s)

	require.True(t, r.Next())
	assert.Equal(t, 20, r.Index())
	v, err := r.ReadVInt()
	require.NoError(t, err)
	assert.EqualValues(t, -12345, v)

	require.True(t, r.Next())
	f, err := r.ReadFloat64()
	require.NoError(t, err)
	assert.Equal(t, 2.5, f)

	require.True(t, r.Next())
	c, err := r.ReadChar()
	require.NoError(t, err)
	assert.Equal(t, 'ж', c)
	assert.Zero(t, r.Remaining())

	assert.False(t, r.Next())
	assert.NoError(t, r.Err())
}

func TestReader_SkipsUnreadFields(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.WriteString(1, "skip me please, i am long"))
	require.NoError(t, w.WriteUInt32(2, 42))

	r := NewReader(w.Bytes())
	require.True(t, r.Next())
	require.NoError(t, r.Skip())
	require.True(t, r.Next())
	v, err := r.ReadUInt32()
	require.NoError(t, err)
	assert.EqualValues(t, 42, v)
}

func TestReader_BigEndianVUInt(t *testing.T) {
	r := NewReader([]byte{0x12, 0x01, 0x02}, WithEndian(BigEndian))
	require.True(t, r.Next())
	v, err := r.ReadVUInt()
	require.NoError(t, err)
	assert.EqualValues(t, 0x0102, v)
	assert.Equal(t, BigEndian, r.Endian())
}

func TestReader_Unicode(t *testing.T) {
	w := NewWriter(WithEncoding(Unicode), WithEndian(BigEndian))
	require.NoError(t, w.WriteString(1, "héllo"))
	r := NewReader(w.Bytes(), WithEncoding(Unicode), WithEndian(BigEndian))
	require.True(t, r.Next())
	s, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "héllo", s)
}

func TestReader_OddUnicodePayload(t *testing.T) {
	r := NewReader([]byte{0x13, 'a', 'b', 'c'}, WithEncoding(Unicode))
	require.True(t, r.Next())
	_, err := r.ReadString()
	assert.Error(t, err)
}

func TestReader_InvalidCast(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.WriteInt32(1, 7))
	r := NewReader(w.Bytes())
	require.True(t, r.Next())

	_, err := r.ReadInt64()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.InvalidCast{}))
	assert.Contains(t, err.Error(), "can not read object of type Fixed32 as int64")

	_, err = r.ReadInt16()
	assert.True(t, errors.Is(err, errs.InvalidCast{}))

	n, err := r.ReadInt32()
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)
}

func TestReader_VarIntRejectsWideTypes(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.WriteString(1, "0123456789"))
	r := NewReader(w.Bytes())
	require.True(t, r.Next())
	_, err := r.ReadVUInt()
	assert.True(t, errors.Is(err, errs.InvalidCast{}))
}

func TestReader_Malformed(t *testing.T) {
	for _, test := range []struct {
		name string
		body []byte
		is   error
	}{
		{"truncated fixed", []byte{0x14, 0x01, 0x02}, errs.StreamTooShort{}},
		{"truncated length prefixed", []byte{0x1f, 0x05, 'a'}, errs.StreamTooShort{}},
		{"zero index", []byte{0x01, 0x00}, errs.InvalidFieldIndex{}},
		{"missing type", []byte{0x10}, nil},
		{"unterminated tag", []byte{0x81}, nil},
		{"tag overflow", []byte{0x81, 0x80, 0x80, 0x80, 0x80, 0x01}, nil},
		{"unterminated length", []byte{0x1f, 0x80}, nil},
	} {
		t.Run(test.name, func(t *testing.T) {
			r := NewReader(test.body)
			assert.False(t, r.Next())
			require.Error(t, r.Err())
			if test.is != nil {
				assert.True(t, errors.Is(r.Err(), test.is), r.Err().Error())
			}
			assert.False(t, r.Next())
		})
	}
}

func TestReader_SkipUnknown(t *testing.T) {
	body := []byte{0x21, 0x01}

	r := NewReader(body)
	require.True(t, r.Next())
	assert.NoError(t, r.SkipUnknown("T"))

	strict := NewReader(body, WithStrict())
	require.True(t, strict.Next())
	err := strict.SkipUnknown("T")
	assert.True(t, errors.Is(err, errs.UnknownField{}))
	assert.EqualError(t, err, "unknown field index 2 for T")
}

func TestReader_ReadBytesCopies(t *testing.T) {
	body := []byte{0x12, 0x01, 0x02}
	r := NewReader(body)
	require.True(t, r.Next())
	b, err := r.ReadBytes()
	require.NoError(t, err)
	b[0] = 0xff
	assert.Equal(t, byte(0x01), body[1])
	assert.Equal(t, []byte{0x01, 0x02}, r.Payload())
}

func TestReader_Message(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.WriteMessage(4, &fixture{ID: -3, Name: "nested", Tags: []string{"x", ""}}))

	r := NewReader(w.Bytes())
	require.True(t, r.Next())
	var f fixture
	require.NoError(t, r.ReadMessage(&f))
	assert.Equal(t, fixture{ID: -3, Name: "nested", Tags: []string{"x", ""}}, f)
	assert.Error(t, r.ReadMessage(nil))
}

func TestReader_ReadValueNeedsPointer(t *testing.T) {
	r := NewReader([]byte{0x11, 0x01})
	require.True(t, r.Next())
	var v uint8
	assert.Error(t, r.ReadValue(v))
	require.NoError(t, r.ReadValue(&v))
	assert.EqualValues(t, 1, v)
}

func TestNewMessageReader(t *testing.T) {
	r, err := NewMessageReader([]byte{0x10, 0x22, 0x00, 0x41}, WithStrict())
	require.NoError(t, err)
	assert.Equal(t, Unicode, r.Encoding())
	assert.Equal(t, BigEndian, r.Endian())
	require.True(t, r.Next())
	assert.Equal(t, 2, r.Index())
	s, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "A", s)
	assert.Error(t, r.SkipUnknown("x"))

	_, err = NewMessageReader(nil)
	assert.True(t, errors.Is(err, &errs.StreamTooShort{}))
	_, err = NewMessageReader([]byte{0x31})
	assert.ErrorContains(t, err, "unknown encoding 3")
}
