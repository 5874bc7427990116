package accel

import (
	"fmt"
	"math"
	"reflect"

	"github.com/ccoveille/go-safecast"
	"github.com/pkg/errors"

	"github.com/wavesplatform/goaccel/pkg/errs"
	"github.com/wavesplatform/goaccel/pkg/types"
)

// Unmarshaler is implemented by types that read their own fields.
type Unmarshaler interface {
	UnmarshalAccel(r *Reader) error
}

// Reader iterates over the fields of a message body.
//
//	for r.Next() {
//		switch r.Index() {
//		case 1:
//			v.Name, err = r.ReadString()
//		default:
//			err = r.SkipUnknown("T")
//		}
//	}
//	return r.Err()
//
// A Reader is not safe for concurrent use.
type Reader struct {
	buf      []byte
	pos      int
	encoding Encoding
	endian   Endian
	order    byteOrder
	strict   bool

	index   int
	typ     ObjectType
	payload []byte
	err     error
}

// NewReader creates a reader over a message body written with the given options.
func NewReader(body []byte, opts ...Option) *Reader {
	o := newOptions(opts)
	return newReader(body, o.encoding, o.endian, o.strict)
}

// NewMessageReader reads the header of a complete message and returns a reader over its body.
// Only the strict option applies, the header decides the encoding and byte order.
func NewMessageReader(data []byte, opts ...Option) (*Reader, error) {
	if len(data) == 0 {
		return nil, errs.Extend(errs.NewStreamTooShort(1, 0), "message header")
	}
	enc, end, err := parseHeader(data[0])
	if err != nil {
		return nil, err
	}
	o := newOptions(opts)
	return newReader(data[1:], enc, end, o.strict), nil
}

func newReader(body []byte, enc Encoding, end Endian, strict bool) *Reader {
	return &Reader{
		buf:      body,
		encoding: enc,
		endian:   end,
		order:    end.order(),
		strict:   strict,
	}
}

// Next advances to the next field. It returns false at the end of the body or on error.
func (r *Reader) Next() bool {
	if r.err != nil || r.pos >= len(r.buf) {
		r.index, r.typ, r.payload = 0, Missing, nil
		return false
	}
	t, n, err := uvarint32(r.buf[r.pos:])
	if err != nil {
		r.err = errors.Wrapf(err, "failed to read field tag at offset %d", r.pos)
		return false
	}
	r.pos += n
	r.index = int(t >> 4)
	r.typ = ObjectType(t & 0x0f)
	if r.index == 0 {
		r.err = errs.NewInvalidFieldIndex(0)
		return false
	}
	size, fixed := r.typ.FixedSize()
	switch {
	case fixed:
	case r.typ == LengthPrefixed:
		l, m, err := uvarint32(r.buf[r.pos:])
		if err != nil {
			r.err = errors.Wrapf(err, "failed to read length of field %d", r.index)
			return false
		}
		r.pos += m
		if size, err = safecast.ToInt(l); err != nil {
			r.err = errors.Wrapf(err, "invalid length of field %d", r.index)
			return false
		}
	default:
		r.err = errors.Errorf("field %d has object type %s", r.index, r.typ)
		return false
	}
	if rest := len(r.buf) - r.pos; size > rest {
		r.err = errs.Extend(errs.NewStreamTooShort(size, rest), fmt.Sprintf("field %d", r.index))
		return false
	}
	r.payload = r.buf[r.pos : r.pos+size]
	r.pos += size
	return true
}

// Index returns the index of the current field.
func (r *Reader) Index() int {
	return r.index
}

// Type returns the object type of the current field.
func (r *Reader) Type() ObjectType {
	return r.typ
}

// Payload returns the raw bytes of the current field.
func (r *Reader) Payload() []byte {
	return r.payload
}

// Err returns the first error met by Next.
func (r *Reader) Err() error {
	return r.err
}

// Remaining returns the number of unread bytes after the current field.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// Encoding returns the string encoding of the message.
func (r *Reader) Encoding() Encoding {
	return r.encoding
}

// Endian returns the byte order of the message.
func (r *Reader) Endian() Endian {
	return r.endian
}

// Skip ignores the current field.
func (r *Reader) Skip() error {
	return r.err
}

// SkipUnknown ignores a field the target type does not declare, strict readers fail instead.
func (r *Reader) SkipUnknown(typeName string) error {
	if r.strict {
		return errs.NewUnknownField(r.index, typeName)
	}
	return r.Skip()
}

func (r *Reader) fixed(t ObjectType, want string) ([]byte, error) {
	if r.typ != t {
		return nil, errs.Extend(errs.NewInvalidCast(r.typ.String(), want), fmt.Sprintf("field %d", r.index))
	}
	return r.payload, nil
}

func (r *Reader) ReadBool() (types.Boolean, error) {
	b, err := r.fixed(fixedOf[types.Boolean](), "bool")
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

func (r *Reader) ReadInt8() (types.Int8, error) {
	b, err := r.fixed(fixedOf[types.Int8](), "int8")
	if err != nil {
		return 0, err
	}
	return int8(b[0]), nil
}

func (r *Reader) ReadUInt8() (types.UInt8, error) {
	b, err := r.fixed(fixedOf[types.UInt8](), "uint8")
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadInt16() (types.Int16, error) {
	b, err := r.fixed(fixedOf[types.Int16](), "int16")
	if err != nil {
		return 0, err
	}
	return int16(r.order.Uint16(b)), nil
}

func (r *Reader) ReadUInt16() (types.UInt16, error) {
	b, err := r.fixed(fixedOf[types.UInt16](), "uint16")
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(b), nil
}

func (r *Reader) ReadInt32() (types.Int32, error) {
	b, err := r.fixed(fixedOf[types.Int32](), "int32")
	if err != nil {
		return 0, err
	}
	return int32(r.order.Uint32(b)), nil
}

func (r *Reader) ReadUInt32() (types.UInt32, error) {
	b, err := r.fixed(fixedOf[types.UInt32](), "uint32")
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(b), nil
}

func (r *Reader) ReadInt64() (int64, error) {
	b, err := r.fixed(Fixed64, "int64")
	if err != nil {
		return 0, err
	}
	return int64(r.order.Uint64(b)), nil
}

func (r *Reader) ReadUInt64() (uint64, error) {
	b, err := r.fixed(Fixed64, "uint64")
	if err != nil {
		return 0, err
	}
	return r.order.Uint64(b), nil
}

// ReadInt reads a native int written as a 64-bit value.
func (r *Reader) ReadInt() (int, error) {
	v, err := r.ReadInt64()
	if err != nil {
		return 0, err
	}
	if v < math.MinInt || v > math.MaxInt {
		return 0, errors.Errorf("value %d of field %d overflows int", v, r.index)
	}
	return int(v), nil
}

// ReadUInt reads a native uint written as a 64-bit value.
func (r *Reader) ReadUInt() (uint, error) {
	v, err := r.ReadUInt64()
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint {
		return 0, errors.Errorf("value %d of field %d overflows uint", v, r.index)
	}
	return uint(v), nil
}

func (r *Reader) ReadFloat32() (float32, error) {
	b, err := r.fixed(Fixed32, "float32")
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(r.order.Uint32(b)), nil
}

func (r *Reader) ReadFloat64() (float64, error) {
	b, err := r.fixed(Fixed64, "float64")
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(r.order.Uint64(b)), nil
}

func (r *Reader) ReadFloat128() (Float128, error) {
	var v Float128
	b, err := r.fixed(Fixed128, "float128")
	if err != nil {
		return v, err
	}
	if r.endian == LittleEndian {
		copy(v[:], b)
		return v, nil
	}
	for i := range v {
		v[i] = b[len(b)-1-i]
	}
	return v, nil
}

// ReadChar reads a single UTF-16 code unit.
func (r *Reader) ReadChar() (rune, error) {
	b, err := r.fixed(Fixed16, "char")
	if err != nil {
		return 0, err
	}
	return rune(r.order.Uint16(b)), nil
}

func (r *Reader) ReadVInt() (VInt, error) {
	u, err := r.varUint("vint")
	if err != nil {
		return 0, err
	}
	return zag(VUInt(u)), nil
}

func (r *Reader) ReadVUInt() (VUInt, error) {
	u, err := r.varUint("vuint")
	if err != nil {
		return 0, err
	}
	return VUInt(u), nil
}

func (r *Reader) varUint(want string) (uint64, error) {
	if r.typ < Fixed8 || r.typ > Fixed64 {
		return 0, errs.Extend(errs.NewInvalidCast(r.typ.String(), want), fmt.Sprintf("field %d", r.index))
	}
	var v uint64
	n := len(r.payload)
	for i, c := range r.payload {
		if r.endian == LittleEndian {
			v |= uint64(c) << (8 * i)
		} else {
			v |= uint64(c) << (8 * (n - 1 - i))
		}
	}
	return v, nil
}

// ReadString decodes the current field in the message encoding.
func (r *Reader) ReadString() (string, error) {
	return r.ReadStringEncoded(r.encoding)
}

// ReadStringEncoded decodes the current field in enc, see Writer.WriteStringEncoded.
func (r *Reader) ReadStringEncoded(enc Encoding) (string, error) {
	s, err := decodeString(r.payload, enc, r.endian)
	if err != nil {
		return "", errors.Wrapf(err, "field %d", r.index)
	}
	return s, nil
}

// ReadBytes returns a copy of the current field payload.
func (r *Reader) ReadBytes() ([]byte, error) {
	out := make([]byte, len(r.payload))
	copy(out, r.payload)
	return out, nil
}

// ReadMessage reads the current field as a nested message.
func (r *Reader) ReadMessage(m Unmarshaler) error {
	if m == nil {
		return errors.New("can not read message into nil")
	}
	return m.UnmarshalAccel(r.sub())
}

// ReadValue reads the current field into the value ptr points to using reflection.
func (r *Reader) ReadValue(ptr any) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.Errorf("can not read value into non-pointer %T", ptr)
	}
	return decode(r, rv.Elem(), fieldFlags{})
}

// sub returns a reader over the payload of the current field.
func (r *Reader) sub() *Reader {
	return &Reader{
		buf:      r.payload,
		encoding: r.encoding,
		endian:   r.endian,
		order:    r.order,
		strict:   r.strict,
	}
}
