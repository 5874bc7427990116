package accel

import (
	"math"
	"reflect"

	"github.com/ccoveille/go-safecast"
	"github.com/pkg/errors"

	"github.com/wavesplatform/goaccel/pkg/errs"
	"github.com/wavesplatform/goaccel/pkg/libs/bytespool"
	"github.com/wavesplatform/goaccel/pkg/types"
)

// scratch serves the bodies of nested messages.
var scratch bytespool.Pool = bytespool.NewBytesPool(64)

// Marshaler is implemented by types that write their own fields.
type Marshaler interface {
	MarshalAccel(w *Writer) error
}

// SizeHinter reports the expected encoded size of a value.
type SizeHinter interface {
	AccelSizeHint() int
}

// Writer appends tagged fields to a growable buffer.
// Zero values are not written, readers treat absent fields as zero.
// A Writer is not safe for concurrent use.
type Writer struct {
	buf      []byte
	encoding Encoding
	endian   Endian
	order    byteOrder
}

// NewWriter creates a writer producing a message body with the given options.
func NewWriter(opts ...Option) *Writer {
	o := newOptions(opts)
	return newWriter(o.encoding, o.endian, make([]byte, 0, o.sizeHint))
}

func newWriter(enc Encoding, end Endian, buf []byte) *Writer {
	return &Writer{
		buf:      buf,
		encoding: enc,
		endian:   end,
		order:    end.order(),
	}
}

// Encoding returns the string encoding of the writer.
func (w *Writer) Encoding() Encoding {
	return w.encoding
}

// Endian returns the byte order of the writer.
func (w *Writer) Endian() Endian {
	return w.endian
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the written body. The slice is valid until the next write.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Reset clears the writer for reuse.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}

func (w *Writer) WriteBool(index int, v types.Boolean) error {
	if !v {
		return nil
	}
	return w.putFixed8(index, 1)
}

func (w *Writer) WriteInt8(index int, v types.Int8) error {
	if v == 0 {
		return nil
	}
	return w.putFixed8(index, uint8(v))
}

func (w *Writer) WriteUInt8(index int, v types.UInt8) error {
	if v == 0 {
		return nil
	}
	return w.putFixed8(index, v)
}

func (w *Writer) WriteInt16(index int, v types.Int16) error {
	if v == 0 {
		return nil
	}
	return w.putFixed16(index, uint16(v))
}

func (w *Writer) WriteUInt16(index int, v types.UInt16) error {
	if v == 0 {
		return nil
	}
	return w.putFixed16(index, v)
}

func (w *Writer) WriteInt32(index int, v types.Int32) error {
	if v == 0 {
		return nil
	}
	return w.putFixed32(index, uint32(v))
}

func (w *Writer) WriteUInt32(index int, v types.UInt32) error {
	if v == 0 {
		return nil
	}
	return w.putFixed32(index, v)
}

func (w *Writer) WriteInt64(index int, v int64) error {
	if v == 0 {
		return nil
	}
	return w.putFixed64(index, uint64(v))
}

func (w *Writer) WriteUInt64(index int, v uint64) error {
	if v == 0 {
		return nil
	}
	return w.putFixed64(index, v)
}

// WriteInt writes a native int as a 64-bit value.
func (w *Writer) WriteInt(index int, v int) error {
	return w.WriteInt64(index, int64(v))
}

// WriteUInt writes a native uint as a 64-bit value.
func (w *Writer) WriteUInt(index int, v uint) error {
	return w.WriteUInt64(index, uint64(v))
}

// WriteFloat32 skips only positive zero, -0 is written like any other value.
func (w *Writer) WriteFloat32(index int, v float32) error {
	if math.Float32bits(v) == 0 {
		return nil
	}
	return w.putFixed32(index, math.Float32bits(v))
}

func (w *Writer) WriteFloat64(index int, v float64) error {
	if math.Float64bits(v) == 0 {
		return nil
	}
	return w.putFixed64(index, math.Float64bits(v))
}

func (w *Writer) WriteFloat128(index int, v Float128) error {
	if v == (Float128{}) {
		return nil
	}
	return w.putFixed128(index, v)
}

// WriteChar writes a rune as a single UTF-16 code unit.
func (w *Writer) WriteChar(index int, v rune) error {
	if v == 0 {
		return nil
	}
	c, err := toChar(v)
	if err != nil {
		return err
	}
	return w.putFixed16(index, uint16(c))
}

func (w *Writer) WriteVInt(index int, v VInt) error {
	if v == 0 {
		return nil
	}
	return w.putVarUint(index, uint64(zig(v)))
}

func (w *Writer) WriteVUInt(index int, v VUInt) error {
	if v == 0 {
		return nil
	}
	return w.putVarUint(index, uint64(v))
}

// WriteString writes s in the writer encoding.
func (w *Writer) WriteString(index int, s string) error {
	return w.WriteStringEncoded(index, s, w.encoding)
}

// WriteStringEncoded writes s in enc regardless of the writer encoding.
// The reader has to use ReadStringEncoded with the same encoding.
func (w *Writer) WriteStringEncoded(index int, s string, enc Encoding) error {
	if s == "" {
		return nil
	}
	return w.putString(index, s, enc)
}

// WriteBytes writes raw bytes.
func (w *Writer) WriteBytes(index int, b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return w.putSized(index, b)
}

// WriteMessage writes m as a nested message. Nil values are skipped.
func (w *Writer) WriteMessage(index int, m Marshaler) error {
	if m == nil {
		return nil
	}
	if rv := reflect.ValueOf(m); rv.Kind() == reflect.Ptr && rv.IsNil() {
		return nil
	}
	return w.nested(index, m.MarshalAccel)
}

// WriteValue writes any supported value using reflection.
func (w *Writer) WriteValue(index int, v any) error {
	if v == nil {
		return nil
	}
	return encode(w, index, reflect.ValueOf(v), fieldFlags{}, false)
}

func (w *Writer) tag(index int, t ObjectType) error {
	if index <= 0 || index > errs.MaxFieldIndex {
		return errs.NewInvalidFieldIndex(index)
	}
	w.buf = appendUvarint32(w.buf, uint32(index)<<4|uint32(t))
	return nil
}

func (w *Writer) putFixed8(index int, v uint8) error {
	if err := w.tag(index, fixedOf[types.UInt8]()); err != nil {
		return err
	}
	w.buf = append(w.buf, v)
	return nil
}

func (w *Writer) putFixed16(index int, v uint16) error {
	if err := w.tag(index, fixedOf[types.UInt16]()); err != nil {
		return err
	}
	w.buf = w.order.AppendUint16(w.buf, v)
	return nil
}

func (w *Writer) putFixed32(index int, v uint32) error {
	if err := w.tag(index, fixedOf[types.UInt32]()); err != nil {
		return err
	}
	w.buf = w.order.AppendUint32(w.buf, v)
	return nil
}

func (w *Writer) putFixed64(index int, v uint64) error {
	if err := w.tag(index, fixedOf[types.UInt64]()); err != nil {
		return err
	}
	w.buf = w.order.AppendUint64(w.buf, v)
	return nil
}

func (w *Writer) putFixed128(index int, v Float128) error {
	if err := w.tag(index, Fixed128); err != nil {
		return err
	}
	if w.endian == LittleEndian {
		w.buf = append(w.buf, v[:]...)
		return nil
	}
	for i := len(v) - 1; i >= 0; i-- {
		w.buf = append(w.buf, v[i])
	}
	return nil
}

// putVarUint writes the low-order non-zero bytes of v, the object type carries the byte count.
func (w *Writer) putVarUint(index int, v uint64) error {
	n := varUintLen(v)
	if err := w.tag(index, ObjectType(n)); err != nil {
		return err
	}
	if w.endian == LittleEndian {
		for i := 0; i < n; i++ {
			w.buf = append(w.buf, byte(v>>(8*i)))
		}
		return nil
	}
	for i := n - 1; i >= 0; i-- {
		w.buf = append(w.buf, byte(v>>(8*i)))
	}
	return nil
}

func (w *Writer) putString(index int, s string, enc Encoding) error {
	b, err := appendString(scratch.Get(len(s)), s, enc, w.endian)
	if err != nil {
		return err
	}
	defer scratch.Put(b)
	return w.putSized(index, b)
}

// putSized writes payload with the smallest object type able to carry its length.
func (w *Writer) putSized(index int, payload []byte) error {
	t := objectTypeByLength(len(payload))
	if err := w.tag(index, t); err != nil {
		return err
	}
	if t == LengthPrefixed {
		l, err := safecast.ToUint32(len(payload))
		if err != nil {
			return errors.Wrap(err, "payload is too long")
		}
		w.buf = appendUvarint32(w.buf, l)
	}
	w.buf = append(w.buf, payload...)
	return nil
}

// nested runs fn against a child writer sharing the configuration and writes its body as one field.
func (w *Writer) nested(index int, fn func(*Writer) error) error {
	child := newWriter(w.encoding, w.endian, scratch.Get(DefaultSizeHint))
	defer func() { scratch.Put(child.buf) }()
	if err := fn(child); err != nil {
		return err
	}
	return w.putSized(index, child.buf)
}

func toChar(r rune) (Char, error) {
	if r < 0 || r > math.MaxUint16 {
		return 0, errors.Errorf("rune %U does not fit a single UTF-16 code unit", r)
	}
	return Char(r), nil
}
