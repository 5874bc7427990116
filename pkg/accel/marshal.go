package accel

import (
	"reflect"

	"github.com/pkg/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/wavesplatform/goaccel/pkg/errs"
)

// BeforeMarshaler is called right before a struct is written.
type BeforeMarshaler interface {
	BeforeMarshalAccel()
}

// AfterUnmarshaler is called once all fields of a struct are read. Its error fails the decoding.
type AfterUnmarshaler interface {
	AfterUnmarshalAccel() error
}

// Marshal serializes v into a message: the configuration header followed by the body.
// Values implementing Marshaler write themselves, structs are written using their `accel` tags.
func Marshal(v any, opts ...Option) ([]byte, error) {
	o := newOptions(opts)
	if h, ok := v.(SizeHinter); ok {
		if n := h.AccelSizeHint(); n > 0 {
			o.sizeHint = n
		}
	}
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if cap(buf.B) < o.sizeHint {
		buf.B = make([]byte, 0, o.sizeHint)
	}
	w := newWriter(o.encoding, o.endian, append(buf.B[:0], header(o.encoding, o.endian)))
	err := marshalBody(w, v)
	buf.B = w.buf
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(w.buf))
	copy(out, w.buf)
	return out, nil
}

func marshalBody(w *Writer, v any) error {
	if v == nil {
		return errors.New("can not marshal nil")
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr && rv.IsNil() {
		return errors.Errorf("can not marshal nil %T", v)
	}
	if m, ok := v.(Marshaler); ok {
		return m.MarshalAccel(w)
	}
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return errors.Errorf("can not marshal nil %T", v)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs.Extend(errs.NewUnsupportedType(rv.Type().String()), "top-level value must be a struct")
	}
	if reflect.PointerTo(rv.Type()).Implements(marshalerType) {
		return addressable(rv).Addr().Interface().(Marshaler).MarshalAccel(w)
	}
	return encodeFields(w, rv)
}

// Unmarshal reads a message produced by Marshal into v, which must be a non-nil pointer.
// The header of data decides the encoding and the byte order, options only control strictness.
// Empty data leaves v untouched.
func Unmarshal(data []byte, v any, opts ...Option) error {
	if len(data) == 0 {
		return nil
	}
	r, err := NewMessageReader(data, opts...)
	if err != nil {
		return err
	}
	if u, ok := v.(Unmarshaler); ok {
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Ptr && rv.IsNil() {
			return errors.Errorf("can not unmarshal into nil %T", v)
		}
		return u.UnmarshalAccel(r)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.Errorf("can not unmarshal into non-pointer %T", v)
	}
	rv = rv.Elem()
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs.Extend(errs.NewUnsupportedType(rv.Type().String()), "top-level value must be a struct")
	}
	if reflect.PointerTo(rv.Type()).Implements(unmarshalerType) {
		return rv.Addr().Interface().(Unmarshaler).UnmarshalAccel(r)
	}
	return decodeFields(r, rv)
}
