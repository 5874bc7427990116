package accel

import (
	"cmp"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/ccoveille/go-safecast"
	"github.com/pkg/errors"

	"github.com/wavesplatform/goaccel/pkg/errs"
)

const tagName = "accel"

// Collection bodies keep the element count at index 1, elements (or map keys) at 2 and map values at 3.
const (
	countIndex = 1
	elemIndex  = 2
	valueIndex = 3
)

var (
	marshalerType   = reflect.TypeFor[Marshaler]()
	unmarshalerType = reflect.TypeFor[Unmarshaler]()
	beforeType      = reflect.TypeFor[BeforeMarshaler]()
	afterType       = reflect.TypeFor[AfterUnmarshaler]()
	vintType        = reflect.TypeFor[VInt]()
	vuintType       = reflect.TypeFor[VUInt]()
	charType        = reflect.TypeFor[Char]()
	float128Type    = reflect.TypeFor[Float128]()
)

type fieldFlags struct {
	variable bool
	// encoding replaces the message string encoding when ownEncoding is set.
	encoding    Encoding
	ownEncoding bool
}

func (fl fieldFlags) stringEncoding(def Encoding) Encoding {
	if fl.ownEncoding {
		return fl.encoding
	}
	return def
}

var encodingOptions = map[string]Encoding{
	"utf8":    UTF8,
	"utf16":   Unicode,
	"unicode": Unicode,
	"ascii":   ASCII,
}

type fieldPlan struct {
	name  string
	index int
	path  []int
	flags fieldFlags
}

type structPlan struct {
	name    string
	fields  []fieldPlan
	byIndex map[int]int
}

var plans sync.Map // reflect.Type -> *structPlan

func planFor(t reflect.Type) (*structPlan, error) {
	if p, ok := plans.Load(t); ok {
		return p.(*structPlan), nil
	}
	p, err := buildPlan(t)
	if err != nil {
		return nil, err
	}
	actual, _ := plans.LoadOrStore(t, p)
	return actual.(*structPlan), nil
}

func buildPlan(t reflect.Type) (*structPlan, error) {
	p := &structPlan{
		name:    t.String(),
		byIndex: make(map[int]int, t.NumField()),
	}
	prev := 0
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, ok := f.Tag.Lookup(tagName)
		if ok && tag == "-" {
			continue
		}
		fp, err := parseFieldTag(f, tag, prev)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid field %s.%s", p.name, f.Name)
		}
		if j, dup := p.byIndex[fp.index]; dup {
			return nil, errors.Errorf("duplicate field index %d in %s: %s and %s",
				fp.index, p.name, p.fields[j].name, fp.name)
		}
		p.byIndex[fp.index] = len(p.fields)
		p.fields = append(p.fields, fp)
		prev = fp.index
	}
	return p, nil
}

// parseFieldTag reads `accel:"index[,var][,utf8|utf16|ascii]"`. Fields without an index follow the previous one.
// An encoding option applies to the strings of the field, including collection elements.
func parseFieldTag(f reflect.StructField, tag string, prev int) (fieldPlan, error) {
	fp := fieldPlan{name: f.Name, index: prev + 1, path: f.Index}
	if tag == "" {
		return fp, nil
	}
	parts := strings.Split(tag, ",")
	if parts[0] != "" {
		idx, err := strconv.Atoi(parts[0])
		if err != nil {
			return fp, errors.Wrapf(err, "bad index %q", parts[0])
		}
		fp.index = idx
	}
	for _, opt := range parts[1:] {
		switch opt {
		case "var":
			fp.flags.variable = true
		default:
			enc, ok := encodingOptions[opt]
			if !ok {
				return fp, errors.Errorf("unknown tag option %q", opt)
			}
			if fp.flags.ownEncoding {
				return fp, errors.Errorf("more than one encoding in tag %q", tag)
			}
			fp.flags.encoding, fp.flags.ownEncoding = enc, true
		}
	}
	if fp.index <= 0 || fp.index > errs.MaxFieldIndex {
		return fp, errs.NewInvalidFieldIndex(fp.index)
	}
	return fp, nil
}

func encodeFields(w *Writer, v reflect.Value) error {
	p, err := planFor(v.Type())
	if err != nil {
		return err
	}
	if reflect.PointerTo(v.Type()).Implements(beforeType) {
		v = addressable(v)
		v.Addr().Interface().(BeforeMarshaler).BeforeMarshalAccel()
	}
	for _, f := range p.fields {
		if err := encode(w, f.index, v.FieldByIndex(f.path), f.flags, false); err != nil {
			return errs.Extend(err, fmt.Sprintf("%s.%s", p.name, f.name))
		}
	}
	return nil
}

// encode writes v at index. Zero values are skipped unless force is set, collections force their elements.
func encode(w *Writer, index int, v reflect.Value, fl fieldFlags, force bool) error {
	if !v.IsValid() {
		return nil
	}
	t := v.Type()
	if t.Kind() == reflect.Ptr {
		if v.IsNil() {
			if force {
				return w.putSized(index, nil)
			}
			return nil
		}
		if t.Implements(marshalerType) {
			return w.nested(index, v.Interface().(Marshaler).MarshalAccel)
		}
		return encode(w, index, v.Elem(), fl, true)
	}
	if !force && v.IsZero() {
		return nil
	}
	if t.Implements(marshalerType) {
		return w.nested(index, v.Interface().(Marshaler).MarshalAccel)
	}
	if reflect.PointerTo(t).Implements(marshalerType) {
		return w.nested(index, addressable(v).Addr().Interface().(Marshaler).MarshalAccel)
	}
	switch t {
	case vintType:
		return w.putVarUint(index, uint64(zig(VInt(v.Int()))))
	case vuintType:
		return w.putVarUint(index, v.Uint())
	case charType:
		return w.putFixed16(index, uint16(v.Uint()))
	case float128Type:
		return w.putFixed128(index, v.Interface().(Float128))
	}
	switch t.Kind() {
	case reflect.Bool:
		var b uint8
		if v.Bool() {
			b = 1
		}
		return w.putFixed8(index, b)
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		if fl.variable {
			return w.putVarUint(index, uint64(zig(VInt(v.Int()))))
		}
		return putInt(w, index, t.Kind(), v.Int())
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint, reflect.Uintptr:
		if fl.variable {
			return w.putVarUint(index, v.Uint())
		}
		return putUint(w, index, t.Kind(), v.Uint())
	case reflect.Float32:
		return w.putFixed32(index, math.Float32bits(float32(v.Float())))
	case reflect.Float64:
		return w.putFixed64(index, math.Float64bits(v.Float()))
	case reflect.String:
		if v.Len() == 0 {
			return w.putSized(index, nil)
		}
		return w.putString(index, v.String(), fl.stringEncoding(w.encoding))
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return w.putSized(index, v.Bytes())
		}
		return w.nested(index, func(c *Writer) error { return encodeCollection(c, v, fl) })
	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return w.putSized(index, arrayBytes(v))
		}
		return w.nested(index, func(c *Writer) error { return encodeCollection(c, v, fl) })
	case reflect.Map:
		return w.nested(index, func(c *Writer) error { return encodeMap(c, v, fl) })
	case reflect.Struct:
		return w.nested(index, func(c *Writer) error { return encodeFields(c, v) })
	default:
		return errs.NewUnsupportedType(t.String())
	}
}

func putInt(w *Writer, index int, k reflect.Kind, v int64) error {
	switch k {
	case reflect.Int8:
		return w.putFixed8(index, uint8(v))
	case reflect.Int16:
		return w.putFixed16(index, uint16(v))
	case reflect.Int32:
		return w.putFixed32(index, uint32(v))
	default:
		return w.putFixed64(index, uint64(v))
	}
}

func putUint(w *Writer, index int, k reflect.Kind, v uint64) error {
	switch k {
	case reflect.Uint8:
		return w.putFixed8(index, uint8(v))
	case reflect.Uint16:
		return w.putFixed16(index, uint16(v))
	case reflect.Uint32:
		return w.putFixed32(index, uint32(v))
	default:
		return w.putFixed64(index, v)
	}
}

func encodeCollection(w *Writer, v reflect.Value, fl fieldFlags) error {
	n := v.Len()
	if err := w.putVarUint(countIndex, uint64(n)); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := encode(w, elemIndex, v.Index(i), fl, true); err != nil {
			return errors.Wrapf(err, "element %d", i)
		}
	}
	return nil
}

func encodeMap(w *Writer, v reflect.Value, fl fieldFlags) error {
	keys := v.MapKeys()
	slices.SortFunc(keys, compareKeys)
	if err := w.putVarUint(countIndex, uint64(len(keys))); err != nil {
		return err
	}
	for _, k := range keys {
		if err := encode(w, elemIndex, k, fl, true); err != nil {
			return errors.Wrapf(err, "key %v", k)
		}
		if err := encode(w, valueIndex, v.MapIndex(k), fl, true); err != nil {
			return errors.Wrapf(err, "value of key %v", k)
		}
	}
	return nil
}

// compareKeys orders map keys so equal maps produce equal bytes.
func compareKeys(a, b reflect.Value) int {
	switch a.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(a.Int(), b.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return cmp.Compare(a.Uint(), b.Uint())
	case reflect.Float32, reflect.Float64:
		return cmp.Compare(a.Float(), b.Float())
	case reflect.String:
		return cmp.Compare(a.String(), b.String())
	case reflect.Bool:
		switch {
		case a.Bool() == b.Bool():
			return 0
		case !a.Bool():
			return -1
		default:
			return 1
		}
	default:
		return cmp.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
	}
}

func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v
	}
	p := reflect.New(v.Type()).Elem()
	p.Set(v)
	return p
}

func arrayBytes(v reflect.Value) []byte {
	b := make([]byte, v.Len())
	reflect.Copy(reflect.ValueOf(b), v)
	return b
}

// decodeFields reads every field of r into the struct v, v is reset first.
func decodeFields(r *Reader, v reflect.Value) error {
	p, err := planFor(v.Type())
	if err != nil {
		return err
	}
	v.SetZero()
	for r.Next() {
		i, ok := p.byIndex[r.Index()]
		if !ok {
			if err := r.SkipUnknown(p.name); err != nil {
				return err
			}
			continue
		}
		f := p.fields[i]
		if err := decode(r, v.FieldByIndex(f.path), f.flags); err != nil {
			return errs.Extend(err, fmt.Sprintf("%s.%s", p.name, f.name))
		}
	}
	if err := r.Err(); err != nil {
		return err
	}
	if v.CanAddr() && v.Addr().Type().Implements(afterType) {
		if err := v.Addr().Interface().(AfterUnmarshaler).AfterUnmarshalAccel(); err != nil {
			return errors.Wrapf(err, "%s", p.name)
		}
	}
	return nil
}

// decode reads the current field of r into the settable v.
func decode(r *Reader, v reflect.Value, fl fieldFlags) error {
	t := v.Type()
	if t.Kind() == reflect.Ptr {
		if r.Type() == LengthPrefixed && len(r.Payload()) == 0 {
			v.SetZero()
			return nil
		}
		if v.IsNil() {
			v.Set(reflect.New(t.Elem()))
		}
		return decode(r, v.Elem(), fl)
	}
	if v.CanAddr() && reflect.PointerTo(t).Implements(unmarshalerType) {
		return v.Addr().Interface().(Unmarshaler).UnmarshalAccel(r.sub())
	}
	switch t {
	case vintType, vuintType, charType, float128Type:
		return decodeSpecial(r, v)
	}
	switch t.Kind() {
	case reflect.Bool:
		b, err := r.ReadBool()
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		n, err := readInt(r, t.Kind(), fl)
		if err != nil {
			return err
		}
		if v.OverflowInt(n) {
			return errors.Errorf("value %d overflows %s", n, t)
		}
		v.SetInt(n)
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint, reflect.Uintptr:
		n, err := readUint(r, t.Kind(), fl)
		if err != nil {
			return err
		}
		if v.OverflowUint(n) {
			return errors.Errorf("value %d overflows %s", n, t)
		}
		v.SetUint(n)
	case reflect.Float32:
		f, err := r.ReadFloat32()
		if err != nil {
			return err
		}
		v.SetFloat(float64(f))
	case reflect.Float64:
		f, err := r.ReadFloat64()
		if err != nil {
			return err
		}
		v.SetFloat(f)
	case reflect.String:
		s, err := r.ReadStringEncoded(fl.stringEncoding(r.encoding))
		if err != nil {
			return err
		}
		v.SetString(s)
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			b, err := r.ReadBytes()
			if err != nil {
				return err
			}
			v.SetBytes(b)
			return nil
		}
		return decodeSlice(r.sub(), v, fl)
	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			if len(r.Payload()) > v.Len() {
				return errors.Errorf("%d bytes do not fit %s", len(r.Payload()), t)
			}
			v.SetZero()
			reflect.Copy(v, reflect.ValueOf(r.Payload()))
			return nil
		}
		return decodeArray(r.sub(), v, fl)
	case reflect.Map:
		return decodeMap(r.sub(), v, fl)
	case reflect.Struct:
		return decodeFields(r.sub(), v)
	default:
		return errs.NewUnsupportedType(t.String())
	}
	return nil
}

func decodeSpecial(r *Reader, v reflect.Value) error {
	switch v.Type() {
	case vintType:
		n, err := r.ReadVInt()
		if err != nil {
			return err
		}
		v.SetInt(int64(n))
	case vuintType:
		n, err := r.ReadVUInt()
		if err != nil {
			return err
		}
		v.SetUint(uint64(n))
	case charType:
		c, err := r.ReadChar()
		if err != nil {
			return err
		}
		v.SetUint(uint64(c))
	case float128Type:
		f, err := r.ReadFloat128()
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(f))
	}
	return nil
}

func readInt(r *Reader, k reflect.Kind, fl fieldFlags) (int64, error) {
	if fl.variable {
		n, err := r.ReadVInt()
		return int64(n), err
	}
	switch k {
	case reflect.Int8:
		n, err := r.ReadInt8()
		return int64(n), err
	case reflect.Int16:
		n, err := r.ReadInt16()
		return int64(n), err
	case reflect.Int32:
		n, err := r.ReadInt32()
		return int64(n), err
	default:
		return r.ReadInt64()
	}
}

func readUint(r *Reader, k reflect.Kind, fl fieldFlags) (uint64, error) {
	if fl.variable {
		n, err := r.ReadVUInt()
		return uint64(n), err
	}
	switch k {
	case reflect.Uint8:
		n, err := r.ReadUInt8()
		return uint64(n), err
	case reflect.Uint16:
		n, err := r.ReadUInt16()
		return uint64(n), err
	case reflect.Uint32:
		n, err := r.ReadUInt32()
		return uint64(n), err
	default:
		return r.ReadUInt64()
	}
}

// readCount reads the declared number of elements, bounded by the size of the body.
func readCount(r *Reader) (int, error) {
	n, err := r.ReadVUInt()
	if err != nil {
		return 0, errors.Wrap(err, "collection count")
	}
	count, err := safecast.ToInt(uint64(n))
	if err != nil {
		return 0, errors.Wrap(err, "collection count")
	}
	if count > r.Remaining() {
		return 0, errs.NewStreamTooShort(count, r.Remaining())
	}
	return count, nil
}

func decodeSlice(r *Reader, v reflect.Value, fl fieldFlags) error {
	t := v.Type()
	out := reflect.MakeSlice(t, 0, 0)
	count := -1
	for r.Next() {
		switch r.Index() {
		case countIndex:
			n, err := readCount(r)
			if err != nil {
				return err
			}
			count = n
			out = reflect.MakeSlice(t, 0, n)
		case elemIndex:
			e := reflect.New(t.Elem()).Elem()
			if err := decode(r, e, fl); err != nil {
				return errors.Wrapf(err, "element %d", out.Len())
			}
			out = reflect.Append(out, e)
		default:
			if err := r.SkipUnknown(t.String()); err != nil {
				return err
			}
		}
	}
	if r.Err() != nil {
		return r.Err()
	}
	if count >= 0 && count != out.Len() {
		return errors.Errorf("collection declares %d elements, found %d", count, out.Len())
	}
	v.Set(out)
	return nil
}

func decodeArray(r *Reader, v reflect.Value, fl fieldFlags) error {
	v.SetZero()
	i := 0
	for r.Next() {
		switch r.Index() {
		case countIndex:
			if _, err := r.ReadVUInt(); err != nil {
				return errors.Wrap(err, "collection count")
			}
		case elemIndex:
			if i >= v.Len() {
				return errors.Errorf("too many elements for %s", v.Type())
			}
			if err := decode(r, v.Index(i), fl); err != nil {
				return errors.Wrapf(err, "element %d", i)
			}
			i++
		default:
			if err := r.SkipUnknown(v.Type().String()); err != nil {
				return err
			}
		}
	}
	return r.Err()
}

func decodeMap(r *Reader, v reflect.Value, fl fieldFlags) error {
	t := v.Type()
	out := reflect.MakeMap(t)
	count := -1
	var key reflect.Value
	for r.Next() {
		switch r.Index() {
		case countIndex:
			n, err := readCount(r)
			if err != nil {
				return err
			}
			count = n
			out = reflect.MakeMapWithSize(t, n)
		case elemIndex:
			if key.IsValid() {
				return errors.Errorf("map key without value in %s", t)
			}
			key = reflect.New(t.Key()).Elem()
			if err := decode(r, key, fl); err != nil {
				return errors.Wrap(err, "map key")
			}
		case valueIndex:
			if !key.IsValid() {
				return errors.Errorf("map value without key in %s", t)
			}
			e := reflect.New(t.Elem()).Elem()
			if err := decode(r, e, fl); err != nil {
				return errors.Wrapf(err, "value of key %v", key)
			}
			out.SetMapIndex(key, e)
			key = reflect.Value{}
		default:
			if err := r.SkipUnknown(t.String()); err != nil {
				return err
			}
		}
	}
	if r.Err() != nil {
		return r.Err()
	}
	if key.IsValid() {
		return errors.Errorf("map key without value in %s", t)
	}
	if count >= 0 && count != out.Len() {
		return errors.Errorf("map declares %d entries, found %d", count, out.Len())
	}
	v.Set(out)
	return nil
}
