package inspect

import (
	"unicode"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"

	"github.com/wavesplatform/goaccel/pkg/accel"
)

const DefaultMaxDepth = 16

type Options struct {
	// Nested tries to decode payloads as embedded messages.
	Nested   bool
	MaxDepth int
}

// Document is a message decoded without its schema.
type Document struct {
	Encoding accel.Encoding `cbor:"encoding"`
	Endian   accel.Endian   `cbor:"endian"`
	Size     int            `cbor:"size"`
	Checksum uint64         `cbor:"checksum"`
	Fields   Body           `cbor:"fields"`
}

// Body is the list of fields of a message or of an embedded message.
type Body []Field

// Field is a single tagged value with the interpretations its payload allows.
type Field struct {
	Index    int              `cbor:"index"`
	Type     accel.ObjectType `cbor:"type"`
	Raw      []byte           `cbor:"raw"`
	Unsigned *uint64          `cbor:"unsigned,omitempty"`
	Signed   *int64           `cbor:"signed,omitempty"`
	Text     *string          `cbor:"text,omitempty"`
	Nested   Body             `cbor:"nested,omitempty"`
}

// Decode parses a complete message, header included.
func Decode(data []byte, opts Options) (*Document, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	r, err := accel.NewMessageReader(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read message header")
	}
	doc := &Document{
		Encoding: r.Encoding(),
		Endian:   r.Endian(),
		Size:     len(data),
		Checksum: xxhash.Sum64(data),
	}
	d := decoder{enc: r.Encoding(), end: r.Endian(), opts: opts}
	fields, err := d.body(r, 0)
	if err != nil {
		return nil, err
	}
	doc.Fields = fields
	return doc, nil
}

type decoder struct {
	enc  accel.Encoding
	end  accel.Endian
	opts Options
}

func (d decoder) body(r *accel.Reader, depth int) (Body, error) {
	var fields Body
	for r.Next() {
		f := Field{
			Index: r.Index(),
			Type:  r.Type(),
			Raw:   append([]byte(nil), r.Payload()...),
		}
		d.guessNumbers(&f)
		if s, err := r.ReadString(); err == nil && printable(s) {
			f.Text = &s
		}
		if d.opts.Nested && depth < d.opts.MaxDepth && len(f.Raw) > 1 {
			f.Nested = d.nested(f.Raw, depth+1)
		}
		fields = append(fields, f)
	}
	if err := r.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to decode field after index %d", lastIndex(fields))
	}
	return fields, nil
}

// nested returns the fields of p when p is a well-formed body, nil otherwise.
func (d decoder) nested(p []byte, depth int) Body {
	r := accel.NewReader(p, accel.WithEncoding(d.enc), accel.WithEndian(d.end))
	fields, err := d.body(r, depth)
	if err != nil {
		return nil
	}
	return fields
}

func (d decoder) guessNumbers(f *Field) {
	n := len(f.Raw)
	if f.Type == accel.LengthPrefixed || n == 0 || n > 8 {
		return
	}
	var u uint64
	for i := range n {
		b := f.Raw[i]
		if d.end == accel.BigEndian {
			b = f.Raw[n-1-i]
		}
		u |= uint64(b) << (8 * i)
	}
	shift := 64 - 8*n
	s := int64(u<<shift) >> shift
	f.Unsigned = &u
	f.Signed = &s
}

func printable(s string) bool {
	if s == "" || !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func lastIndex(fields Body) int {
	if len(fields) == 0 {
		return 0
	}
	return fields[len(fields)-1].Index
}
