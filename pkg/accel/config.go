package accel

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Encoding selects how strings are laid out on the wire.
//
//go:generate stringer -type Encoding -output encoding_string.go
type Encoding uint8

const (
	UTF8 Encoding = iota
	Unicode
	ASCII
)

// Endian selects the byte order of multi-byte numbers.
//
//go:generate stringer -type Endian -output endian_string.go
type Endian uint8

const (
	BigEndian Endian = iota
	LittleEndian
)

// DefaultSizeHint is the initial capacity of a writer when the value gives no hint.
const DefaultSizeHint = 160

type byteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

func (e Endian) order() byteOrder {
	if e == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// header packs the message configuration byte: high nibble is the encoding, low nibble the endianness.
func header(enc Encoding, end Endian) byte {
	return byte(enc)<<4 | byte(end)
}

func parseHeader(b byte) (Encoding, Endian, error) {
	enc := Encoding(b >> 4)
	end := Endian(b & 0x0f)
	if enc > ASCII {
		return 0, 0, errors.Errorf("invalid message header 0x%02x: unknown encoding %d", b, enc)
	}
	if end > LittleEndian {
		return 0, 0, errors.Errorf("invalid message header 0x%02x: unknown endianness %d", b, end)
	}
	return enc, end, nil
}

type options struct {
	encoding Encoding
	endian   Endian
	sizeHint int
	strict   bool
}

// Option configures Marshal, Unmarshal and writers.
type Option func(*options)

// WithEncoding sets the string encoding used by writers.
func WithEncoding(enc Encoding) Option {
	return func(o *options) {
		o.encoding = enc
	}
}

// WithEndian sets the byte order used by writers.
func WithEndian(e Endian) Option {
	return func(o *options) {
		o.endian = e
	}
}

// WithSizeHint sets the initial capacity of the output buffer.
func WithSizeHint(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.sizeHint = n
		}
	}
}

// WithStrict makes readers fail on field indexes unknown to the target type instead of skipping them.
func WithStrict() Option {
	return func(o *options) {
		o.strict = true
	}
}

func newOptions(opts []Option) options {
	o := options{
		encoding: UTF8,
		endian:   LittleEndian,
		sizeHint: DefaultSizeHint,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
