package accel

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavesplatform/goaccel/pkg/errs"
)

func TestPlanFor(t *testing.T) {
	type plain struct {
		A int32
		B string `accel:"5"`
		C []byte
		D int64 `accel:",var"`
		E bool  `accel:"-"`
		f int
		G uint8 `accel:"2"`
	}
	p, err := planFor(reflect.TypeFor[plain]())
	require.NoError(t, err)

	got := make(map[string]int)
	for _, f := range p.fields {
		got[f.name] = f.index
	}
	assert.Equal(t, map[string]int{"A": 1, "B": 5, "C": 6, "D": 7, "G": 2}, got)
	assert.True(t, p.fields[p.byIndex[7]].flags.variable)

	enc, err := planFor(reflect.TypeFor[struct {
		A string   `accel:",utf16"`
		B []string `accel:"3,var,ascii"`
		C string
	}]())
	require.NoError(t, err)
	assert.Equal(t, fieldFlags{encoding: Unicode, ownEncoding: true}, enc.fields[0].flags)
	assert.Equal(t, fieldFlags{variable: true, encoding: ASCII, ownEncoding: true}, enc.fields[1].flags)
	assert.Equal(t, fieldFlags{}, enc.fields[2].flags)

	again, err := planFor(reflect.TypeFor[plain]())
	require.NoError(t, err)
	assert.Same(t, p, again)
}

func TestPlanFor_Errors(t *testing.T) {
	for _, test := range []struct {
		name string
		typ  reflect.Type
		is   error
		msg  string
	}{
		{"zero index", reflect.TypeFor[struct {
			A int `accel:"0"`
		}](), errs.InvalidFieldIndex{}, ""},
		{"too large", reflect.TypeFor[struct {
			A int `accel:"268435456"`
		}](), errs.InvalidFieldIndex{}, ""},
		{"not a number", reflect.TypeFor[struct {
			A int `accel:"one"`
		}](), nil, "bad index"},
		{"unknown option", reflect.TypeFor[struct {
			A int `accel:"1,zigzag"`
		}](), nil, "unknown tag option"},
		{"two encodings", reflect.TypeFor[struct {
			A string `accel:"1,utf8,ascii"`
		}](), nil, "more than one encoding"},
		{"duplicate after auto increment", reflect.TypeFor[struct {
			A int `accel:"2"`
			B int `accel:"1"`
			C int
		}](), nil, "duplicate field index 2"},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := planFor(test.typ)
			require.Error(t, err)
			if test.is != nil {
				assert.True(t, errors.Is(err, test.is), err.Error())
			}
			assert.ErrorContains(t, err, test.msg)
		})
	}
}

func TestWriteValue_NilElementsRoundTrip(t *testing.T) {
	in := []*string{nil, ptr("x"), nil}
	w := NewWriter()
	require.NoError(t, w.WriteValue(1, in))

	r := NewReader(w.Bytes())
	require.True(t, r.Next())
	var out []*string
	require.NoError(t, r.ReadValue(&out))
	require.Len(t, out, 3)
	assert.Nil(t, out[0])
	assert.Equal(t, "x", *out[1])
	assert.Nil(t, out[2])
}

func TestWriteValue_NestedCollections(t *testing.T) {
	in := map[string][][]VUInt{
		"a": {{1, 2}, {}, nil},
		"b": nil,
	}
	w := NewWriter()
	require.NoError(t, w.WriteValue(9, in))

	r := NewReader(w.Bytes())
	require.True(t, r.Next())
	assert.Equal(t, 9, r.Index())
	var out map[string][][]VUInt
	require.NoError(t, r.ReadValue(&out))
	assert.Equal(t, map[string][][]VUInt{
		"a": {{1, 2}, {}, {}},
		"b": {},
	}, out)
}

func TestReadValue_CountMismatch(t *testing.T) {
	// {1: count 2, 2: 5}
	r := NewReader([]byte{0x14, 0x11, 0x02, 0x21, 0x05})
	require.True(t, r.Next())
	var ints []int8
	assert.ErrorContains(t, r.ReadValue(&ints), "collection declares 2 elements, found 1")
	assert.Nil(t, ints)
}

func TestReadValue_BytesAreRaw(t *testing.T) {
	r := NewReader([]byte{0x13, 0x11, 0x02, 0x21})
	require.True(t, r.Next())
	var out []uint8
	require.NoError(t, r.ReadValue(&out))
	assert.Equal(t, []byte{0x11, 0x02, 0x21}, out)
}

func TestReadValue_ArrayTooShort(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.WriteValue(1, []uint16{1, 2, 3}))
	r := NewReader(w.Bytes())
	require.True(t, r.Next())
	var out [2]uint16
	assert.ErrorContains(t, r.ReadValue(&out), "too many elements")
}

func TestCompareKeys(t *testing.T) {
	assert.Equal(t, -1, compareKeys(reflect.ValueOf(-1), reflect.ValueOf(1)))
	assert.Equal(t, 1, compareKeys(reflect.ValueOf(uint8(9)), reflect.ValueOf(uint8(1))))
	assert.Equal(t, 0, compareKeys(reflect.ValueOf("a"), reflect.ValueOf("a")))
	assert.Equal(t, -1, compareKeys(reflect.ValueOf(false), reflect.ValueOf(true)))
	assert.Equal(t, -1, compareKeys(reflect.ValueOf(1.5), reflect.ValueOf(2.5)))
}

func ptr[T any](v T) *T {
	return &v
}
