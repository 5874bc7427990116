package orders

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavesplatform/goaccel/pkg/accel"
	"github.com/wavesplatform/goaccel/pkg/errs"
)

// plainOrder has the layout of Order without generated methods, so it is written by the reflection encoder.
type plainOrder struct {
	Serial   accel.VInt          `accel:"1,var"`
	Customer string              `accel:"2"`
	Lines    []plainLine         `accel:"4"`
	Total    int32               `accel:"5"`
	Attrs    map[string][]uint16 `accel:"7"`
	Flag     *accel.Char         `accel:"8"`
	Parent   *plainOrder         `accel:"9"`
	Count    int32               `accel:"10,var"`
	Items    []*plainLine        `accel:"11"`
}

type plainLine struct {
	Sku   string         `accel:"1"`
	Qty   accel.VUInt    `accel:"2,var"`
	Price accel.Float128 `accel:"3"`
}

func sampleOrder() *Order {
	flag := accel.Char('x')
	return &Order{
		Serial:   -42,
		Customer: "Ann",
		Lines: []OrderLine{
			{Sku: "A-1", Qty: 3, Price: accel.Float128{1, 2}},
			{Sku: "B-2"},
		},
		Total:  1999,
		Attrs:  map[string][]uint16{"sizes": {38, 40}, "widths": {0}},
		Flag:   &flag,
		Parent: &Order{Serial: 1, Customer: "Parent", Total: 10},
		Count:  -7,
		Items:  []*OrderLine{{Sku: "C-3", Qty: 300}, nil},
	}
}

func samplePlain() *plainOrder {
	flag := accel.Char('x')
	return &plainOrder{
		Serial:   -42,
		Customer: "Ann",
		Lines: []plainLine{
			{Sku: "A-1", Qty: 3, Price: accel.Float128{1, 2}},
			{Sku: "B-2"},
		},
		Total:  1999,
		Attrs:  map[string][]uint16{"sizes": {38, 40}, "widths": {0}},
		Flag:   &flag,
		Parent: &plainOrder{Serial: 1, Customer: "Parent", Total: 10},
		Count:  -7,
		Items:  []*plainLine{{Sku: "C-3", Qty: 300}, nil},
	}
}

func TestOrder_MatchesReflection(t *testing.T) {
	for _, test := range []struct {
		name string
		opts []accel.Option
	}{
		{"default", nil},
		{"big endian", []accel.Option{accel.WithEndian(accel.BigEndian)}},
		{"unicode", []accel.Option{accel.WithEncoding(accel.Unicode)}},
	} {
		t.Run(test.name, func(t *testing.T) {
			generated, err := accel.Marshal(sampleOrder(), test.opts...)
			require.NoError(t, err)
			reflected, err := accel.Marshal(samplePlain(), test.opts...)
			require.NoError(t, err)
			assert.Equal(t, reflected, generated)

			var out Order
			require.NoError(t, accel.Unmarshal(reflected, &out))
			if diff := deep.Equal(sampleOrder(), &out); diff != nil {
				t.Error(diff)
			}

			var plain plainOrder
			require.NoError(t, accel.Unmarshal(generated, &plain))
			if diff := deep.Equal(samplePlain(), &plain); diff != nil {
				t.Error(diff)
			}
		})
	}
}

func TestOrder_UnmarshalResetsTarget(t *testing.T) {
	want := &Order{Customer: "second", Lines: []OrderLine{{Sku: "X"}}}
	data, err := accel.Marshal(want)
	require.NoError(t, err)

	target := sampleOrder()
	target.Note = "stale"
	parent := target.Parent
	require.NoError(t, accel.Unmarshal(data, target))
	assert.Equal(t, want, target)
	assert.Equal(t, "Parent", parent.Customer)
}

func TestOrder_ReadValueReusesPointer(t *testing.T) {
	w := accel.NewWriter()
	require.NoError(t, w.WriteMessage(1, &Order{Customer: "fresh"}))
	r := accel.NewReader(w.Bytes())
	require.True(t, r.Next())

	p := sampleOrder()
	same := p
	require.NoError(t, r.ReadValue(&p))
	assert.Same(t, same, p)
	assert.Equal(t, &Order{Customer: "fresh"}, p)
}

func TestOrder_ObsoleteField(t *testing.T) {
	data, err := accel.Marshal(&Order{Note: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, data)

	// older writers still send the note
	w := accel.NewWriter()
	require.NoError(t, w.WriteString(6, "old note"))
	require.NoError(t, w.WriteString(2, "Ann"))
	var out Order
	require.NoError(t, out.UnmarshalAccel(accel.NewReader(w.Bytes())))
	assert.Equal(t, Order{Customer: "Ann"}, out)
}

func TestOrder_UnknownField(t *testing.T) {
	w := accel.NewWriter()
	require.NoError(t, w.WriteInt32(12, 1))
	var out Order
	require.NoError(t, out.UnmarshalAccel(accel.NewReader(w.Bytes())))

	err := out.UnmarshalAccel(accel.NewReader(w.Bytes(), accel.WithStrict()))
	assert.True(t, errors.Is(err, errs.UnknownField{}), err)
}

func TestOrder_Facades(t *testing.T) {
	data, err := accel.Marshal(&Order{Total: 1, Count: -1})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x54, 0x01, 0x00, 0x00, 0x00, 0xa1, 0x01, 0x01}, data)
}

func TestOrder_Callbacks(t *testing.T) {
	in := &Order{
		Lines: []OrderLine{{Sku: "abc-1"}},
		Items: []*OrderLine{{Sku: "def"}},
	}
	data, err := accel.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, "ABC-1", in.Lines[0].Sku)
	assert.Equal(t, "DEF", in.Items[0].Sku)

	var out Order
	require.NoError(t, accel.Unmarshal(data, &out))
	assert.Equal(t, in, &out)

	data, err = accel.Marshal(&Order{Total: -5})
	require.NoError(t, err)
	assert.ErrorContains(t, accel.Unmarshal(data, &out), "negative total -5")

	data, err = accel.Marshal(&Order{Parent: &Order{Total: -1}})
	require.NoError(t, err)
	assert.ErrorContains(t, accel.Unmarshal(data, &out), "negative total -1")
}
