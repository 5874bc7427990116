package codegen

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavesplatform/goaccel/pkg/schema"
)

const orders = `package shop.orders;

-- An order placed by a customer. --
public ref struct Order about 96 {
	var serial : vint;
	-- customer name --
	var customer : string;
	var lines|4 : *Line[];
	var total : (int32) int64;
	var note : string obsolete;
	var attrs : Dictionary<string, List<uint16>>;
	var flag : char?;
	var parent : Order?;

	public struct Line {
		var sku : string;
		var qty : vuint;
		var price : float128;
	}

	private struct Audit { var at : nint; }
}
`

func parse(t *testing.T, src string) *schema.File {
	f, diags := schema.ParseFile("orders.accel", []byte(src))
	require.NotNil(t, f, diags.Error())
	return f
}

// generate returns the generated source with whitespace runs collapsed to single spaces.
func generate(t *testing.T, src string) string {
	out, err := NewGoGenerator().Generate(parse(t, src))
	require.NoError(t, err)
	_, err = parser.ParseFile(token.NewFileSet(), "orders_accel.go", out, parser.ParseComments)
	require.NoError(t, err, string(out))
	return strings.Join(strings.Fields(string(out)), " ")
}

func TestGoGenerator_Generate(t *testing.T) {
	out := generate(t, orders)

	for _, snippet := range []string{
		"// Code generated by accelc. DO NOT EDIT. // source: orders.accel package orders",
		`import ( "github.com/wavesplatform/goaccel/pkg/accel" )`,
		"// An order placed by a customer. type Order struct {",
		"Serial accel.VInt `accel:\"1,var\"`",
		"// customer name Customer string `accel:\"2\"`",
		"Lines []OrderLine `accel:\"4\"`",
		"Total int64 `accel:\"5\"`",
		"// Deprecated: Note is obsolete and is not serialized. Note string `accel:\"6\"`",
		"Attrs map[string][]uint16 `accel:\"7\"`",
		"Flag *accel.Char `accel:\"8\"`",
		"Parent *Order `accel:\"9\"`",
		"type OrderLine struct { Sku string `accel:\"1\"` Qty accel.VUInt `accel:\"2,var\"` Price accel.Float128 `accel:\"3\"` }",
		"type orderAudit struct { At int `accel:\"1\"` }",
		"if err := w.WriteVInt(1, m.Serial); err != nil { return err }",
		"if err := w.WriteInt32(5, int32(m.Total)); err != nil { return err }",
		"if err := w.WriteValue(7, m.Attrs); err != nil { return err }",
		"if err := w.WriteValue(9, m.Parent); err != nil { return err }",
		"case 6: err = r.Skip()",
		"case 5: var v int32 v, err = r.ReadInt32() m.Total = int64(v)",
		"case 2: m.Customer, err = r.ReadString()",
		"case 8: err = r.ReadValue(&m.Flag)",
		"case 3: m.Price, err = r.ReadFloat128()",
		`default: err = r.SkipUnknown("Order") } if err != nil { return err } } if err := r.Err(); err != nil { return err } ` +
			"if h, ok := any(m).(accel.AfterUnmarshaler); ok { return h.AfterUnmarshalAccel() } return nil }",
		"func (m *Order) MarshalAccel(w *accel.Writer) error { if h, ok := any(m).(accel.BeforeMarshaler); ok { h.BeforeMarshalAccel() }",
		"func (m *Order) UnmarshalAccel(r *accel.Reader) error { *m = Order{} for r.Next() {",
		"func (m *orderAudit) UnmarshalAccel(r *accel.Reader) error { *m = orderAudit{} for r.Next() {",
		"func (m *Order) AccelSizeHint() int { return 96 }",
		"func (m *orderAudit) AccelSizeHint() int { return 160 }",
		"case 1: m.At, err = r.ReadInt()",
	} {
		assert.Contains(t, out, snippet)
	}
	assert.NotContains(t, out, "WriteString(6")
}

// The orders package under internal is compiled and round-tripped by its own tests,
// this keeps it in sync with the generator.
func TestGoGenerator_CheckedInOutput(t *testing.T) {
	dir := filepath.Join("internal", "orders")
	src, err := os.ReadFile(filepath.Join(dir, "orders.accel"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join(dir, "orders_accel.go"))
	require.NoError(t, err)

	got, err := NewGoGenerator().Generate(parse(t, string(src)))
	require.NoError(t, err)
	assert.Equal(t, strings.Fields(string(want)), strings.Fields(string(got)))
}

func TestGoGenerator_Errors(t *testing.T) {
	for _, test := range []struct {
		name string
		src  string
		err  string
	}{
		{"unknown type", "struct A { var b : B; }", "A.b: unknown type B"},
		{"struct facade", "struct B {} struct A { var b : (int32) B; }", "A.b: facade int32 of B is not supported"},
		{"string facade", "struct A { var s : (int32) string; }", "A.s: can not convert string to int32"},
		{"struct map key", "struct B {} struct A { var m : Map<B, int8>; }", "A.m: map key B must be a built-in type"},
		{"unknown generic", "struct A { var s : Set<int8>; }", "A.s: unsupported generic type Set<int8>"},
		{"list arity", "struct A { var s : List<int8, int8>; }", "A.s: List expects one type argument, got 2"},
		{"reserved field", "struct A { var marshal_accel : int8; }", "A.marshal_accel: field name MarshalAccel is reserved"},
		{"reserved size hint", "struct A { var accelSizeHint : int8; }", "A.accelSizeHint: field name AccelSizeHint is reserved"},
		{"field clash", "struct A { var foo_bar : int8; var fooBar : int8; }", "A.fooBar: field name FooBar clashes with foo_bar"},
		{"nested type clash", "struct A { struct B {} } struct AB {}", "type name AB of AB clashes with A.B"},
		{"nested type clash reversed", "struct AB {} struct A { struct B {} }", "type name AB of A.B clashes with AB"},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewGoGenerator().Generate(parse(t, test.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.err)
		})
	}
}

func TestGoGenerator_ResolvesNestedScopes(t *testing.T) {
	out := generate(t, `
struct Outer {
	var inner : Inner;
	var deep : Inner.Deep;
	ref struct Inner {
		var self : Inner;
		var leaf : *Deep;
		ref struct Deep { var v : bool; }
	}
}`)
	assert.Contains(t, out, "type Outer struct { Inner *OuterInner `accel:\"1\"` Deep *OuterInnerDeep `accel:\"2\"` }")
	assert.Contains(t, out, "type OuterInner struct { Self *OuterInner `accel:\"1\"` Leaf OuterInnerDeep `accel:\"2\"` }")
	assert.Contains(t, out, "type OuterInnerDeep struct {")
}

func TestGoGenerator_PackageOverride(t *testing.T) {
	f := parse(t, "package a.b; struct A {}")
	out, err := (&GoGenerator{Package: "custom"}).Generate(f)
	require.NoError(t, err)
	assert.Contains(t, string(out), "package custom\n")
}

func TestPackageName(t *testing.T) {
	for _, test := range []struct {
		pkg, file, want string
	}{
		{"shop.orders", "x.accel", "orders"},
		{"shop.OrderBook", "x.accel", "orderbook"},
		{"", "dir/user-events.accel", "userevents"},
		{"", "2fa.accel", "p2fa"},
		{"a.type", "x.accel", "typepkg"},
		{"", "", "schema"},
	} {
		f := &schema.File{Name: test.file, Package: test.pkg}
		assert.Equal(t, test.want, PackageName(f), test)
	}
}
