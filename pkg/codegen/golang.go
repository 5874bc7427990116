package codegen

import (
	"go/token"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"github.com/stoewer/go-strcase"

	"github.com/wavesplatform/goaccel/pkg/schema"
)

const (
	accelImport     = "github.com/wavesplatform/goaccel/pkg/accel"
	generatedHeader = "Code generated by accelc. DO NOT EDIT."
)

type keywordType struct {
	goType  string
	method  string
	numeric bool
}

// keywordTypes maps built-in types to Go types and to the Writer/Reader method suffix.
// An empty method means the value goes through WriteValue and ReadValue.
var keywordTypes = map[schema.TokenType]keywordType{
	schema.BooleanKeyword:  {"bool", "Bool", false},
	schema.Int8Keyword:     {"int8", "Int8", true},
	schema.UInt8Keyword:    {"uint8", "UInt8", true},
	schema.Int16Keyword:    {"int16", "Int16", true},
	schema.UInt16Keyword:   {"uint16", "UInt16", true},
	schema.Int32Keyword:    {"int32", "Int32", true},
	schema.UInt32Keyword:   {"uint32", "UInt32", true},
	schema.Int64Keyword:    {"int64", "Int64", true},
	schema.UInt64Keyword:   {"uint64", "UInt64", true},
	schema.Float32Keyword:  {"float32", "Float32", true},
	schema.Float64Keyword:  {"float64", "Float64", true},
	schema.Float128Keyword: {"accel.Float128", "Float128", false},
	schema.CharKeyword:     {"accel.Char", "", false},
	schema.StringKeyword:   {"string", "String", false},
	schema.NIntKeyword:     {"int", "Int", true},
	schema.NUIntKeyword:    {"uint", "UInt", true},
	schema.VIntKeyword:     {"accel.VInt", "VInt", true},
	schema.VUIntKeyword:    {"accel.VUInt", "VUInt", true},
}

// GoGenerator emits Go structs implementing accel.Marshaler, accel.Unmarshaler and accel.SizeHinter.
type GoGenerator struct {
	// Package overrides the package name derived from the schema.
	Package string
}

func NewGoGenerator() *GoGenerator {
	return &GoGenerator{}
}

func (g *GoGenerator) Generate(f *schema.File) ([]byte, error) {
	if f == nil {
		return nil, errors.New("nil schema file")
	}
	pkg := g.Package
	if pkg == "" {
		pkg = PackageName(f)
	}
	gen := &goFile{
		file:  f,
		names: make(map[*schema.Struct]string),
		types: make(map[string]string),
		cd:    NewCoder(pkg),
	}
	return gen.generate()
}

// PackageName derives a Go package name from the schema package or, when absent, from the file name.
func PackageName(f *schema.File) string {
	name := f.Package
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		base := filepath.Base(f.Name)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	name = strings.ReplaceAll(strcase.SnakeCase(name), "_", "")
	name = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, name)
	switch {
	case name == "":
		return "schema"
	case !unicode.IsLetter([]rune(name)[0]):
		return "p" + name
	case token.IsKeyword(name):
		return name + "pkg"
	default:
		return name
	}
}

// reservedNames are the methods every generated struct gets.
var reservedNames = map[string]bool{
	"MarshalAccel":   true,
	"UnmarshalAccel": true,
	"AccelSizeHint":  true,
}

type goFile struct {
	file  *schema.File
	names map[*schema.Struct]string
	types map[string]string // Go type name -> qualified schema name
	cd    *Coder
}

func (g *goFile) generate() ([]byte, error) {
	g.cd.Comment(generatedHeader)
	if g.file.Name != "" {
		g.cd.Comment("source: %s", filepath.Base(g.file.Name))
	}
	g.cd.Import(accelImport)

	for _, s := range g.file.Structs.Structs() {
		if err := g.name(s, "", "", true); err != nil {
			return nil, err
		}
	}
	for _, s := range g.file.Structs.Structs() {
		if err := g.structDecl(s, nil); err != nil {
			return nil, err
		}
	}
	return g.cd.Bytes()
}

// name assigns Go names to s and its nested structs. Nested names are prefixed by the parent name.
// Private and protected structs, and everything nested in them, are unexported.
func (g *goFile) name(s *schema.Struct, parent, scope string, parentExported bool) error {
	n := strcase.UpperCamelCase(s.Name)
	if parent != "" {
		n = strcase.UpperCamelCase(parent) + n
	}
	exported := parentExported && !s.Visibility.Has(schema.VisibilityPrivate) && !s.Visibility.Has(schema.VisibilityProtected)
	if !exported {
		n = strcase.LowerCamelCase(n)
	}
	qualified := s.Name
	if scope != "" {
		qualified = scope + "." + s.Name
	}
	if other, ok := g.types[n]; ok {
		return errors.Errorf("type name %s of %s clashes with %s", n, qualified, other)
	}
	g.types[n] = qualified
	g.names[s] = n
	for _, nested := range s.Nested.Structs() {
		if err := g.name(nested, n, qualified, exported); err != nil {
			return err
		}
	}
	return nil
}

func (g *goFile) structDecl(s *schema.Struct, parents []*schema.Struct) error {
	chain := append(append([]*schema.Struct{}, parents...), s)
	name := g.names[s]

	fields := make([]goField, 0, len(s.Fields))
	seen := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		gf, err := g.field(f, chain)
		if err != nil {
			return errors.Wrapf(err, "%s.%s", s.Name, f.Name)
		}
		if reservedNames[gf.name] {
			return errors.Errorf("%s.%s: field name %s is reserved for a generated method", s.Name, f.Name, gf.name)
		}
		if other, ok := seen[gf.name]; ok {
			return errors.Errorf("%s.%s: field name %s clashes with %s", s.Name, f.Name, gf.name, other)
		}
		seen[gf.name] = f.Name
		fields = append(fields, gf)
	}

	g.doc(s.Doc)
	g.cd.Line("type %s struct {", name)
	for _, f := range fields {
		g.doc(f.decl.Doc)
		if f.decl.Obsolete {
			g.cd.Line("// Deprecated: %s is obsolete and is not serialized.", f.name)
		}
		g.cd.Line("%s %s `%s`", f.name, f.goType, f.tag())
	}
	g.cd.Line("}")
	g.cd.Line("")

	g.marshal(name, fields)
	g.unmarshal(name, fields)
	g.cd.Line("func (m *%s) AccelSizeHint() int {", name)
	g.cd.Line("return %d", s.SizeHint)
	g.cd.Line("}")
	g.cd.Line("")

	for _, nested := range s.Nested.Structs() {
		if err := g.structDecl(nested, chain); err != nil {
			return err
		}
	}
	return nil
}

type goField struct {
	decl     *schema.Field
	name     string
	goType   string
	method   string
	wireType string
	variable bool
}

func (f goField) tag() string {
	t := strconv.Itoa(f.decl.Index)
	if f.variable {
		t += ",var"
	}
	return `accel:"` + t + `"`
}

func (g *goFile) field(f *schema.Field, chain []*schema.Struct) (goField, error) {
	goType, err := g.goType(f.Type, chain, f.NeverNull)
	if err != nil {
		return goField{}, err
	}
	gf := goField{
		decl:     f,
		name:     strcase.UpperCamelCase(f.Name),
		goType:   goType,
		variable: f.Type.Keyword == schema.VIntKeyword || f.Type.Keyword == schema.VUIntKeyword,
	}
	if plainKeyword(f.Type) {
		gf.method = keywordTypes[f.Type.Keyword].method
	}
	if f.RealType != nil {
		if !plainKeyword(f.RealType) || !plainKeyword(f.Type) {
			return goField{}, errors.Errorf("facade %s of %s is not supported, both must be built-in types", f.RealType, f.Type)
		}
		wire, declared := keywordTypes[f.RealType.Keyword], keywordTypes[f.Type.Keyword]
		if wire.goType != declared.goType && !(wire.numeric && declared.numeric) {
			return goField{}, errors.Errorf("can not convert %s to %s", f.Type, f.RealType)
		}
		gf.method = wire.method
		gf.wireType = wire.goType
		gf.variable = f.RealType.Keyword == schema.VIntKeyword || f.RealType.Keyword == schema.VUIntKeyword
	}
	return gf, nil
}

func plainKeyword(t *schema.TypeName) bool {
	return t.IsKeyword() && !t.Nullable && t.ArrayRank == 0
}

func (g *goFile) goType(t *schema.TypeName, chain []*schema.Struct, neverNull bool) (string, error) {
	base, err := g.baseType(t, chain, neverNull)
	if err != nil {
		return "", err
	}
	return strings.Repeat("[]", t.ArrayRank) + base, nil
}

func (g *goFile) baseType(t *schema.TypeName, chain []*schema.Struct, neverNull bool) (string, error) {
	if t.IsKeyword() {
		kt := keywordTypes[t.Keyword]
		if t.Nullable {
			return "*" + kt.goType, nil
		}
		return kt.goType, nil
	}
	if t.IsGeneric() {
		return g.genericType(t, chain)
	}
	s, ok := g.resolve(t.Name, chain)
	if !ok {
		return "", errors.Errorf("unknown type %s", t.Name)
	}
	name := g.names[s]
	if t.Nullable || (s.IsRef && !neverNull) {
		return "*" + name, nil
	}
	return name, nil
}

func (g *goFile) genericType(t *schema.TypeName, chain []*schema.Struct) (string, error) {
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		s, err := g.goType(a, chain, false)
		if err != nil {
			return "", err
		}
		args[i] = s
	}
	switch t.Name {
	case "List", "Array", "IList", "ICollection", "IEnumerable":
		if len(args) != 1 {
			return "", errors.Errorf("%s expects one type argument, got %d", t.Name, len(args))
		}
		return "[]" + args[0], nil
	case "Dictionary", "Map", "IDictionary":
		if len(args) != 2 {
			return "", errors.Errorf("%s expects two type arguments, got %d", t.Name, len(args))
		}
		if !plainKeyword(t.Args[0]) {
			return "", errors.Errorf("map key %s must be a built-in type", t.Args[0])
		}
		return "map[" + args[0] + "]" + args[1], nil
	default:
		return "", errors.Errorf("unsupported generic type %s", t.Raw)
	}
}

// resolve looks a struct up from the innermost scope outwards.
func (g *goFile) resolve(name string, chain []*schema.Struct) (*schema.Struct, bool) {
	parts := strings.Split(name, ".")
	for i := len(chain) - 1; i >= 0; i-- {
		if s, ok := lookup(chain[i].Nested, parts); ok {
			return s, true
		}
		if len(parts) == 1 && chain[i].Name == name {
			return chain[i], true
		}
	}
	return lookup(g.file.Structs, parts)
}

func lookup(scope schema.Scope, parts []string) (*schema.Struct, bool) {
	var s *schema.Struct
	for _, p := range parts {
		next, ok := scope.Get(p)
		if !ok {
			return nil, false
		}
		s = next
		scope = s.Nested
	}
	return s, s != nil
}

func (g *goFile) marshal(name string, fields []goField) {
	g.cd.Line("func (m *%s) MarshalAccel(w *accel.Writer) error {", name)
	g.cd.Line("if h, ok := any(m).(accel.BeforeMarshaler); ok {")
	g.cd.Line("h.BeforeMarshalAccel()")
	g.cd.Line("}")
	for _, f := range fields {
		if f.decl.Obsolete {
			continue
		}
		switch {
		case f.method == "":
			g.cd.Line("if err := w.WriteValue(%d, m.%s); err != nil {", f.decl.Index, f.name)
		case f.wireType != "":
			g.cd.Line("if err := w.Write%s(%d, %s(m.%s)); err != nil {", f.method, f.decl.Index, f.wireType, f.name)
		default:
			g.cd.Line("if err := w.Write%s(%d, m.%s); err != nil {", f.method, f.decl.Index, f.name)
		}
		g.cd.Line("return err")
		g.cd.Line("}")
	}
	g.cd.Line("return nil")
	g.cd.Line("}")
	g.cd.Line("")
}

func (g *goFile) unmarshal(name string, fields []goField) {
	g.cd.Line("func (m *%s) UnmarshalAccel(r *accel.Reader) error {", name)
	g.cd.Line("*m = %s{}", name)
	g.cd.Line("for r.Next() {")
	g.cd.Line("var err error")
	g.cd.Line("switch r.Index() {")
	for _, f := range fields {
		g.cd.Line("case %d:", f.decl.Index)
		switch {
		case f.decl.Obsolete:
			g.cd.Line("err = r.Skip()")
		case f.method == "":
			g.cd.Line("err = r.ReadValue(&m.%s)", f.name)
		case f.wireType != "":
			g.cd.Line("var v %s", f.wireType)
			g.cd.Line("v, err = r.Read%s()", f.method)
			g.cd.Line("m.%s = %s(v)", f.name, f.goType)
		default:
			g.cd.Line("m.%s, err = r.Read%s()", f.name, f.method)
		}
	}
	g.cd.Line("default:")
	g.cd.Line("err = r.SkipUnknown(%q)", name)
	g.cd.Line("}")
	g.cd.Line("if err != nil {")
	g.cd.Line("return err")
	g.cd.Line("}")
	g.cd.Line("}")
	g.cd.Line("if err := r.Err(); err != nil {")
	g.cd.Line("return err")
	g.cd.Line("}")
	g.cd.Line("if h, ok := any(m).(accel.AfterUnmarshaler); ok {")
	g.cd.Line("return h.AfterUnmarshalAccel()")
	g.cd.Line("}")
	g.cd.Line("return nil")
	g.cd.Line("}")
	g.cd.Line("")
}

func (g *goFile) doc(text string) {
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		g.cd.Line("// %s", strings.TrimSpace(line))
	}
}
