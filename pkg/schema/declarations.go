package schema

import (
	"strings"

	"github.com/elliotchance/orderedmap/v2"
)

// DefaultSizeHint is the memory hint of structs without an `about` clause.
const DefaultSizeHint = 160

type Visibility uint8

const (
	VisibilityPublic Visibility = 1 << iota
	VisibilityInternal
	VisibilityPrivate
	VisibilityProtected
)

func (v Visibility) Has(flag Visibility) bool {
	return v&flag != 0
}

// Exported reports whether the struct is visible outside of its package.
func (v Visibility) Exported() bool {
	return v.Has(VisibilityPublic)
}

// Scope keeps struct declarations in declaration order.
type Scope struct {
	*orderedmap.OrderedMap[string, *Struct]
}

func NewScope() Scope {
	return Scope{OrderedMap: orderedmap.NewOrderedMap[string, *Struct]()}
}

// Structs returns the declarations in order.
func (s Scope) Structs() []*Struct {
	out := make([]*Struct, 0, s.Len())
	for el := s.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value)
	}
	return out
}

// File is a parsed schema.
type File struct {
	Name    string
	Package string
	Usings  []string
	Structs Scope
}

// Lookup finds a struct by name in the top level scope or, for dotted names, in nested scopes.
func (f *File) Lookup(name string) (*Struct, bool) {
	scope := f.Structs
	var found *Struct
	for _, part := range strings.Split(name, ".") {
		s, ok := scope.Get(part)
		if !ok {
			return nil, false
		}
		found = s
		scope = s.Nested
	}
	return found, found != nil
}

type Struct struct {
	Name                 string
	Doc                  string
	Visibility           Visibility
	IsRef                bool
	IsFinal              bool
	IsNested             bool
	SizeHint             int
	Nested               Scope
	Fields               []*Field
	FieldIndexContinuous bool
	Pos                  Position
}

type Field struct {
	Name      string
	Index     int
	Type      *TypeName
	RealType  *TypeName
	Doc       string
	NeverNull bool
	Obsolete  bool
	Pos       Position
}

// TypeName is a field type as written, `T?` marks a nullable element and every `[]` adds an array rank.
type TypeName struct {
	Raw       string
	Name      string
	Args      []*TypeName
	Nullable  bool
	ArrayRank int
	Keyword   TokenType
}

// IsKeyword reports whether the type is one of the built-in types.
func (t *TypeName) IsKeyword() bool {
	return t.Keyword.IsTypeKeyword()
}

// IsGeneric reports whether the type has generic arguments.
func (t *TypeName) IsGeneric() bool {
	return len(t.Args) > 0
}

func (t *TypeName) String() string {
	return t.Raw
}
