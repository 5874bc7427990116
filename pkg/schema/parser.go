package schema

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/wavesplatform/goaccel/pkg/errs"
)

// Parse builds a file declaration from tokens. Parsing stops at the first error,
// the returned file is nil in that case.
func Parse(file string, tokens []Token) (*File, Diagnostics) {
	p := &parser{file: file, tokens: tokens, i: -1}
	f := p.parse()
	if p.failed {
		return nil, p.diags
	}
	return f, p.diags
}

// ParseFile scans and parses a schema source.
func ParseFile(file string, src []byte) (*File, Diagnostics) {
	tokens, diags := Scan(file, src)
	if diags.HasErrors() {
		return nil, diags
	}
	f, more := Parse(file, tokens)
	return f, append(diags, more...)
}

type parser struct {
	file   string
	tokens []Token
	i      int
	diags  Diagnostics
	failed bool
}

func (p *parser) parse() *File {
	f := &File{Name: p.file, Structs: NewScope()}
	p.skipUseless()
	f.Package = p.packageDecl()

usings:
	for p.next() {
		tok := p.current()
		switch tok.Type {
		case Document, Semicolon:
			continue
		case UsingKeyword:
			if u := p.dottedName(); u != "" && p.expect(Semicolon, CodeMissingSemicolon, "expected ';' after using declaration") {
				f.Usings = append(f.Usings, u)
			}
		case PackageKeyword:
			p.errorf(tok, CodeInvalidPackage, "package must be declared once at the beginning of the file")
		default:
			p.back()
			break usings
		}
	}

	for p.next() {
		tok := p.current()
		switch {
		case tok.Type == Document || tok.Type == Semicolon:
			continue
		case tok.Type == PackageKeyword:
			p.errorf(tok, CodeInvalidPackage, "package must be declared once at the beginning of the file")
		case tok.Type.IsStructModifier() || tok.Type == StructKeyword:
			p.back()
			if s := p.structDecl(false); s != nil {
				p.declare(f.Structs, s)
			}
		default:
			p.errorf(tok, CodeInvalidToken, "unexpected %s", tok.Type)
		}
	}
	return f
}

func (p *parser) skipUseless() {
	for p.next() {
		switch p.current().Type {
		case Semicolon, Document:
			continue
		default:
			p.back()
			return
		}
	}
}

func (p *parser) packageDecl() string {
	if !p.peek(PackageKeyword) {
		return ""
	}
	p.next()
	name := p.dottedName()
	if name == "" {
		return ""
	}
	if !p.expect(Semicolon, CodeMissingSemicolon, "expected ';' after package declaration") {
		return ""
	}
	return name
}

// dottedName reads `a.b.c`.
func (p *parser) dottedName() string {
	var sb strings.Builder
	last := Dot
	for p.next() {
		tok := p.current()
		if (tok.Type == Identifier || tok.Type == Dot) && tok.Type != last {
			sb.WriteString(tok.Raw)
			last = tok.Type
			continue
		}
		p.back()
		break
	}
	if sb.Len() == 0 {
		p.errorf(p.current(), CodeMissingIdentifier, "expected identifier")
	}
	return sb.String()
}

func (p *parser) structDecl(nested bool) *Struct {
	s := &Struct{
		SizeHint:             DefaultSizeHint,
		IsNested:             nested,
		Nested:               NewScope(),
		FieldIndexContinuous: true,
	}
	if doc := p.current(); doc.Type == Document {
		s.Doc = doc.Raw
	}

	seen := make(map[TokenType]bool)
	for !p.failed {
		if !p.next() {
			p.errorf(p.current(), CodeInvalidToken, "expected struct keyword")
			return nil
		}
		tok := p.current()
		if tok.Type == StructKeyword {
			s.Pos = tok.Pos
			break
		}
		if !tok.Type.IsStructModifier() {
			p.errorf(tok, CodeInvalidToken, "unexpected %s, expected struct keyword", tok.Type)
			return nil
		}
		if seen[tok.Type] {
			p.errorf(tok, CodeRepeatedKeyword, "repeated modifier %s", tok.Raw)
			return nil
		}
		if !p.checkAccess(tok, seen, nested) {
			return nil
		}
		seen[tok.Type] = true
	}
	if p.failed {
		return nil
	}
	s.Visibility = visibility(seen)
	s.IsRef = seen[RefKeyword]
	s.IsFinal = seen[FinalKeyword]
	if s.IsFinal && !s.IsRef {
		p.errorf(p.current(), CodeFinalWithoutRef, "final modifier requires ref")
		return nil
	}

	if !p.expect(Identifier, CodeMissingIdentifier, "expected struct name") {
		return nil
	}
	s.Name = p.current().Raw

	if p.peek(AboutKeyword) {
		p.next()
		size, ok := p.intLiteral()
		if !ok {
			return nil
		}
		if size == 0 {
			p.warnf(p.current(), CodeZeroSizeHint, "memory size hint of %s should be positive", s.Name)
		}
		s.SizeHint = size
	}

	if !p.expect(OpenBrace, CodeMissingOpenBrace, "expected '{'") {
		return nil
	}
	index := 0
body:
	for p.next() {
		tok := p.current()
		switch {
		case tok.Type == Document || tok.Type == Semicolon:
			continue
		case tok.Type == VarKeyword:
			p.back()
			index++
			f := p.fieldDecl(&index)
			if f == nil {
				return nil
			}
			s.Fields = append(s.Fields, f)
		case tok.Type.IsStructModifier() || tok.Type == StructKeyword:
			p.back()
			n := p.structDecl(true)
			if n == nil {
				return nil
			}
			if !p.declare(s.Nested, n) {
				return nil
			}
		default:
			p.back()
			break body
		}
	}
	if p.failed || !p.expect(CloseBrace, CodeMissingCloseBrace, "expected '}'") {
		return nil
	}
	continuous, ok := p.checkFieldIndexes(s)
	if !ok {
		return nil
	}
	s.FieldIndexContinuous = continuous
	if !continuous {
		p.warnf(p.current(), CodeNonContinuousIndex, "field indexes of %s are not continuous", s.Name)
	}
	return s
}

// checkAccess validates an access modifier against the ones already seen.
func (p *parser) checkAccess(tok Token, seen map[TokenType]bool, nested bool) bool {
	var conflicts []TokenType
	switch tok.Type {
	case PublicKeyword:
		conflicts = []TokenType{InternalKeyword, PrivateKeyword, ProtectedKeyword}
	case InternalKeyword:
		conflicts = []TokenType{PublicKeyword, PrivateKeyword}
	case PrivateKeyword:
		conflicts = []TokenType{PublicKeyword, InternalKeyword}
	case ProtectedKeyword:
		conflicts = []TokenType{PublicKeyword}
	default:
		return true
	}
	for _, c := range conflicts {
		if seen[c] {
			p.errorf(tok, CodeConflictingAccess, "%s conflicts with %s", tok.Raw, c)
			return false
		}
	}
	switch {
	case tok.Type == PrivateKeyword && !nested:
		p.errorf(tok, CodePrivateNotNested, "private is only allowed on nested structs")
		return false
	case tok.Type == ProtectedKeyword && !nested:
		p.errorf(tok, CodeProtectedNotNested, "protected is only allowed on nested structs")
		return false
	}
	return true
}

func visibility(seen map[TokenType]bool) Visibility {
	var v Visibility
	if seen[PublicKeyword] {
		v |= VisibilityPublic
	}
	if seen[InternalKeyword] {
		v |= VisibilityInternal
	}
	if seen[PrivateKeyword] {
		v |= VisibilityPrivate
	}
	if seen[ProtectedKeyword] {
		v |= VisibilityProtected
	}
	if v == 0 {
		return VisibilityInternal
	}
	return v
}

func (p *parser) fieldDecl(index *int) *Field {
	f := &Field{}
	if doc := p.current(); doc.Type == Document {
		f.Doc = doc.Raw
	}
	p.next() // var
	f.Pos = p.current().Pos
	if !p.expect(Identifier, CodeMissingIdentifier, "expected field name") {
		return nil
	}
	f.Name = p.current().Raw

	if p.peek(Bar) {
		p.next()
		n, ok := p.intLiteral()
		if !ok {
			return nil
		}
		if n <= 0 || n > errs.MaxFieldIndex {
			p.errorf(p.current(), CodeInvalidFieldIndex, "field index %d is out of range [1, %d]", n, errs.MaxFieldIndex)
			return nil
		}
		*index = n
	}
	f.Index = *index

	if !p.expect(Colon, CodeMissingColonOrBar, "expected ':' or '|'") {
		return nil
	}
	if p.peek(Asterisk) {
		p.next()
		f.NeverNull = true
	}
	if p.peek(OpenParen) {
		p.next()
		f.RealType = p.typeName()
		if f.RealType == nil {
			p.errorf(p.current(), CodeMissingIdentifier, "expected real type name")
			return nil
		}
		if !p.expect(CloseParen, CodeMissingCloseParen, "expected ')'") {
			return nil
		}
	}
	f.Type = p.typeName()
	if f.Type == nil {
		p.errorf(p.current(), CodeMissingType, "expected type name or '*'")
		return nil
	}
	if p.peek(ObsoleteKeyword) {
		p.next()
		f.Obsolete = true
	}
	if !p.expect(Semicolon, CodeMissingSemicolonOrObsolete, "expected ';' or obsolete") {
		return nil
	}
	return f
}

// typeName reads a type such as `int32`, `a.B`, `List<string>`, `T?[][]`.
// It returns nil when no valid type starts at the next token.
func (p *parser) typeName() *TypeName {
	t := &TypeName{}
	var raw, name strings.Builder
	last := Dot
	keyword := false
loop:
	for p.next() {
		tok := p.current()
		switch {
		case tok.Type == Identifier && last == Dot:
			raw.WriteString(tok.Raw)
			name.WriteString(tok.Raw)
			last = Identifier
		case tok.Type == Dot && last == Identifier && !keyword:
			raw.WriteString(tok.Raw)
			name.WriteString(tok.Raw)
			last = Dot
		case tok.Type == Question && (last == Identifier || last == GreaterThan) && !t.Nullable:
			raw.WriteString(tok.Raw)
			t.Nullable = true
			last = Question
		case tok.Type == OpenBracket && slices.Contains([]TokenType{Identifier, GreaterThan, Question, CloseBracket}, last):
			if !p.peek(CloseBracket) {
				return nil
			}
			p.next()
			raw.WriteString("[]")
			t.ArrayRank++
			last = CloseBracket
		case tok.Type == LessThan && last == Identifier && !keyword && !t.IsGeneric():
			raw.WriteString(tok.Raw)
			if !p.typeArgs(t, &raw) {
				return nil
			}
			last = GreaterThan
		case tok.Type.IsTypeKeyword() && raw.Len() == 0:
			raw.WriteString(tok.Raw)
			name.WriteString(tok.Raw)
			t.Keyword = tok.Type
			keyword = true
			last = Identifier
		default:
			p.back()
			break loop
		}
	}
	if raw.Len() == 0 || last == Dot {
		return nil
	}
	t.Raw = raw.String()
	t.Name = name.String()
	return t
}

func (p *parser) typeArgs(t *TypeName, raw *strings.Builder) bool {
	for {
		arg := p.typeName()
		if arg == nil {
			return false
		}
		t.Args = append(t.Args, arg)
		raw.WriteString(arg.Raw)
		if !p.next() {
			return false
		}
		switch tok := p.current(); tok.Type {
		case Comma:
			raw.WriteString(", ")
		case GreaterThan:
			raw.WriteString(tok.Raw)
			return true
		default:
			return false
		}
	}
}

func (p *parser) intLiteral() (int, bool) {
	if !p.expect(IntLiteral, CodeMissingIntLiteral, "expected integer literal") {
		return 0, false
	}
	n, err := strconv.Atoi(p.current().Raw)
	if err != nil {
		p.errorf(p.current(), CodeMissingIntLiteral, "integer literal %s is out of range", p.current().Raw)
		return 0, false
	}
	return n, true
}

// checkFieldIndexes reports whether the indexes of s are continuous, false ok means a duplicate was found.
func (p *parser) checkFieldIndexes(s *Struct) (continuous, ok bool) {
	if len(s.Fields) < 2 {
		return true, true
	}
	indexes := make([]int, len(s.Fields))
	for i, f := range s.Fields {
		indexes[i] = f.Index
	}
	slices.Sort(indexes)
	continuous = true
	for i := 1; i < len(indexes); i++ {
		switch indexes[i] - indexes[i-1] {
		case 0:
			p.errorf(p.current(), CodeDuplicateFieldIndex, "field index %d is declared more than once in %s", indexes[i], s.Name)
			return false, false
		case 1:
		default:
			continuous = false
		}
	}
	return continuous, true
}

func (p *parser) declare(scope Scope, s *Struct) bool {
	if _, ok := scope.Get(s.Name); ok {
		p.diags = append(p.diags, Diagnostic{
			Severity: SeverityError,
			Code:     CodeDuplicateStruct,
			Message:  fmt.Sprintf("struct %s is already declared in this scope", s.Name),
			File:     p.file,
			Pos:      s.Pos,
		})
		p.failed = true
		return false
	}
	scope.Set(s.Name, s)
	return true
}

// expect consumes the next token if it has type t, otherwise reports code.
func (p *parser) expect(t TokenType, code, message string) bool {
	if p.peek(t) {
		p.next()
		return true
	}
	p.errorf(p.current(), code, "%s", message)
	return false
}

func (p *parser) peek(t TokenType) bool {
	i := p.i + 1
	return i >= 0 && i < len(p.tokens) && p.tokens[i].Type == t
}

func (p *parser) next() bool {
	if p.failed || p.i >= len(p.tokens)-1 {
		return false
	}
	p.i++
	return true
}

func (p *parser) back() {
	if !p.failed && p.i > -1 {
		p.i--
	}
}

// current returns the token under the cursor, the first or the last one when the cursor is out of range.
func (p *parser) current() Token {
	switch {
	case len(p.tokens) == 0:
		return Token{Pos: Position{Line: 1, Column: 1}}
	case p.i < 0:
		return Token{Pos: p.tokens[0].Pos}
	case p.i >= len(p.tokens):
		return p.tokens[len(p.tokens)-1]
	default:
		return p.tokens[p.i]
	}
}

func (p *parser) errorf(tok Token, code, format string, args ...any) {
	p.diags = append(p.diags, Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		File:     p.file,
		Pos:      tok.Pos,
	})
	p.failed = true
}

func (p *parser) warnf(tok Token, code, format string, args ...any) {
	p.diags = append(p.diags, Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		File:     p.file,
		Pos:      tok.Pos,
	})
}
