package schema

import (
	"fmt"
	"strconv"
)

type TokenType uint8

const (
	Invalid TokenType = iota
	Document
	OpenBrace
	CloseBrace
	OpenBracket
	CloseBracket
	OpenParen
	CloseParen
	Semicolon
	Bar
	Asterisk
	Question
	Colon
	Dot
	Comma
	GreaterThan
	LessThan
	IntLiteral
	Identifier

	PackageKeyword
	UsingKeyword
	StructKeyword
	AboutKeyword
	VarKeyword
	ObsoleteKeyword

	PublicKeyword
	InternalKeyword
	PrivateKeyword
	ProtectedKeyword
	FinalKeyword
	RefKeyword

	BooleanKeyword
	Int8Keyword
	UInt8Keyword
	Int16Keyword
	UInt16Keyword
	Int32Keyword
	UInt32Keyword
	Int64Keyword
	UInt64Keyword
	Float32Keyword
	Float64Keyword
	Float128Keyword
	CharKeyword
	StringKeyword
	NIntKeyword
	NUIntKeyword
	VIntKeyword
	VUIntKeyword
)

var tokenNames = [...]string{
	Invalid:      "Invalid",
	Document:     "Document",
	OpenBrace:    "'{'",
	CloseBrace:   "'}'",
	OpenBracket:  "'['",
	CloseBracket: "']'",
	OpenParen:    "'('",
	CloseParen:   "')'",
	Semicolon:    "';'",
	Bar:          "'|'",
	Asterisk:     "'*'",
	Question:     "'?'",
	Colon:        "':'",
	Dot:          "'.'",
	Comma:        "','",
	GreaterThan:  "'>'",
	LessThan:     "'<'",
	IntLiteral:   "IntLiteral",
	Identifier:   "Identifier",
}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	if raw, ok := keywordNames[t]; ok {
		return raw
	}
	return "TokenType(" + strconv.Itoa(int(t)) + ")"
}

// IsTypeKeyword reports whether t names a built-in field type.
func (t TokenType) IsTypeKeyword() bool {
	return t >= BooleanKeyword && t <= VUIntKeyword
}

// IsStructModifier reports whether t may precede the struct keyword.
func (t TokenType) IsStructModifier() bool {
	return t >= PublicKeyword && t <= RefKeyword
}

// Position is a 1-based location in a schema file. Tabs count as four columns.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Token struct {
	Type TokenType
	Raw  string
	Pos  Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q at %s", t.Type, t.Raw, t.Pos)
}
