package schema

import (
	"fmt"
	"strings"
	"unicode"
)

const tabWidth = 4

var punctuation = map[rune]TokenType{
	'{': OpenBrace,
	'}': CloseBrace,
	'[': OpenBracket,
	']': CloseBracket,
	'(': OpenParen,
	')': CloseParen,
	'|': Bar,
	'*': Asterisk,
	'?': Question,
	':': Colon,
	';': Semicolon,
	'.': Dot,
	',': Comma,
	'<': LessThan,
	'>': GreaterThan,
}

// Scanner splits a schema source into tokens. It stops at the first error.
type Scanner struct {
	file  string
	src   []rune
	pos   int
	line  int
	col   int
	diags Diagnostics
}

func NewScanner(file string, src []byte) *Scanner {
	return &Scanner{
		file: file,
		src:  []rune(string(src)),
		line: 1,
	}
}

// Scan tokenizes the source of file.
func Scan(file string, src []byte) ([]Token, Diagnostics) {
	return NewScanner(file, src).Tokens()
}

// Tokens returns every token up to the end of the source or the first error.
func (s *Scanner) Tokens() ([]Token, Diagnostics) {
	tokens := make([]Token, 0, len(s.src)/4)
	for s.hasNext() {
		start := s.position()
		c := s.next()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == 0:
			continue
		case c == '-' && s.peek() == '-':
			s.next()
			tokens = append(tokens, s.document(start))
		case c == '/' && s.peek() == '/':
			s.skipLine()
		case unicode.IsLetter(c) || c == '_':
			tokens = append(tokens, s.word(c, start))
		case unicode.IsDigit(c):
			tokens = append(tokens, s.number(c, start))
		default:
			if t, ok := punctuation[c]; ok {
				tokens = append(tokens, Token{Type: t, Raw: string(c), Pos: start})
				continue
			}
			s.errorf(start, CodeInvalidChar, "invalid character %q", c)
		}
	}
	return tokens, s.diags
}

func (s *Scanner) word(first rune, start Position) Token {
	var sb strings.Builder
	sb.WriteRune(first)
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' {
			break
		}
		sb.WriteRune(s.next())
	}
	raw := sb.String()
	t, _, _ := LookupKeyword(raw)
	return Token{Type: t, Raw: raw, Pos: start}
}

func (s *Scanner) number(first rune, start Position) Token {
	var sb strings.Builder
	sb.WriteRune(first)
	for s.pos < len(s.src) && unicode.IsDigit(s.src[s.pos]) {
		sb.WriteRune(s.next())
	}
	return Token{Type: IntLiteral, Raw: sb.String(), Pos: start}
}

// document reads a `-- text --` block, the opening dashes are already consumed.
func (s *Scanner) document(start Position) Token {
	var sb strings.Builder
	closed := false
	for s.pos < len(s.src) {
		c := s.next()
		if c == '-' && s.peek() == '-' {
			s.next()
			closed = true
			break
		}
		sb.WriteRune(c)
	}
	if !closed {
		s.errorf(s.position(), CodeMissingDocumentEnd, "document is not closed with '--'")
	}
	return Token{Type: Document, Raw: strings.TrimSpace(sb.String()), Pos: start}
}

func (s *Scanner) skipLine() {
	for s.pos < len(s.src) {
		if s.next() == '\n' {
			return
		}
	}
}

func (s *Scanner) hasNext() bool {
	return s.pos < len(s.src) && !s.diags.HasErrors()
}

func (s *Scanner) next() rune {
	c := s.src[s.pos]
	s.pos++
	switch c {
	case '\n':
		s.line++
		s.col = 0
	case '\t':
		s.col += tabWidth
	case 0:
	default:
		s.col++
	}
	return c
}

func (s *Scanner) peek() rune {
	if s.pos >= len(s.src) {
		return 0
	}
	return s.src[s.pos]
}

// position is the location of the next rune.
func (s *Scanner) position() Position {
	return Position{Line: s.line, Column: s.col + 1}
}

func (s *Scanner) errorf(pos Position, code, format string, args ...any) {
	s.diags = append(s.diags, Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		File:     s.file,
		Pos:      pos,
	})
}
