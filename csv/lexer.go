// Package csv parses comma-separated text into a typed data frame.
//
// Parsing is two-pass: records are first collected as raw fields, then
// each column's element type is inferred from the cells below the header
// and the values are materialised into a column-major DataFrame.
package csv

import (
	"fmt"
	"strings"

	"github.com/deepteams/nexus/lexer"
)

// TokenType enumerates the CSV token kinds.
type TokenType int

const (
	TokenInvalid TokenType = iota
	TokenEOF
	TokenEOR
	TokenComma
	TokenField
	TokenQuotedField
)

var tokenNames = [...]string{"INVALID", "EOF", "EOR", ",", "FIELD", "QFIELD"}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return "INVALID"
}

// Token is one lexeme of the CSV stream. Text is set for field tokens;
// quoted fields are decoded.
type Token struct {
	Type TokenType
	Text string
}

func (t Token) String() string {
	if t.Type == TokenField || t.Type == TokenQuotedField {
		return fmt.Sprintf("<%v:'%s'>", t.Type, t.Text)
	}
	return fmt.Sprintf("<%v>", t.Type)
}

// Lexer produces CSV tokens: fields, quoted fields, commas, and
// end-of-record markers on newlines.
type Lexer struct {
	lx *lexer.Lexer
}

// NewLexer returns a CSV lexer over the given text.
func NewLexer(text []byte) *Lexer { return &Lexer{lx: lexer.New(text)} }

// NewLexerString returns a CSV lexer over the given string.
func NewLexerString(text string) *Lexer { return &Lexer{lx: lexer.NewString(text)} }

func (cl *Lexer) errorf(format string, args ...any) error {
	return fmt.Errorf("Line %d, Column %d: "+format,
		append([]any{cl.lx.LineNo(), cl.lx.ColNo()}, args...)...)
}

// field consumes an unquoted field: everything up to the next comma,
// newline, or EOF. Double quotes are not allowed inside.
func (cl *Lexer) field() (Token, error) {
	start := cl.lx.Position()

	c := cl.lx.CurrentChar()
	for {
		if c == '"' {
			return Token{}, cl.errorf(`Unquoted fields can not contain "`)
		}
		c = cl.lx.Consume()
		if c == lexer.EOF || c == '\n' || c == ',' {
			break
		}
	}

	end := cl.lx.Position()
	return Token{Type: TokenField, Text: string(cl.lx.Text()[start:end])}, nil
}

// quotedField consumes a double-quoted field opening at the current '"'.
// An embedded "" decodes to one quote.
func (cl *Lexer) quotedField() (Token, error) {
	c := cl.lx.Consume() // skip the opening quote
	start := cl.lx.Position()

	closed := false
	for c != lexer.EOF {
		if c == '"' {
			c = cl.lx.Consume()
			if c != '"' {
				closed = true
				break
			}
		}
		c = cl.lx.Consume()
	}
	if !closed {
		return Token{}, cl.errorf(`Missing closing " for string`)
	}

	end := cl.lx.Position() - 1
	raw := string(cl.lx.Text()[start:end])
	text, err := FromDoubleQuoted(raw)
	if err != nil {
		return Token{}, cl.errorf("%v", err)
	}
	return Token{Type: TokenQuotedField, Text: text}, nil
}

// NextToken returns the next token of the stream, TokenEOF at the end.
func (cl *Lexer) NextToken() (Token, error) {
	c := cl.lx.CurrentChar()
	if c == lexer.EOF {
		return Token{Type: TokenEOF}, nil
	}

	switch c {
	case ',':
		cl.lx.Consume()
		return Token{Type: TokenComma}, nil
	case '\n':
		cl.lx.Consume()
		return Token{Type: TokenEOR}, nil
	case '"':
		return cl.quotedField()
	}
	return cl.field()
}

// FromDoubleQuoted decodes the body of a double-quoted CSV field,
// collapsing "" pairs to single quotes.
func FromDoubleQuoted(dquoted string) (string, error) {
	var b strings.Builder
	b.Grow(len(dquoted))
	for i := 0; i < len(dquoted); i++ {
		if dquoted[i] != '"' {
			b.WriteByte(dquoted[i])
			continue
		}
		i++
		if i >= len(dquoted) || dquoted[i] != '"' {
			return "", fmt.Errorf("csv: stray double quote in quoted field")
		}
		b.WriteByte('"')
	}
	return b.String(), nil
}

// ToDoubleQuoted encodes a string as a double-quoted CSV field.
func ToDoubleQuoted(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' {
			b.WriteString(`""`)
		} else {
			b.WriteByte(s[i])
		}
	}
	b.WriteByte('"')
	return b.String()
}
