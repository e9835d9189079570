// Package jsontree parses JSON text into a tagged node tree and prints it
// back, with bundle helpers converting library types (keypoints, numeric
// arrays) to and from JSON values.
//
// The tree intentionally stays close to the token stream: numbers keep
// their source text, and object members are stored as a string-key node
// followed by its value node in the parent's ordered child list.
package jsontree

import (
	"fmt"

	"github.com/deepteams/nexus/lexer"
)

// TokenType enumerates the JSON token kinds.
type TokenType int

const (
	TokenInvalid TokenType = iota
	TokenEOF
	TokenLBracket
	TokenRBracket
	TokenLBrace
	TokenRBrace
	TokenComma
	TokenColon
	TokenTrue
	TokenFalse
	TokenNull
	TokenInteger
	TokenFPNum
	TokenString
)

var tokenNames = [...]string{
	"INVALID", "EOF", "[", "]", "{", "}",
	",", ":", "true", "false", "null", "INTEGER", "FPNUM", "STRING",
}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return "INVALID"
}

// Token is one lexeme of the JSON stream. Text is set for INTEGER, FPNUM
// and STRING tokens; string text is fully unescaped.
type Token struct {
	Type TokenType
	Text string
}

func (t Token) String() string {
	switch t.Type {
	case TokenInteger, TokenFPNum, TokenString:
		return fmt.Sprintf("<%v:'%s'>", t.Type, t.Text)
	}
	return fmt.Sprintf("<%v>", t.Type)
}

// Lexer produces JSON tokens over a character lexer. Whitespace between
// tokens is skipped.
type Lexer struct {
	lx *lexer.Lexer
}

// NewLexer returns a JSON lexer over the given text.
func NewLexer(text []byte) *Lexer { return &Lexer{lx: lexer.New(text)} }

// NewLexerString returns a JSON lexer over the given string.
func NewLexerString(text string) *Lexer { return &Lexer{lx: lexer.NewString(text)} }

func isWhitespace(c int) bool {
	return c == '\n' || c == '\r' || c == '\t' || c == ' '
}

func (jl *Lexer) errorf(format string, args ...any) error {
	return fmt.Errorf("Line %d, Column %d: "+format,
		append([]any{jl.lx.LineNo(), jl.lx.ColNo()}, args...)...)
}

// matchKeyword consumes the remainder of a keyword whose first character
// is already current.
func (jl *Lexer) matchKeyword(rest string, typ TokenType) (Token, error) {
	jl.lx.Consume()
	if !jl.lx.Match(rest) {
		return Token{}, jl.errorf("Expecting '%s'!", rest)
	}
	return Token{Type: typ}, nil
}

// NextToken returns the next token of the stream, TokenEOF at the end.
func (jl *Lexer) NextToken() (Token, error) {
	for {
		c := jl.lx.CurrentChar()
		if c == lexer.EOF {
			return Token{Type: TokenEOF}, nil
		}
		if isWhitespace(c) {
			jl.lx.Consume()
			continue
		}

		switch c {
		case '[':
			jl.lx.Consume()
			return Token{Type: TokenLBracket}, nil
		case ']':
			jl.lx.Consume()
			return Token{Type: TokenRBracket}, nil
		case '{':
			jl.lx.Consume()
			return Token{Type: TokenLBrace}, nil
		case '}':
			jl.lx.Consume()
			return Token{Type: TokenRBrace}, nil
		case ',':
			jl.lx.Consume()
			return Token{Type: TokenComma}, nil
		case ':':
			jl.lx.Consume()
			return Token{Type: TokenColon}, nil
		case 't':
			return jl.matchKeyword("rue", TokenTrue)
		case 'f':
			return jl.matchKeyword("alse", TokenFalse)
		case 'n':
			return jl.matchKeyword("ull", TokenNull)
		case '"':
			raw, err := jl.lx.QuotedString()
			if err != nil {
				return Token{}, err
			}
			text, err := FromReadable(string(raw))
			if err != nil {
				return Token{}, jl.errorf("%v", err)
			}
			return Token{Type: TokenString, Text: text}, nil
		}

		if c == '-' || (c >= '0' && c <= '9') {
			text, numType, err := jl.lx.Number()
			if err != nil {
				return Token{}, err
			}
			if numType == lexer.Integer {
				return Token{Type: TokenInteger, Text: string(text)}, nil
			}
			return Token{Type: TokenFPNum, Text: string(text)}, nil
		}

		return Token{}, jl.errorf("Unexpected character while parsing JSON: '%c'", rune(c))
	}
}
