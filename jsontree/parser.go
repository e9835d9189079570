package jsontree

import "fmt"

// Parser builds a node tree from a JSON token stream by recursive
// descent over the grammar
//
//	json   := array | object
//	value  := STRING | NUMBER | true | false | null | array | object
//	array  := '[' (value (',' value)*)? ']'
//	object := '{' (pair (',' pair)*)? '}'
//	pair   := STRING ':' value
type Parser struct {
	jlex  *Lexer
	token Token
}

// NewParser returns a parser reading from the given lexer.
func NewParser(jlex *Lexer) (*Parser, error) {
	jp := &Parser{jlex: jlex}
	if err := jp.consume(); err != nil {
		return nil, err
	}
	return jp, nil
}

// Parse parses a full JSON document and returns its root.
func (jp *Parser) Parse() (*Node, error) {
	switch jp.token.Type {
	case TokenLBracket:
		return jp.parseArray()
	case TokenLBrace:
		return jp.parseObject()
	}
	return nil, fmt.Errorf("jsontree: expecting array or object; found %v", jp.token)
}

// FromString parses the given JSON text.
func FromString(text string) (*Node, error) {
	jp, err := NewParser(NewLexerString(text))
	if err != nil {
		return nil, err
	}
	return jp.Parse()
}

// FromBytes parses the given JSON text.
func FromBytes(text []byte) (*Node, error) {
	jp, err := NewParser(NewLexer(text))
	if err != nil {
		return nil, err
	}
	return jp.Parse()
}

func (jp *Parser) consume() error {
	t, err := jp.jlex.NextToken()
	if err != nil {
		return err
	}
	jp.token = t
	return nil
}

// match consumes the expected token type and returns the node it
// produces, nil for punctuation.
func (jp *Parser) match(typ TokenType) (*Node, error) {
	if jp.token.Type != typ {
		return nil, fmt.Errorf("jsontree: expecting %v, found %v", typ, jp.token)
	}

	var n *Node
	switch typ {
	case TokenString:
		n = NewString(jp.token.Text)
	case TokenInteger:
		n = NewInteger(jp.token.Text)
	case TokenFPNum:
		n = NewFPNumber(jp.token.Text)
	case TokenTrue:
		n = NewTrue()
	case TokenFalse:
		n = NewFalse()
	case TokenNull:
		n = NewNull()
	}

	if err := jp.consume(); err != nil {
		return nil, err
	}
	return n, nil
}

// parseValue parses one value and returns its node.
func (jp *Parser) parseValue() (*Node, error) {
	switch jp.token.Type {
	case TokenString, TokenInteger, TokenFPNum, TokenTrue, TokenFalse, TokenNull:
		return jp.match(jp.token.Type)
	case TokenLBracket:
		return jp.parseArray()
	case TokenLBrace:
		return jp.parseObject()
	}
	return nil, fmt.Errorf("jsontree: expecting number, string, true, false, null, object or array, found %v", jp.token)
}

func (jp *Parser) parseArray() (*Node, error) {
	n := NewArray()
	if _, err := jp.match(TokenLBracket); err != nil {
		return nil, err
	}

	if jp.token.Type == TokenRBracket {
		_, err := jp.match(TokenRBracket)
		return n, err
	}

	for {
		value, err := jp.parseValue()
		if err != nil {
			return nil, err
		}
		n.AddChild(value)

		if jp.token.Type != TokenComma {
			break
		}
		if _, err := jp.match(TokenComma); err != nil {
			return nil, err
		}
	}

	if _, err := jp.match(TokenRBracket); err != nil {
		return nil, err
	}
	return n, nil
}

func (jp *Parser) parsePair(obj *Node) error {
	key, err := jp.match(TokenString)
	if err != nil {
		return err
	}
	if _, err := jp.match(TokenColon); err != nil {
		return err
	}
	value, err := jp.parseValue()
	if err != nil {
		return err
	}
	obj.AddChild(key)
	obj.AddChild(value)
	return nil
}

func (jp *Parser) parseObject() (*Node, error) {
	n := NewObject()
	if _, err := jp.match(TokenLBrace); err != nil {
		return nil, err
	}

	if jp.token.Type == TokenRBrace {
		_, err := jp.match(TokenRBrace)
		return n, err
	}

	for {
		if err := jp.parsePair(n); err != nil {
			return nil, err
		}
		if jp.token.Type != TokenComma {
			break
		}
		if _, err := jp.match(TokenComma); err != nil {
			return nil, err
		}
	}

	if _, err := jp.match(TokenRBrace); err != nil {
		return nil, err
	}
	return n, nil
}
