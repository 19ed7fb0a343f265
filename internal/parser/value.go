package parser

import (
	"github.com/roach88/tdgen/internal/ir"
	"github.com/roach88/tdgen/internal/lexer"
)

// parseValue reads one Value.
func (p *Parser) parseValue() (ir.TDValue, error) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.Int:
		p.advance()
		return ir.IntValue(tok.Int), nil
	case lexer.String:
		p.advance()
		return ir.StringValue(tok.Text), nil
	case lexer.Square:
		p.advance()
		elems, err := parseValueList(tok)
		if err != nil {
			return nil, err
		}
		return ir.ListValue(elems), nil
	case lexer.Bang:
		p.advance()
		return p.parseBangOperator()
	case lexer.Ident:
		ref, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		return ir.TypeRefValue{Ref: ref}, nil
	default:
		return nil, unexpected(tok, "value")
	}
}

// parseBangOperator reads the operator after '!'. Only strconcat exists.
func (p *Parser) parseBangOperator() (ir.TDValue, error) {
	op, err := p.expect(lexer.Ident, "operator name after '!'")
	if err != nil {
		return nil, err
	}
	if op.Text != "strconcat" {
		return nil, &Error{Code: ErrCodeUnknownOperator, Message: "unknown operator !" + op.Text, Token: op}
	}
	paren, err := p.expect(lexer.Paren, "'(' after !strconcat")
	if err != nil {
		return nil, err
	}
	operands, err := parseValueList(paren)
	if err != nil {
		return nil, err
	}
	return ir.FoldConcat(operands), nil
}

// parseValueList reads the comma-separated values inside a bracket token.
// The returned slice is never nil.
func parseValueList(bracket lexer.Token) ([]ir.TDValue, error) {
	sub := newParser(bracket.Children, bracket.Pos)
	values := []ir.TDValue{}
	for !sub.atEnd() {
		v, err := sub.parseValue()
		if err != nil {
			return nil, err
		}
		values = append(values, v)

		if sub.atEnd() {
			break
		}
		if _, err := sub.expect(lexer.Comma, "','"); err != nil {
			return nil, err
		}
	}
	return values, nil
}
