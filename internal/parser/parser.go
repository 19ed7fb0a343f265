// Package parser builds the declaration forest of a record-language document.
//
// Grammar:
//
//	Object    = ClassDecl | RecordDef | Let | Include
//	ClassDecl = ("class" | "multiclass") Ident ["<" Arg ("," Arg)* ">"]
//	            [":" TypeRef ("," TypeRef)*] ("{" ... "}" | ";")
//	Arg       = TypeRef Ident ["=" Value]
//	RecordDef = ("def" | "defm") Ident [":" TypeRef ("," TypeRef)*] ["{" ... "}" | ";"]
//	Let       = "let" Ident "=" Value ("," Ident "=" Value)* "in" ("{" Object* "}" | Object)
//	Include   = "include" String
//	TypeRef   = Ident ["<" Value ("," Value)* ">"]
//	Value     = Int | String | "[" Value,* "]" | "!" "strconcat" "(" Value,* ")" | TypeRef
//
// Class and record bodies are consumed without interpretation. There is no
// error recovery: the first mismatch aborts the parse.
package parser

import (
	"github.com/roach88/tdgen/internal/ir"
	"github.com/roach88/tdgen/internal/lexer"
)

// Parser is a recursive-descent parser over one token list. Bracket tokens
// are parsed by child parsers over their Children.
type Parser struct {
	tokens []lexer.Token
	pos    int
	end    ir.Pos // reported for errors at end of input
}

func newParser(tokens []lexer.Token, end ir.Pos) *Parser {
	return &Parser{tokens: tokens, end: end}
}

// Parse lexes and parses one document.
func Parse(file, src string) ([]ir.Object, error) {
	toks, err := lexer.Lex(file, src)
	if err != nil {
		return nil, err
	}
	return ParseTokens(toks, ir.Pos{File: file})
}

// ParseTokens parses an already lexed token list. end is the position
// reported when input runs out.
func ParseTokens(toks []lexer.Token, end ir.Pos) ([]ir.Object, error) {
	return newParser(toks, end).parseObjects()
}

// peek returns the current token without consuming it.
func (p *Parser) peek() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Kind: lexer.EOF, Pos: p.endPos()}
	}
	return p.tokens[p.pos]
}

func (p *Parser) endPos() ir.Pos {
	if len(p.tokens) > 0 {
		return p.tokens[len(p.tokens)-1].Pos
	}
	return p.end
}

func (p *Parser) atEnd() bool {
	return p.pos >= len(p.tokens)
}

// advance consumes and returns the current token.
func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if !p.atEnd() {
		p.pos++
	}
	return tok
}

// accept consumes the current token if it has the given kind.
func (p *Parser) accept(kind lexer.Kind) (lexer.Token, bool) {
	if p.peek().Kind == kind {
		return p.advance(), true
	}
	return lexer.Token{}, false
}

// acceptKeyword consumes the current token if it is the identifier word.
func (p *Parser) acceptKeyword(word string) bool {
	tok := p.peek()
	if tok.Kind == lexer.Ident && tok.Text == word {
		p.advance()
		return true
	}
	return false
}

// expect consumes a token of the given kind or fails naming what was wanted.
func (p *Parser) expect(kind lexer.Kind, what string) (lexer.Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		return tok, unexpected(tok, what)
	}
	return p.advance(), nil
}

func (p *Parser) parseObjects() ([]ir.Object, error) {
	var objects []ir.Object
	for !p.atEnd() {
		obj, err := p.parseObject()
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

func (p *Parser) parseObject() (ir.Object, error) {
	kw, err := p.expect(lexer.Ident, "keyword")
	if err != nil {
		return nil, err
	}

	switch kw.Text {
	case "class", "multiclass":
		return p.parseClass(kw)
	case "def", "defm":
		return p.parseRecord(kw)
	case "let":
		return p.parseLet(kw)
	case "include":
		return p.parseInclude(kw)
	default:
		return nil, &Error{
			Code:    ErrCodeUnexpectedKeyword,
			Message: "unexpected keyword " + kw.Text,
			Token:   kw,
		}
	}
}

func (p *Parser) parseClass(kw lexer.Token) (*ir.ClassDecl, error) {
	name, err := p.expect(lexer.Ident, "class name")
	if err != nil {
		return nil, err
	}

	cls := &ir.ClassDecl{
		Name:  name.Text,
		Multi: kw.Text == "multiclass",
		Args:  []ir.TemplateArg{},
		Bases: []ir.TDType{},
		Pos:   kw.Pos,
	}

	if angle, ok := p.accept(lexer.Angle); ok {
		cls.Args, err = parseTemplateArgs(angle)
		if err != nil {
			return nil, err
		}
	}

	if _, ok := p.accept(lexer.Colon); ok {
		cls.Bases, err = p.parseInheritance()
		if err != nil {
			return nil, err
		}
	}
	return cls, p.parseTerminator(true)
}

func (p *Parser) parseRecord(kw lexer.Token) (*ir.RecordDef, error) {
	name, err := p.expect(lexer.Ident, "record name")
	if err != nil {
		return nil, err
	}

	rec := &ir.RecordDef{
		Name:  name.Text,
		Multi: kw.Text == "defm",
		Bases: []ir.TDType{},
		Pos:   kw.Pos,
	}

	if _, ok := p.accept(lexer.Colon); ok {
		rec.Bases, err = p.parseInheritance()
		if err != nil {
			return nil, err
		}
	}
	return rec, p.parseTerminator(false)
}

// parseTerminator consumes ";" or a body in braces. When required is false
// a missing terminator is allowed.
func (p *Parser) parseTerminator(required bool) error {
	if _, ok := p.accept(lexer.Semicolon); ok {
		return nil
	}
	if _, ok := p.accept(lexer.Brace); ok {
		return nil
	}
	if !required {
		return nil
	}
	return unexpected(p.peek(), "';' or '{'")
}

// parseInheritance reads TypeRef ("," TypeRef)*.
func (p *Parser) parseInheritance() ([]ir.TDType, error) {
	var bases []ir.TDType
	for {
		ref, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		bases = append(bases, ref)
		if _, ok := p.accept(lexer.Comma); !ok {
			return bases, nil
		}
	}
}

// parseTypeRef reads Ident ["<" Value,* ">"].
func (p *Parser) parseTypeRef() (ir.TDType, error) {
	name, err := p.expect(lexer.Ident, "type name")
	if err != nil {
		return ir.TDType{}, err
	}
	ref := ir.TDType{Name: name.Text}
	if angle, ok := p.accept(lexer.Angle); ok {
		ref.Args, err = parseValueList(angle)
		if err != nil {
			return ir.TDType{}, err
		}
	}
	return ref, nil
}

// parseTemplateArgs reads the contents of a class's angle brackets.
func parseTemplateArgs(angle lexer.Token) ([]ir.TemplateArg, error) {
	sub := newParser(angle.Children, angle.Pos)
	args := []ir.TemplateArg{}
	for !sub.atEnd() {
		typ, err := sub.parseTypeRef()
		if err != nil {
			return nil, err
		}
		name, err := sub.expect(lexer.Ident, "template argument name")
		if err != nil {
			return nil, err
		}
		arg := ir.TemplateArg{Type: typ, Name: name.Text}
		if _, ok := sub.accept(lexer.Equals); ok {
			arg.Default, err = sub.parseValue()
			if err != nil {
				return nil, err
			}
		}
		args = append(args, arg)

		if sub.atEnd() {
			break
		}
		if _, err := sub.expect(lexer.Comma, "',' or '>'"); err != nil {
			return nil, err
		}
	}
	return args, nil
}

func (p *Parser) parseLet(kw lexer.Token) (*ir.LetGroup, error) {
	group := &ir.LetGroup{Pos: kw.Pos, Objects: []ir.Object{}}
	for {
		name, err := p.expect(lexer.Ident, "binding name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Equals, "'='"); err != nil {
			return nil, err
		}
		// The value is parsed for well-formedness and then dropped.
		if _, err := p.parseValue(); err != nil {
			return nil, err
		}
		group.Bindings = append(group.Bindings, name.Text)

		if _, ok := p.accept(lexer.Comma); !ok {
			break
		}
	}

	if !p.acceptKeyword("in") {
		return nil, unexpected(p.peek(), "'in'")
	}

	if brace, ok := p.accept(lexer.Brace); ok {
		objects, err := newParser(brace.Children, brace.Pos).parseObjects()
		if err != nil {
			return nil, err
		}
		group.Objects = append(group.Objects, objects...)
		return group, nil
	}

	obj, err := p.parseObject()
	if err != nil {
		return nil, err
	}
	group.Objects = append(group.Objects, obj)
	return group, nil
}

func (p *Parser) parseInclude(kw lexer.Token) (*ir.Include, error) {
	path, err := p.expect(lexer.String, "include path string")
	if err != nil {
		return nil, err
	}
	return &ir.Include{Path: path.Text, Pos: kw.Pos}, nil
}
