// Package lexer converts record-language source into a token tree.
//
// Bracketed spans are folded into a single token whose Children hold the
// enclosed tokens, so the parser never tracks bracket depth itself.
package lexer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/tdgen/internal/ir"
)

// ErrorCode categorizes lexer failures.
type ErrorCode string

const (
	ErrCodeUnbalanced         ErrorCode = "UNBALANCED_BRACKET"
	ErrCodeUnterminatedString ErrorCode = "UNTERMINATED_STRING"
	ErrCodeUnterminatedBlock  ErrorCode = "UNTERMINATED_COMMENT"
	ErrCodeUnexpectedChar     ErrorCode = "UNEXPECTED_CHARACTER"
	ErrCodeBadInteger         ErrorCode = "BAD_INTEGER"
)

// Error is a fatal lexing error with its source position.
type Error struct {
	Code    ErrorCode
	Message string
	Pos     ir.Pos
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Code, e.Message)
}

// IsUnbalanced reports whether err is an unbalanced-bracket error.
func IsUnbalanced(err error) bool {
	var le *Error
	return errors.As(err, &le) && le.Code == ErrCodeUnbalanced
}

// frame is one open bracket: the list being built before it was opened,
// plus what is needed to close it.
type frame struct {
	outer []Token
	kind  Kind
	close rune
	pos   ir.Pos
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	file  string
	src   []rune
	pos   int // index of the next rune to consume
	line  int
	col   int
	stack []frame
	cur   []Token
}

// Lex tokenizes src. file is used only for positions in diagnostics.
func Lex(file, src string) ([]Token, error) {
	l := &Lexer{file: file, src: []rune(src), line: 1, col: 1}
	return l.run()
}

func (l *Lexer) run() ([]Token, error) {
	for {
		l.skipWhitespace()
		if l.pos >= len(l.src) {
			break
		}

		start := l.here()
		r := l.peek()

		switch {
		case r == '/':
			if err := l.skipComment(); err != nil {
				return nil, err
			}
		case r == '"':
			tok, err := l.scanString()
			if err != nil {
				return nil, err
			}
			l.cur = append(l.cur, tok)
		case isDigit(r) || (r == '-' && isDigit(l.peekAt(1))):
			tok, err := l.scanInt()
			if err != nil {
				return nil, err
			}
			l.cur = append(l.cur, tok)
		case isOpen(r):
			l.advance()
			c := closers[r]
			l.stack = append(l.stack, frame{outer: l.cur, kind: c.kind, close: c.close, pos: start})
			l.cur = nil
		case isClose(r):
			l.advance()
			if err := l.closeBracket(r, start); err != nil {
				return nil, err
			}
		default:
			if kind, ok := punctuation[r]; ok {
				l.advance()
				l.cur = append(l.cur, Token{Kind: kind, Pos: start})
				continue
			}
			if !isIdentRune(r) {
				return nil, &Error{
					Code:    ErrCodeUnexpectedChar,
					Message: fmt.Sprintf("unexpected character %q", r),
					Pos:     start,
				}
			}
			l.cur = append(l.cur, l.scanIdent())
		}
	}

	if len(l.stack) > 0 {
		open := l.stack[len(l.stack)-1]
		return nil, &Error{
			Code:    ErrCodeUnbalanced,
			Message: fmt.Sprintf("%s opened here is never closed", open.kind),
			Pos:     open.pos,
		}
	}
	return l.cur, nil
}

// closeBracket pops the innermost frame, wraps the finished list and
// appends it to the enclosing list.
func (l *Lexer) closeBracket(r rune, at ir.Pos) error {
	if len(l.stack) == 0 {
		return &Error{
			Code:    ErrCodeUnbalanced,
			Message: fmt.Sprintf("closing %q without an open bracket", r),
			Pos:     at,
		}
	}
	top := l.stack[len(l.stack)-1]
	if top.close != r {
		return &Error{
			Code:    ErrCodeUnbalanced,
			Message: fmt.Sprintf("closing %q does not match %s opened at %s", r, top.kind, top.pos),
			Pos:     at,
		}
	}
	l.stack = l.stack[:len(l.stack)-1]
	tok := Token{Kind: top.kind, Pos: top.pos, Children: l.cur}
	l.cur = append(top.outer, tok)
	return nil
}

func (l *Lexer) here() ir.Pos {
	return ir.Pos{File: l.file, Line: l.line, Col: l.col}
}

func (l *Lexer) peek() rune {
	return l.peekAt(0)
}

func (l *Lexer) peekAt(offset int) rune {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && isSpace(l.peek()) {
		l.advance()
	}
}

// skipComment discards a comment starting at '/'. "/*" opens a block
// comment; any other '/' comments out the rest of the line.
func (l *Lexer) skipComment() error {
	start := l.here()
	l.advance() // /
	if l.peek() == '*' {
		l.advance()
		for l.pos < len(l.src) {
			if l.peek() == '*' && l.peekAt(1) == '/' {
				l.advance()
				l.advance()
				return nil
			}
			l.advance()
		}
		return &Error{Code: ErrCodeUnterminatedBlock, Message: "unterminated block comment", Pos: start}
	}
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
	return nil
}

// scanString reads up to the next unescaped quote.
func (l *Lexer) scanString() (Token, error) {
	start := l.here()
	l.advance() // opening quote

	var b strings.Builder
	for l.pos < len(l.src) {
		r := l.advance()
		switch r {
		case '"':
			return Token{Kind: String, Text: b.String(), Pos: start}, nil
		case '\n':
			return Token{}, &Error{Code: ErrCodeUnterminatedString, Message: "newline in string literal", Pos: start}
		case '\\':
			if l.pos >= len(l.src) {
				break
			}
			b.WriteRune(unescape(l.advance()))
		default:
			b.WriteRune(r)
		}
	}
	return Token{}, &Error{Code: ErrCodeUnterminatedString, Message: "unterminated string literal", Pos: start}
}

func unescape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	default:
		return r
	}
}

// scanInt reads a greedy digit run, with an optional sign and 0x prefix.
func (l *Lexer) scanInt() (Token, error) {
	start := l.here()
	begin := l.pos
	if l.peek() == '-' {
		l.advance()
	}
	if l.peek() == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X') {
		l.advance()
		l.advance()
		for isHexDigit(l.peek()) {
			l.advance()
		}
	} else {
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	text := string(l.src[begin:l.pos])
	v, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		return Token{}, &Error{Code: ErrCodeBadInteger, Message: fmt.Sprintf("invalid integer %q", text), Pos: start}
	}
	return Token{Kind: Int, Int: v, Text: text, Pos: start}, nil
}

func (l *Lexer) scanIdent() Token {
	start := l.here()
	begin := l.pos
	for l.pos < len(l.src) && isIdentRune(l.peek()) {
		l.advance()
	}
	return Token{Kind: Ident, Text: string(l.src[begin:l.pos]), Pos: start}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isIdentRune(r rune) bool {
	return isDigit(r) || r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isOpen(r rune) bool {
	_, ok := closers[r]
	return ok
}

func isClose(r rune) bool {
	return r == '>' || r == ')' || r == '}' || r == ']'
}
