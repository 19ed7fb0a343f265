package lexer

import (
	"fmt"
	"strconv"

	"github.com/roach88/tdgen/internal/ir"
)

// Kind identifies the category of a lexed token.
type Kind int

const (
	EOF Kind = iota // sentinel: end of input, never produced by Lex

	// Literals
	Ident  // [A-Za-z0-9_]+
	Int    // decimal or hex integer literal
	String // "..."

	// Punctuation
	Colon     // :
	Comma     // ,
	Semicolon // ;
	Equals    // =
	Bang      // !

	// Bracket families; Children holds the enclosed tokens.
	Angle  // < ... >
	Paren  // ( ... )
	Brace  // { ... }
	Square // [ ... ]
)

var kindNames = map[Kind]string{
	EOF:       "end of input",
	Ident:     "identifier",
	Int:       "integer",
	String:    "string",
	Colon:     "':'",
	Comma:     "','",
	Semicolon: "';'",
	Equals:    "'='",
	Bang:      "'!'",
	Angle:     "'<...>'",
	Paren:     "'(...)'",
	Brace:     "'{...}'",
	Square:    "'[...]'",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsBracket reports whether tokens of this kind carry children.
func (k Kind) IsBracket() bool {
	return k == Angle || k == Paren || k == Brace || k == Square
}

// Token is one lexed token. Bracket tokens own their nested tokens.
type Token struct {
	Kind     Kind
	Text     string // identifier text or unquoted string contents
	Int      int64  // value of an Int token
	Pos      ir.Pos // position of the first character (the opener for brackets)
	Children []Token
}

func (t Token) String() string {
	switch t.Kind {
	case Ident:
		return t.Text
	case Int:
		return strconv.FormatInt(t.Int, 10)
	case String:
		return strconv.Quote(t.Text)
	default:
		return t.Kind.String()
	}
}

// closers maps each opening bracket to its kind and closing rune.
var closers = map[rune]struct {
	kind  Kind
	close rune
}{
	'<': {Angle, '>'},
	'(': {Paren, ')'},
	'{': {Brace, '}'},
	'[': {Square, ']'},
}

var punctuation = map[rune]Kind{
	':': Colon,
	',': Comma,
	';': Semicolon,
	'=': Equals,
	'!': Bang,
}
