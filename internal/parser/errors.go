package parser

import (
	"fmt"

	"github.com/roach88/tdgen/internal/lexer"
)

// ErrorCode categorizes parse errors.
type ErrorCode string

const (
	ErrCodeUnexpectedToken   ErrorCode = "UNEXPECTED_TOKEN"
	ErrCodeUnexpectedKeyword ErrorCode = "UNEXPECTED_KEYWORD"
	ErrCodeUnexpectedEOF     ErrorCode = "UNEXPECTED_EOF"
	ErrCodeUnknownOperator   ErrorCode = "UNKNOWN_OPERATOR"
)

// Error is a fatal parse error. Token is the offending token; for
// ErrCodeUnexpectedEOF it is an EOF token positioned at the last input token.
type Error struct {
	Code    ErrorCode
	Message string
	Token   lexer.Token
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Token.Pos, e.Code, e.Message)
}

// unexpected builds the error for a token that does not match what.
func unexpected(tok lexer.Token, what string) *Error {
	if tok.Kind == lexer.EOF {
		return &Error{
			Code:    ErrCodeUnexpectedEOF,
			Message: fmt.Sprintf("expected %s, found end of input", what),
			Token:   tok,
		}
	}
	return &Error{
		Code:    ErrCodeUnexpectedToken,
		Message: fmt.Sprintf("expected %s, found %s", what, tok),
		Token:   tok,
	}
}
