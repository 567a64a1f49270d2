package expr

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a compile failure.
type ErrorKind uint8

const (
	// LexError is raised while splitting the text into tokens.
	LexError ErrorKind = iota + 1
	// ParseError is raised while building the tree from tokens.
	ParseError
)

func (k ErrorKind) String() string {
	switch k {
	case LexError:
		return "lex error"
	case ParseError:
		return "parse error"
	}
	return "error"
}

// Sentinels for errors.Is.
var (
	ErrLex   = errors.New("lex error")
	ErrParse = errors.New("parse error")
)

// Error is a compile failure with its location in the expression text.
type Error struct {
	Kind ErrorKind

	// Offset is the byte offset in the expression text.
	Offset int

	// Token is the index of the offending token, or -1 for lex errors.
	Token int

	// Reason is a human-readable description.
	Reason string
}

func (e *Error) Error() string {
	if e.Kind == ParseError {
		return fmt.Sprintf("%s at token %d (offset %d): %s", e.Kind, e.Token, e.Offset, e.Reason)
	}
	return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Offset, e.Reason)
}

// Is matches ErrLex and ErrParse against the error kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrLex:
		return e.Kind == LexError
	case ErrParse:
		return e.Kind == ParseError
	}
	return false
}

func lexError(offset int, format string, args ...interface{}) *Error {
	return &Error{Kind: LexError, Offset: offset, Token: -1, Reason: fmt.Sprintf(format, args...)}
}

func parseError(tok Token, index int, format string, args ...interface{}) *Error {
	return &Error{Kind: ParseError, Offset: tok.Offset, Token: index, Reason: fmt.Sprintf(format, args...)}
}
