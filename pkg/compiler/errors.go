package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a compilation failure.
type ErrorKind int

const (
	LexicalError  ErrorKind = iota // malformed or unknown tag/word sequence
	SyntaxError                    // token order violates the grammar
	SemanticError                  // variable used without a visible definition
	InternalError                  // broken builder or scope invariant
)

var errorKindNames = [...]string{
	LexicalError:  "lexical error",
	SyntaxError:   "syntax error",
	SemanticError: "semantic error",
	InternalError: "internal error",
}

func (k ErrorKind) String() string {
	if int(k) >= 0 && int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the single error type returned by the compiler. Compilation stops
// at the first one.
type Error struct {
	Kind    ErrorKind
	Line    int    // 1-based; 0 when no position applies
	Msg     string
	Snippet string // trimmed source line, when available
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.String())
	sb.WriteString(": ")
	if e.Line > 0 {
		fmt.Fprintf(&sb, "line %d: ", e.Line)
	}
	sb.WriteString(e.Msg)
	if e.Snippet != "" {
		fmt.Fprintf(&sb, "\n  |> %s", e.Snippet)
	}
	return sb.String()
}

func newError(kind ErrorKind, line int, format string, args ...any) *Error {
	return &Error{Kind: kind, Line: line, Msg: fmt.Sprintf(format, args...)}
}

func isKind(err error, kind ErrorKind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == kind
}

// IsLexical reports whether err is a lexical error.
func IsLexical(err error) bool { return isKind(err, LexicalError) }

// IsSyntax reports whether err is a syntax error.
func IsSyntax(err error) bool { return isKind(err, SyntaxError) }

// IsSemantic reports whether err is a static-semantic error.
func IsSemantic(err error) bool { return isKind(err, SemanticError) }
