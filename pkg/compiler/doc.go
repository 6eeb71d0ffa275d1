// Package compiler turns LOLCODE-flavoured markup into an HTML5 document.
//
// Pipeline: source → Lexer (pulled one token at a time) → Parser, which
// resolves variables in a Scope and emits straight into a Document → HTML.
//
// A compilation either returns the complete document or a single *Error of
// kind LexicalError, SyntaxError or SemanticError; partial output is never
// returned.
package compiler
