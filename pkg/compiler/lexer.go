package compiler

import (
	"strings"
	"unicode"
)

// tags maps an uppercased single tag word to its TokenType.
var tags = map[string]TokenType{
	"HAI":     HAI,
	"KTHXBYE": KTHXBYE,
	"OBTW":    OBTW,
	"TLDR":    TLDR,
	"MAEK":    MAEK,
	"OIC":     OIC,
	"GIMMEH":  GIMMEH,
	"MKAY":    MKAY,
}

// twoWordTags maps the lead word of a two-word tag to the word that must
// follow it and the resulting TokenType.
var twoWordTags = map[string]struct {
	second string
	tt     TokenType
}{
	"I":     {"HAZ", IHAZ},
	"IT":    {"IZ", ITIZ},
	"LEMME": {"SEE", LEMMESEE},
}

// keywords maps an uppercased bare word to its keyword TokenType.
var keywords = map[string]TokenType{
	"HEAD":     HEAD,
	"TITLE":    TITLE,
	"PARAGRAF": PARAGRAF,
	"BOLD":     BOLD,
	"ITALICS":  ITALICS,
	"LIST":     LIST,
	"ITEM":     ITEM,
	"NEWLINE":  NEWLINE,
	"SOUNDZ":   SOUNDZ,
	"VIDZ":     VIDZ,
}

// TokenSource yields tokens on demand. The parser pulls exactly one token
// each time its lookahead is consumed.
type TokenSource interface {
	Next() (Token, error)
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
	buf  []rune
}

// NewLexer returns a lexer positioned at the start of src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), pos: 0, line: 1}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.src)
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
	}
	return r
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() && isSpace(l.peek()) {
		l.advance()
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == ':' || r == '.' || r == '/' || r == '_'
}

// asciiUpper uppercases ASCII letters only; other runes pass through so that
// non-ASCII words can never fold onto a keyword.
func asciiUpper(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r - 'a' + 'A'
		}
		return r
	}, s)
}

// scanTagWord reads the letter run after '#' (or between the words of a
// two-word tag) and returns it uppercased.
func (l *Lexer) scanTagWord() string {
	l.buf = l.buf[:0]
	for !l.atEnd() && unicode.IsLetter(l.peek()) {
		l.buf = append(l.buf, l.advance())
	}
	return asciiUpper(string(l.buf))
}

// scanTag lexes a '#' tag. The '#' must still be at l.peek().
func (l *Lexer) scanTag() (Token, error) {
	line := l.line
	l.advance() // '#'

	word := l.scanTagWord()
	if pair, ok := twoWordTags[word]; ok {
		l.skipWhitespace()
		second := l.scanTagWord()
		if second != pair.second {
			if second == "" && l.atEnd() {
				return Token{}, newError(LexicalError, line, "expected '%s' after '#%s', got end of input", pair.second, word)
			}
			return Token{}, newError(LexicalError, line, "expected '%s' after '#%s', got '%s'", pair.second, word, second)
		}
		return Token{Type: pair.tt, Lexeme: pair.tt.String(), Line: line}, nil
	}

	if tt, ok := tags[word]; ok {
		return Token{Type: tt, Lexeme: tt.String(), Line: line}, nil
	}
	if IsVocabulary(word) {
		return Token{}, newError(LexicalError, line, "unknown tag '#%s': %s is a keyword and takes no '#'", word, word)
	}
	return Token{}, newError(LexicalError, line, "unknown tag '#%s'", word)
}

// scanWord collects a bare word: a keyword, a variable name or a URL-like run.
// The first letter must still be at l.peek().
func (l *Lexer) scanWord() Token {
	line := l.line
	l.buf = l.buf[:0]
	for !l.atEnd() && isWordRune(l.peek()) {
		l.buf = append(l.buf, l.advance())
	}
	word := string(l.buf)
	if kw, ok := keywords[asciiUpper(word)]; ok {
		return Token{Type: kw, Lexeme: kw.String(), Line: line}
	}
	return Token{Type: TEXT, Lexeme: word, Line: line}
}

// scanText reads verbatim text, newlines included, up to the next '#' or end
// of input.
func (l *Lexer) scanText() Token {
	line := l.line
	l.buf = l.buf[:0]
	for !l.atEnd() && l.peek() != '#' {
		l.buf = append(l.buf, l.advance())
	}
	text := strings.TrimSpace(string(l.buf))
	if text == "" {
		return Token{Type: EOF, Line: l.line}
	}
	return Token{Type: TEXT, Lexeme: text, Line: line}
}

// Next skips whitespace and returns the next Token. Once the input is
// exhausted it keeps returning EOF.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespace()
	if l.atEnd() {
		return Token{Type: EOF, Line: l.line}, nil
	}

	ch := l.peek()
	switch {
	case ch == '#':
		return l.scanTag()
	case unicode.IsLetter(ch):
		return l.scanWord(), nil
	default:
		return l.scanText(), nil
	}
}

// Lex tokenises src and returns all tokens including the final EOF token.
// It stops at the first lexical error.
func Lex(src string) ([]Token, error) {
	l := NewLexer(src)
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}

// IsVocabulary reports whether s spells a tag or keyword of the language,
// ignoring case. Tags include the '#' sigil and two-word tags are written
// with a single space, e.g. "#lemme see".
func IsVocabulary(s string) bool {
	up := asciiUpper(s)
	for tt := HAI; tt <= VIDZ; tt++ {
		if tt.String() == up {
			return true
		}
	}
	return false
}
