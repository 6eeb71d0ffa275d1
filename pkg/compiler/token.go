package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Free text, variable names and URLs
	TEXT

	// Single-word tags
	HAI     // #HAI
	KTHXBYE // #KTHXBYE
	OBTW    // #OBTW
	TLDR    // #TLDR
	MAEK    // #MAEK
	OIC     // #OIC
	GIMMEH  // #GIMMEH
	MKAY    // #MKAY

	// Two-word tags
	IHAZ     // #I HAZ
	ITIZ     // #IT IZ
	LEMMESEE // #LEMME SEE

	// Bare keywords
	HEAD     // HEAD
	TITLE    // TITLE
	PARAGRAF // PARAGRAF
	BOLD     // BOLD
	ITALICS  // ITALICS
	LIST     // LIST
	ITEM     // ITEM
	NEWLINE  // NEWLINE
	SOUNDZ   // SOUNDZ
	VIDZ     // VIDZ
)

// tokenNames is indexed by TokenType and doubles as the canonical source
// spelling used in diagnostics.
var tokenNames = [...]string{
	EOF:      "EOF",
	TEXT:     "TEXT",
	HAI:      "#HAI",
	KTHXBYE:  "#KTHXBYE",
	OBTW:     "#OBTW",
	TLDR:     "#TLDR",
	MAEK:     "#MAEK",
	OIC:      "#OIC",
	GIMMEH:   "#GIMMEH",
	MKAY:     "#MKAY",
	IHAZ:     "#I HAZ",
	ITIZ:     "#IT IZ",
	LEMMESEE: "#LEMME SEE",
	HEAD:     "HEAD",
	TITLE:    "TITLE",
	PARAGRAF: "PARAGRAF",
	BOLD:     "BOLD",
	ITALICS:  "ITALICS",
	LIST:     "LIST",
	ITEM:     "ITEM",
	NEWLINE:  "NEWLINE",
	SOUNDZ:   "SOUNDZ",
	VIDZ:     "VIDZ",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// IsTag reports whether tt is introduced by the '#' sigil.
func (tt TokenType) IsTag() bool {
	return tt >= HAI && tt <= LEMMESEE
}

// IsKeyword reports whether tt is one of the bare keywords.
func (tt TokenType) IsKeyword() bool {
	return tt >= HEAD && tt <= VIDZ
}

// Token is a single lexical unit produced by the Lexer.
// For TEXT tokens Lexeme carries the original casing; for everything else it
// holds the canonical spelling.
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int // 1-based source line
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-14q  line %d", t.Type, t.Lexeme, t.Line)
}

// describe renders a token for error messages.
func (t Token) describe() string {
	switch t.Type {
	case EOF:
		return "end of input"
	case TEXT:
		return fmt.Sprintf("text %q", t.Lexeme)
	}
	return t.Type.String()
}
