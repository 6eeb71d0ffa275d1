package compiler

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Parser recognises the markup grammar with one token of lookahead and emits
// the document as it goes. There is no tree: each parse method checks token
// order and drives the Scope and Document directly.
//
// Grammar:
//
//	program    = HAI comment* head? bodyItem* KTHXBYE EOF
//	head       = MAEK HEAD titleDecl OIC
//	titleDecl  = GIMMEH TITLE textRun
//	comment    = OBTW TEXT* TLDR
//	bodyItem   = MAEK (paragraph | list)
//	           | GIMMEH (newline | bold | italics | audio | video | TITLE textRun)
//	           | varDefine | varUse | TEXT | comment | MKAY
//	paragraph  = PARAGRAF varDefine? innerText* OIC
//	innerText  = GIMMEH (bold | italics | newline) | varUse | TEXT | comment | MKAY
//	varDefine  = IHAZ TEXT ITIZ textRun
//	varUse     = LEMMESEE TEXT MKAY
//	list       = LIST (GIMMEH ITEM inlineRun | GIMMEH NEWLINE MKAY | comment)* OIC
//	inlineRun  = (TEXT | GIMMEH (bold | italics | newline) | varUse | comment)* MKAY
//	textRun    = TEXT* MKAY
type Parser struct {
	src         TokenSource
	look        Token
	doc         *Document
	scope       *Scope
	sourceLines []string
	log         *slog.Logger
	tokens      int
}

// NewParser builds a parser over src. rawSource is only used to quote the
// offending line in error messages and may be empty.
func NewParser(src TokenSource, rawSource string, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	var lines []string
	if rawSource != "" {
		lines = strings.Split(rawSource, "\n")
	}
	return &Parser{
		src:         src,
		doc:         NewDocument(),
		scope:       NewScope(),
		sourceLines: lines,
		log:         logger,
	}
}

// withSnippet attaches the source line of a positioned error.
func (p *Parser) withSnippet(err error) error {
	ce, ok := err.(*Error)
	if !ok || ce.Snippet != "" {
		return err
	}
	idx := ce.Line - 1
	if idx >= 0 && idx < len(p.sourceLines) {
		ce.Snippet = strings.TrimSpace(p.sourceLines[idx])
	}
	return ce
}

// errorf builds a syntax error positioned at tok.
func (p *Parser) errorf(tok Token, format string, args ...any) error {
	return p.withSnippet(newError(SyntaxError, tok.Line, format, args...))
}

// advance pulls the next token into the lookahead slot.
func (p *Parser) advance() error {
	tok, err := p.src.Next()
	if err != nil {
		return p.withSnippet(err)
	}
	p.look = tok
	p.tokens++
	return nil
}

// expect consumes the lookahead if it is of type tt.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.look
	if tok.Type != tt {
		return tok, p.errorf(tok, "expected %s, got %s", tt, tok.describe())
	}
	return tok, p.advance()
}

// Parse runs the whole compilation and returns the finished document.
// On error nothing of the document is returned.
func (p *Parser) Parse() (string, error) {
	if err := p.advance(); err != nil {
		return "", err
	}
	if err := p.parseProgram(); err != nil {
		return "", err
	}
	out, err := p.doc.Finish()
	if err != nil {
		return "", newError(InternalError, 0, "%v", err)
	}
	p.log.Debug("compile.done", "tokens", p.tokens, "bytes", len(out))
	return out, nil
}

func (p *Parser) parseProgram() error {
	p.doc.BeginDocument()

	if p.look.Type != HAI {
		return p.errorf(p.look, "program must start with #HAI, got %s", p.look.describe())
	}
	if err := p.advance(); err != nil {
		return err
	}

	for p.look.Type == OBTW {
		if err := p.parseComment(); err != nil {
			return err
		}
	}

	// The head shares its #MAEK with paragraphs and lists, so the tag is
	// consumed here and the keyword decides which one follows.
	if p.look.Type == MAEK {
		if err := p.advance(); err != nil {
			return err
		}
		if p.look.Type == HEAD {
			if err := p.parseHead(); err != nil {
				return err
			}
		} else if err := p.parseMaek(); err != nil {
			return err
		}
	}

	for p.look.Type != KTHXBYE && p.look.Type != EOF {
		if err := p.parseBodyItem(); err != nil {
			return err
		}
	}
	if _, err := p.expect(KTHXBYE); err != nil {
		return err
	}
	if p.look.Type != EOF {
		return p.errorf(p.look, "unexpected %s after #KTHXBYE", p.look.describe())
	}
	p.doc.EndBody()
	return nil
}

// parseHead runs with HEAD in the lookahead; #MAEK is already consumed.
func (p *Parser) parseHead() error {
	if _, err := p.expect(HEAD); err != nil {
		return err
	}
	p.doc.BeginHead()
	if err := p.parseTitle(); err != nil {
		return err
	}
	if _, err := p.expect(OIC); err != nil {
		return err
	}
	p.doc.EndHead()
	return nil
}

func (p *Parser) parseTitle() error {
	if _, err := p.expect(GIMMEH); err != nil {
		return err
	}
	if _, err := p.expect(TITLE); err != nil {
		return err
	}
	t, err := p.parseTextRun()
	if err != nil {
		return err
	}
	if err := p.doc.Title(t); err != nil {
		return newError(InternalError, 0, "%v", err)
	}
	return nil
}

// parseTextRun collects TEXT tokens up to and including #MKAY and returns
// them joined by single spaces.
func (p *Parser) parseTextRun() (string, error) {
	return p.collectText(MKAY, "only text is allowed before #MKAY here")
}

func (p *Parser) collectText(end TokenType, what string) (string, error) {
	var words []string
	for p.look.Type != end && p.look.Type != EOF {
		if p.look.Type != TEXT {
			return "", p.errorf(p.look, "%s, got %s", what, p.look.describe())
		}
		words = append(words, p.look.Lexeme)
		if err := p.advance(); err != nil {
			return "", err
		}
	}
	if _, err := p.expect(end); err != nil {
		return "", err
	}
	return strings.Join(words, " "), nil
}

func (p *Parser) parseComment() error {
	if _, err := p.expect(OBTW); err != nil {
		return err
	}
	text, err := p.collectText(TLDR, "only text is allowed inside #OBTW ... #TLDR")
	if err != nil {
		return err
	}
	p.doc.Comment(text)
	return nil
}

func (p *Parser) parseBodyItem() error {
	switch p.look.Type {
	case MAEK:
		if err := p.advance(); err != nil {
			return err
		}
		return p.parseMaek()
	case GIMMEH:
		if err := p.advance(); err != nil {
			return err
		}
		return p.parseBodyGimmeh()
	case IHAZ:
		return p.parseVariableDefine()
	case LEMMESEE:
		return p.parseVariableUse()
	case TEXT:
		return p.parseText()
	case OBTW:
		// after a head the body follows directly, so the comment lands in it
		if p.doc.HeadDeclared() {
			p.doc.BeginBody()
		}
		return p.parseComment()
	case MKAY:
		// a stray #MKAY between body items is tolerated
		return p.advance()
	}
	return p.errorf(p.look, "unexpected %s in body", p.look.describe())
}

// parseMaek runs after #MAEK in the body.
func (p *Parser) parseMaek() error {
	switch p.look.Type {
	case PARAGRAF:
		return p.parseParagraph()
	case LIST:
		return p.parseList()
	case HEAD:
		return p.errorf(p.look, "HEAD must come before any body content")
	}
	return p.errorf(p.look, "after #MAEK expected PARAGRAF or LIST, got %s", p.look.describe())
}

// parseBodyGimmeh runs after #GIMMEH at body level.
func (p *Parser) parseBodyGimmeh() error {
	switch p.look.Type {
	case NEWLINE:
		return p.parseNewline()
	case BOLD:
		return p.parseBold()
	case ITALICS:
		return p.parseItalics()
	case SOUNDZ:
		return p.parseAudio()
	case VIDZ:
		return p.parseVideo()
	case TITLE:
		// A title only means something inside the head.
		tok := p.look
		if err := p.advance(); err != nil {
			return err
		}
		t, err := p.parseTextRun()
		if err != nil {
			return err
		}
		p.log.Warn("title outside head dropped", "line", tok.Line, "title", t)
		return nil
	}
	return p.errorf(p.look, "unsupported #GIMMEH %s in body", p.look.describe())
}

// parseInlineGimmeh runs after #GIMMEH inside paragraphs and list items.
func (p *Parser) parseInlineGimmeh(where string) error {
	switch p.look.Type {
	case BOLD:
		return p.parseBold()
	case ITALICS:
		return p.parseItalics()
	case NEWLINE:
		return p.parseNewline()
	}
	return p.errorf(p.look, "unsupported #GIMMEH %s in %s", p.look.describe(), where)
}

func (p *Parser) parseParagraph() error {
	if _, err := p.expect(PARAGRAF); err != nil {
		return err
	}
	p.scope.Push()
	p.doc.BeginParagraph()

	if p.look.Type == IHAZ {
		if err := p.parseVariableDefine(); err != nil {
			return err
		}
	}
	for p.look.Type != OIC && p.look.Type != EOF {
		if err := p.parseInnerText(); err != nil {
			return err
		}
	}
	if _, err := p.expect(OIC); err != nil {
		return err
	}

	p.doc.EndParagraph()
	if err := p.scope.Pop(); err != nil {
		return newError(InternalError, 0, "%v", err)
	}
	return nil
}

func (p *Parser) parseInnerText() error {
	switch p.look.Type {
	case GIMMEH:
		if err := p.advance(); err != nil {
			return err
		}
		return p.parseInlineGimmeh("paragraph")
	case LEMMESEE:
		return p.parseVariableUse()
	case TEXT:
		return p.parseText()
	case OBTW:
		return p.parseComment()
	case MKAY:
		return p.advance()
	}
	return p.errorf(p.look, "unexpected %s in paragraph", p.look.describe())
}

// parseName reads the variable name that follows #I HAZ or #LEMME SEE.
func (p *Parser) parseName(after TokenType) (string, error) {
	if p.look.Type != TEXT {
		return "", p.errorf(p.look, "expected variable name after %s, got %s", after, p.look.describe())
	}
	name := p.look.Lexeme
	return name, p.advance()
}

func (p *Parser) parseVariableDefine() error {
	if _, err := p.expect(IHAZ); err != nil {
		return err
	}
	name, err := p.parseName(IHAZ)
	if err != nil {
		return err
	}
	if _, err := p.expect(ITIZ); err != nil {
		return err
	}
	value, err := p.parseTextRun()
	if err != nil {
		return err
	}
	p.scope.Define(name, value)
	return nil
}

func (p *Parser) parseVariableUse() error {
	if _, err := p.expect(LEMMESEE); err != nil {
		return err
	}
	nameTok := p.look
	name, err := p.parseName(LEMMESEE)
	if err != nil {
		return err
	}
	if _, err := p.expect(MKAY); err != nil {
		return err
	}
	value, ok := p.scope.Resolve(name)
	if !ok {
		return p.withSnippet(newError(SemanticError, nameTok.Line, "variable '%s' used before definition", name))
	}
	p.doc.BeginBody()
	p.doc.Raw(value)
	return nil
}

func (p *Parser) parseBold() error {
	if _, err := p.expect(BOLD); err != nil {
		return err
	}
	t, err := p.parseTextRun()
	if err != nil {
		return err
	}
	p.doc.Bold(t)
	return nil
}

func (p *Parser) parseItalics() error {
	if _, err := p.expect(ITALICS); err != nil {
		return err
	}
	t, err := p.parseTextRun()
	if err != nil {
		return err
	}
	p.doc.Italics(t)
	return nil
}

func (p *Parser) parseNewline() error {
	if _, err := p.expect(NEWLINE); err != nil {
		return err
	}
	if _, err := p.expect(MKAY); err != nil {
		return err
	}
	p.doc.Break()
	return nil
}

// parseText emits a run of adjacent TEXT tokens as one piece of text, so a
// paragraph keeps its sentence on one line.
func (p *Parser) parseText() error {
	tok, err := p.expect(TEXT)
	if err != nil {
		return err
	}
	words := []string{tok.Lexeme}
	for p.look.Type == TEXT {
		words = append(words, p.look.Lexeme)
		if err := p.advance(); err != nil {
			return err
		}
	}
	p.doc.Text(strings.Join(words, " "))
	return nil
}

func (p *Parser) parseList() error {
	if _, err := p.expect(LIST); err != nil {
		return err
	}
	p.doc.BeginBody()
	p.doc.Raw("<ul>")

	for {
		switch p.look.Type {
		case GIMMEH:
			if err := p.advance(); err != nil {
				return err
			}
			switch p.look.Type {
			case ITEM:
				if err := p.parseListItem(); err != nil {
					return err
				}
			case NEWLINE:
				if err := p.parseNewline(); err != nil {
					return err
				}
			default:
				return p.errorf(p.look, "inside LIST expected ITEM after #GIMMEH, got %s", p.look.describe())
			}
		case OBTW:
			if err := p.parseComment(); err != nil {
				return err
			}
		case OIC:
			if err := p.advance(); err != nil {
				return err
			}
			p.doc.Raw("</ul>")
			return nil
		case EOF:
			return p.errorf(p.look, "unexpected end of input inside LIST")
		default:
			return p.errorf(p.look, "unexpected %s inside LIST", p.look.describe())
		}
	}
}

func (p *Parser) parseListItem() error {
	if _, err := p.expect(ITEM); err != nil {
		return err
	}
	p.doc.Raw("<li>")
	if err := p.parseInlineRun(); err != nil {
		return err
	}
	p.doc.Raw("</li>")
	return nil
}

// parseInlineRun parses rich item content up to and including #MKAY.
func (p *Parser) parseInlineRun() error {
	for p.look.Type != MKAY && p.look.Type != EOF {
		var err error
		switch p.look.Type {
		case GIMMEH:
			if err = p.advance(); err == nil {
				err = p.parseInlineGimmeh("list item")
			}
		case LEMMESEE:
			err = p.parseVariableUse()
		case TEXT:
			err = p.parseText()
		case OBTW:
			err = p.parseComment()
		default:
			err = p.errorf(p.look, "unexpected %s inside list item", p.look.describe())
		}
		if err != nil {
			return err
		}
	}
	_, err := p.expect(MKAY)
	return err
}

// parseMedia reads a source value and emits it through format with the
// value escaped.
func (p *Parser) parseMedia(tt TokenType, format string) error {
	if _, err := p.expect(tt); err != nil {
		return err
	}
	src, err := p.parseTextRun()
	if err != nil {
		return err
	}
	p.doc.BeginBody()
	p.doc.Raw(fmt.Sprintf(format, EscapeAttr(strings.TrimSpace(src))))
	return nil
}

func (p *Parser) parseAudio() error {
	return p.parseMedia(SOUNDZ, `<audio controls><source src="%s" /></audio>`)
}

func (p *Parser) parseVideo() error {
	return p.parseMedia(VIDZ, `<iframe src="%s" allowfullscreen loading="lazy"></iframe>`)
}
