// Package htmlcheck verifies the shape of compiled documents: a doctype, one
// html root, an optional head before exactly one body, and balanced elements.
package htmlcheck

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// voidElements never take an end tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// Problem is one structural defect.
type Problem struct {
	Line int
	Msg  string
}

func (p Problem) String() string {
	return fmt.Sprintf("line %d: %s", p.Line, p.Msg)
}

// Report lists every problem found in a document. It is returned as the
// error of Check.
type Report struct {
	Problems []Problem
}

func (r *Report) Error() string {
	msgs := make([]string, len(r.Problems))
	for i, p := range r.Problems {
		msgs[i] = p.String()
	}
	return fmt.Sprintf("html check: %d problem(s): %s", len(r.Problems), strings.Join(msgs, "; "))
}

type checker struct {
	line     int
	problems []Problem

	sawDoctype bool
	sawContent bool
	htmlOpens  int
	htmlClosed bool
	heads      int
	bodies     int
	stack      []string
}

func (c *checker) addf(format string, args ...any) {
	c.problems = append(c.problems, Problem{Line: c.line, Msg: fmt.Sprintf(format, args...)})
}

// Check tokenizes doc and returns nil or a *Report.
func Check(doc string) error {
	z := html.NewTokenizer(strings.NewReader(doc))
	c := &checker{line: 1}

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); !errors.Is(err, io.EOF) {
				c.addf("tokenizer: %v", err)
			}
			break
		}
		raw := string(z.Raw())
		c.token(tt, z.Token())
		c.line += strings.Count(raw, "\n")
	}
	c.finish()

	if len(c.problems) == 0 {
		return nil
	}
	return &Report{Problems: c.problems}
}

func (c *checker) token(tt html.TokenType, tok html.Token) {
	if tt == html.TextToken && strings.TrimSpace(tok.Data) == "" {
		return
	}
	if tt == html.CommentToken {
		return
	}
	if c.htmlClosed {
		c.addf("content after </html>: %s", describe(tt, tok))
		return
	}

	switch tt {
	case html.DoctypeToken:
		if c.sawContent || c.sawDoctype {
			c.addf("doctype must come first and only once")
		}
		if !strings.EqualFold(tok.Data, "html") {
			c.addf("unexpected doctype %q", tok.Data)
		}
		c.sawDoctype = true
		return
	}

	if !c.sawDoctype && !c.sawContent {
		c.addf("missing doctype")
	}
	c.sawContent = true

	switch tt {
	case html.StartTagToken, html.SelfClosingTagToken:
		c.start(tok.Data, tt == html.SelfClosingTagToken)
	case html.EndTagToken:
		c.end(tok.Data)
	case html.TextToken:
		if len(c.stack) < 2 || (c.stack[1] != "body" && c.stack[1] != "head") {
			c.addf("text outside body: %q", strings.TrimSpace(tok.Data))
		}
	}
}

func (c *checker) start(name string, selfClosing bool) {
	switch name {
	case "html":
		c.htmlOpens++
		if c.htmlOpens > 1 || len(c.stack) > 0 {
			c.addf("nested or repeated <html>")
		}
	case "head":
		c.heads++
		if c.heads > 1 {
			c.addf("more than one <head>")
		}
		if c.bodies > 0 {
			c.addf("<head> after <body>")
		}
		c.expectParent(name, "html")
	case "body":
		c.bodies++
		if c.bodies > 1 {
			c.addf("more than one <body>")
		}
		c.expectParent(name, "html")
	default:
		if len(c.stack) == 0 {
			c.addf("<%s> outside <html>", name)
		}
	}

	if voidElements[name] {
		return
	}
	if selfClosing {
		c.addf("non-void element <%s/> cannot self-close", name)
		return
	}
	c.stack = append(c.stack, name)
}

func (c *checker) expectParent(name, parent string) {
	if len(c.stack) == 0 || c.stack[len(c.stack)-1] != parent {
		c.addf("<%s> must be a direct child of <%s>", name, parent)
	}
}

func (c *checker) end(name string) {
	if voidElements[name] {
		c.addf("void element </%s> has no end tag", name)
		return
	}
	if len(c.stack) == 0 {
		c.addf("unexpected </%s>", name)
		return
	}
	top := c.stack[len(c.stack)-1]
	if top != name {
		c.addf("</%s> closes <%s>", name, top)
		return
	}
	c.stack = c.stack[:len(c.stack)-1]
	if name == "html" {
		c.htmlClosed = true
	}
}

func (c *checker) finish() {
	if !c.sawDoctype && !c.sawContent {
		c.addf("empty document")
		return
	}
	if c.htmlOpens == 0 {
		c.addf("missing <html>")
	}
	if c.bodies == 0 {
		c.addf("missing <body>")
	}
	for i := len(c.stack) - 1; i >= 0; i-- {
		c.addf("unclosed <%s>", c.stack[i])
	}
}

func describe(tt html.TokenType, tok html.Token) string {
	switch tt {
	case html.TextToken:
		return fmt.Sprintf("text %q", strings.TrimSpace(tok.Data))
	case html.EndTagToken:
		return "</" + tok.Data + ">"
	}
	return "<" + tok.Data + ">"
}
