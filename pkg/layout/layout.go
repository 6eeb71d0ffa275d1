// Package layout turns a compiled document back into wrapped lines of plain
// text for terminal and desktop previews.
package layout

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MinCols is the narrowest wrap width Lines accepts.
const MinCols = 10

type builder struct {
	cols   int
	lines  []string
	words  []string
	indent string
}

// flush wraps the pending words into lines.
func (b *builder) flush() {
	if len(b.words) == 0 {
		return
	}
	b.lines = append(b.lines, wrap(b.words, b.cols, b.indent)...)
	b.words = b.words[:0]
}

func (b *builder) blank() {
	b.flush()
	if n := len(b.lines); n > 0 && b.lines[n-1] != "" {
		b.lines = append(b.lines, "")
	}
}

// Lines extracts the visible text of doc wrapped at cols. Paragraphs are
// separated by a blank line, list items get a bullet, line breaks start a new
// line and media elements show as "[audio: src]" or "[video: src]".
func Lines(doc string, cols int) ([]string, error) {
	if cols < MinCols {
		return nil, fmt.Errorf("layout: cols must be at least %d, got %d", MinCols, cols)
	}
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("layout: parse document: %w", err)
	}

	b := &builder{cols: cols}
	b.walk(root)
	b.flush()

	for len(b.lines) > 0 && b.lines[len(b.lines)-1] == "" {
		b.lines = b.lines[:len(b.lines)-1]
	}
	return b.lines, nil
}

func (b *builder) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.words = append(b.words, strings.Fields(n.Data)...)
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Title:
			b.flush()
			title := wrap(strings.Fields(text(n)), b.cols, "")
			if len(title) > 0 {
				b.lines = append(b.lines, title...)
				b.lines = append(b.lines, strings.Repeat("=", len([]rune(title[len(title)-1]))))
				b.blank()
			}
			return
		case atom.Br:
			b.flush()
			return
		case atom.Audio:
			b.media("audio", n)
			return
		case atom.Iframe, atom.Video:
			b.media("video", n)
			return
		case atom.P, atom.Ul:
			b.blank()
			defer b.blank()
		case atom.Li:
			b.flush()
			b.words = append(b.words, "*")
			b.indent = "  "
			defer func() {
				b.flush()
				b.indent = ""
			}()
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.walk(c)
	}
}

func (b *builder) media(kind string, n *html.Node) {
	b.flush()
	b.words = append(b.words, fmt.Sprintf("[%s: %s]", kind, source(n)))
	b.flush()
}

// source finds the src of n or of its first <source> child.
func source(n *html.Node) string {
	if src := attr(n, "src"); src != "" {
		return src
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Source {
			return attr(c, "src")
		}
	}
	return ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}

// wrap fills lines up to cols runes. Continuation lines start with indent;
// words longer than a line are split.
func wrap(words []string, cols int, indent string) []string {
	var lines []string
	var cur []rune
	base := 0 // leading runes of cur that are indentation
	newLine := func() {
		lines = append(lines, string(cur))
		cur = []rune(indent)
		base = len(cur)
	}
	for _, w := range words {
		word := []rune(w)
		for len(word) > 0 {
			space := 0
			if len(cur) > base {
				space = 1
			}
			if len(cur)+space+len(word) <= cols {
				if space == 1 {
					cur = append(cur, ' ')
				}
				cur = append(cur, word...)
				break
			}
			if len(cur) > base {
				newLine()
				continue
			}
			// The word alone does not fit: hard split it.
			room := cols - len(cur)
			cur = append(cur, word[:room]...)
			word = word[room:]
			newLine()
		}
	}
	if len(cur) > base {
		lines = append(lines, string(cur))
	}
	return lines
}
