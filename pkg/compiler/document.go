package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFinished is returned when a Document is used after Finish.
var ErrFinished = errors.New("document already finished")

// Document collects the output fragments of one compilation, one formatted
// line each, and keeps the head/body structure well formed while the parser
// emits into it.
//
// Raw bypasses the structural flags; callers injecting raw fragments must
// open the body first.
type Document struct {
	parts []string

	head         strings.Builder // pending <head> while it is open
	headDeclared bool
	headOpen     bool

	bodyOpen   bool
	bodyClosed bool

	// wordPerLine emits free text one word per fragment. It is on for the
	// body and off inside paragraphs.
	wordPerLine bool

	finished bool
}

// NewDocument returns an empty builder. Call BeginDocument before emitting.
func NewDocument() *Document {
	return &Document{}
}

func (d *Document) push(s string) {
	d.parts = append(d.parts, s)
}

// Raw appends an untracked fragment verbatim.
func (d *Document) Raw(s string) {
	d.push(s)
}

// Fragments returns a copy of the fragments emitted so far.
func (d *Document) Fragments() []string {
	out := make([]string, len(d.parts))
	copy(out, d.parts)
	return out
}

// WordPerLine reports the current text rendering mode.
func (d *Document) WordPerLine() bool {
	return d.wordPerLine
}

func (d *Document) BeginDocument() {
	d.push("<!doctype html>")
	d.push("<html>")
}

func (d *Document) EndDocument() {
	d.push("</html>")
}

func (d *Document) BeginHead() {
	d.headDeclared = true
	d.headOpen = true
	d.head.Reset()
	d.head.WriteString("<head>")
}

// Title writes the title element into the open head.
func (d *Document) Title(t string) error {
	if !d.headOpen {
		return errors.New("title emitted outside an open head")
	}
	fmt.Fprintf(&d.head, "<title>%s</title>", strings.TrimSpace(t))
	return nil
}

// EndHead closes the head and appends it as a single fragment.
func (d *Document) EndHead() {
	if !d.headOpen {
		return
	}
	d.head.WriteString("</head>")
	d.push(d.head.String())
	d.head.Reset()
	d.headOpen = false
}

// HeadDeclared reports whether a head section was started.
func (d *Document) HeadDeclared() bool {
	return d.headDeclared
}

// BeginBody opens the body on the first call only.
func (d *Document) BeginBody() {
	if d.bodyOpen || d.bodyClosed {
		return
	}
	d.EndHead()
	d.bodyOpen = true
	d.wordPerLine = true
	d.push("<body>")
}

func (d *Document) EndBody() {
	if d.bodyOpen {
		d.bodyOpen = false
		d.bodyClosed = true
		d.push("</body>")
	}
}

func (d *Document) BeginParagraph() {
	d.BeginBody()
	d.push("<p>")
	d.wordPerLine = false
}

func (d *Document) EndParagraph() {
	d.push("</p>")
	d.wordPerLine = true
}

// Text emits free running text. Outside paragraphs every word becomes its
// own fragment; inside, the trimmed text is one fragment.
func (d *Document) Text(t string) {
	norm := strings.NewReplacer("\r", " ", "\n", " ").Replace(t)
	if strings.TrimSpace(norm) == "" {
		return
	}
	d.BeginBody()
	if d.wordPerLine {
		for _, w := range strings.Fields(norm) {
			d.push(w)
		}
		return
	}
	d.push(strings.TrimSpace(norm))
}

func (d *Document) Bold(t string) {
	d.BeginBody()
	d.push(fmt.Sprintf("<b>%s</b>", strings.TrimSpace(t)))
}

func (d *Document) Italics(t string) {
	d.BeginBody()
	d.push(fmt.Sprintf("<i>%s</i>", strings.TrimSpace(t)))
}

// Comment emits an HTML comment where the parser currently is; it does not
// open the body.
func (d *Document) Comment(t string) {
	d.push(fmt.Sprintf("<!-- %s -->", strings.TrimSpace(t)))
}

func (d *Document) Break() {
	d.BeginBody()
	d.push("<br>")
}

// Finish closes whatever is still open and returns the document text.
// The builder cannot be used afterwards.
func (d *Document) Finish() (string, error) {
	if d.finished {
		return "", ErrFinished
	}
	d.finished = true

	d.EndHead()
	switch {
	case !d.bodyOpen && !d.bodyClosed:
		d.push("<body></body>")
	case d.bodyOpen:
		if len(d.parts) == 0 || d.parts[len(d.parts)-1] != "</body>" {
			d.push("</body>")
		}
		d.bodyOpen = false
		d.bodyClosed = true
	}
	d.EndDocument()

	out := strings.Join(d.parts, "\n")
	d.parts = nil
	return out, nil
}

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeAttr escapes s for use inside a double-quoted attribute value.
func EscapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
