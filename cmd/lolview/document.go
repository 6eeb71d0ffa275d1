package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"lolcompiler/pkg/layout"
	"lolcompiler/pkg/preview"
)

// document holds the laid-out text of the source and the scroll position.
type document struct {
	builder *preview.Builder
	source  string
	cols    int

	lines []string
	top   int
	err   error
	id    string
}

func newDocument(b *preview.Builder, source string, cols int) *document {
	return &document{builder: b, source: source, cols: max(cols, layout.MinCols)}
}

// load recompiles the source. On failure the error text replaces the page
// so the problem is visible in the window.
func (d *document) load() {
	res, err := d.builder.Compile(d.source)
	if err == nil {
		var lines []string
		lines, err = layout.Lines(res.Doc, d.cols)
		if err == nil {
			d.lines, d.err, d.id = lines, nil, res.ID
			d.top = min(d.top, max(0, len(d.lines)-1))
			return
		}
	}
	d.err = err
	d.lines = strings.Split(err.Error(), "\n")
	d.top = 0
}

// scroll moves the view by delta lines, clamped to the document.
func (d *document) scroll(delta, rows int) {
	d.top = max(0, min(d.top+delta, layout.MaxTop(d.lines, rows)))
}

func (d *document) status(rows int) string {
	name := filepath.Base(d.source)
	if d.err != nil {
		return fmt.Sprintf("%s: ERROR  [R] reload", name)
	}
	last := min(d.top+rows, len(d.lines))
	return fmt.Sprintf("%s  lines %d-%d of %d  [R] reload", name, min(d.top+1, last), last, len(d.lines))
}
