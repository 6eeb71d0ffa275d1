// Package preview wires the compiler to its collaborators: the build
// pipeline shared by the CLI commands, the HTTP preview server, the file
// watcher and the browser launcher.
package preview

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"lolcompiler/pkg/compiler"
	"lolcompiler/pkg/htmlcheck"
	"lolcompiler/pkg/store"
)

const (
	resultOK       = "ok"
	resultLexical  = "lexical"
	resultSyntax   = "syntax"
	resultSemantic = "semantic"
	resultError    = "error"
)

// Result describes one compilation.
type Result struct {
	ID       string
	Source   string
	Output   string // empty until the document is written
	Doc      string
	Duration time.Duration
}

// Builder reads a source from a Store, compiles it and optionally verifies
// and writes the document.
type Builder struct {
	Store   store.Store
	Verify  bool
	Logger  *slog.Logger
	Metrics *Metrics
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.Default()
	}
	return b.Logger
}

// Compile reads and compiles name without writing anything.
func (b *Builder) Compile(name string) (*Result, error) {
	src, err := b.Store.ReadSource(name)
	if err != nil {
		return nil, err
	}
	return b.CompileSource(name, src)
}

// CompileSource compiles src, which was read from name.
func (b *Builder) CompileSource(name, src string) (*Result, error) {
	res := &Result{ID: uuid.NewString(), Source: name}
	log := b.logger().With("compile.id", res.ID, "source", name)

	start := time.Now()
	doc, err := compiler.CompileWithOptions(src, compiler.Options{Logger: log})
	res.Duration = time.Since(start)
	if err != nil {
		b.Metrics.Observe(resultFor(err), res.Duration, 0)
		log.Warn("compilation failed", "error", err)
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	if b.Verify {
		if err := htmlcheck.Check(doc); err != nil {
			b.Metrics.Observe(resultError, res.Duration, 0)
			log.Error("compiled document failed verification", "error", err)
			return nil, fmt.Errorf("verify %s: %w", name, err)
		}
	}
	b.Metrics.Observe(resultOK, res.Duration, len(doc))
	log.Debug("compiled", "bytes", len(doc), "duration", res.Duration)

	res.Doc = doc
	return res, nil
}

// Build compiles name and writes the document through the Store.
func (b *Builder) Build(name string) (*Result, error) {
	res, err := b.Compile(name)
	if err != nil {
		return nil, err
	}
	out, err := b.Store.WriteDocument(name, res.Doc)
	if err != nil {
		return nil, err
	}
	res.Output = out
	b.logger().Info("built", "compile.id", res.ID, "source", name, "output", out, "bytes", len(res.Doc))
	return res, nil
}

// resultFor classifies a compile error for the result label.
func resultFor(err error) string {
	var ce *compiler.Error
	if !errors.As(err, &ce) {
		return resultError
	}
	switch ce.Kind {
	case compiler.LexicalError:
		return resultLexical
	case compiler.SyntaxError:
		return resultSyntax
	case compiler.SemanticError:
		return resultSemantic
	}
	return resultError
}
