package compiler

import (
	"log/slog"
)

// Options tunes a compilation. The zero value is ready to use.
type Options struct {
	// Logger receives debug traces and warnings; nil discards them.
	Logger *slog.Logger
}

// Compile translates src into an HTML document.
func Compile(src string) (string, error) {
	return CompileWithOptions(src, Options{})
}

// CompileWithOptions is Compile with explicit options.
func CompileWithOptions(src string, opts Options) (string, error) {
	p := NewParser(NewLexer(src), src, opts.Logger)
	p.log.Debug("compile.start", "bytes", len(src))
	out, err := p.Parse()
	if err != nil {
		p.log.Debug("compile.failed", "error", err)
		return "", err
	}
	return out, nil
}
