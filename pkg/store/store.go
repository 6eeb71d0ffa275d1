// Package store reads markup sources and writes compiled documents, either on
// the host filesystem or in memory.
package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// DefaultSourceExt is the extension a source file must carry.
	DefaultSourceExt = ".lol"
	// DefaultOutputExt replaces the source extension on the written document.
	DefaultOutputExt = ".html"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrBadExtension = errors.New("unsupported source extension")
	ErrInvalidName  = errors.New("invalid filename")
)

// Store is the collaborator the CLI and preview server compile through.
type Store interface {
	// ReadSource returns the markup stored under name.
	ReadSource(name string) (string, error)
	// WriteDocument stores a compiled document for the source name and
	// returns where it went.
	WriteDocument(name, doc string) (string, error)
}

// CheckSource enforces the source extension policy. An empty ext means
// DefaultSourceExt.
func CheckSource(name, ext string) error {
	if ext == "" {
		ext = DefaultSourceExt
	}
	if !strings.EqualFold(filepath.Ext(name), ext) {
		return fmt.Errorf("%w: %q (want %s)", ErrBadExtension, name, ext)
	}
	return nil
}

// OutputPath maps a source path to its document path: the base name with ext
// in place of the source extension, inside dir, or next to the source when
// dir is empty.
func OutputPath(src, dir, ext string) string {
	if ext == "" {
		ext = DefaultOutputExt
	}
	base := filepath.Base(src)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + ext
	if dir == "" {
		dir = filepath.Dir(src)
	}
	return filepath.Join(dir, base)
}
