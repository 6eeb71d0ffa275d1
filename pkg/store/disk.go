package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DiskStore reads sources from the host filesystem and writes documents
// beside them, or into OutputDir when it is set.
type DiskStore struct {
	OutputDir string
	SourceExt string
	OutputExt string
}

// NewDiskStore returns a DiskStore with the default extensions.
func NewDiskStore(outputDir string) *DiskStore {
	return &DiskStore{
		OutputDir: outputDir,
		SourceExt: DefaultSourceExt,
		OutputExt: DefaultOutputExt,
	}
}

func (s *DiskStore) ReadSource(name string) (string, error) {
	if err := CheckSource(name, s.SourceExt); err != nil {
		return "", err
	}
	raw, err := os.ReadFile(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, name)
		}
		return "", fmt.Errorf("read source %s: %w", name, err)
	}
	return string(raw), nil
}

func (s *DiskStore) WriteDocument(name, doc string) (string, error) {
	out := OutputPath(name, s.OutputDir, s.OutputExt)
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(out, []byte(doc), 0644); err != nil {
		return "", fmt.Errorf("write document %s: %w", out, err)
	}
	return out, nil
}
