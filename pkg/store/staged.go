package store

import (
	"fmt"
	"path/filepath"
)

// StagedStore reads sources from disk and stages documents in a MemoryStore
// before flushing them. A document whose content did not change since the
// last write is not written to disk again.
type StagedStore struct {
	Disk *DiskStore
	Mem  *MemoryStore
}

// NewStagedStore returns a StagedStore writing into outputDir, or next to
// each source when outputDir is empty.
func NewStagedStore(outputDir string) *StagedStore {
	return &StagedStore{Disk: NewDiskStore(outputDir), Mem: NewMemoryStore()}
}

func (s *StagedStore) ReadSource(name string) (string, error) {
	return s.Disk.ReadSource(name)
}

// WriteDocument stages doc and persists it when it differs from the staged
// copy. It returns the document path on disk either way.
func (s *StagedStore) WriteDocument(name, doc string) (string, error) {
	out := OutputPath(name, s.Disk.OutputDir, s.Disk.OutputExt)
	s.Mem.OutputExt = s.Disk.OutputExt
	if _, err := s.Mem.WriteDocument(name, doc); err != nil {
		return "", fmt.Errorf("stage document %s: %w", out, err)
	}
	if !s.Mem.Dirty() {
		return out, nil
	}
	if err := s.Mem.PersistTo(filepath.Dir(out)); err != nil {
		return "", fmt.Errorf("write document %s: %w", out, err)
	}
	return out, nil
}
