package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"
)

// MaxMemoryBytes caps the total size held by a MemoryStore.
const MaxMemoryBytes = 8 << 20

// validName rejects anything that could climb out of a persistence directory.
var validName = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9_.-]{0,127}$`)

var ErrQuotaExceeded = errors.New("memory store quota exceeded")

type FileEntry struct {
	Data     []byte
	Created  time.Time
	Modified time.Time
}

// MemoryStore keeps sources and documents in memory. Changed files are
// tracked until PersistTo flushes them to a host directory.
type MemoryStore struct {
	Mu         sync.RWMutex
	Files      map[string]*FileEntry
	DirtyFiles map[string]bool
	UsedBytes  int
	SourceExt  string
	OutputExt  string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Files:      make(map[string]*FileEntry),
		DirtyFiles: make(map[string]bool),
		SourceExt:  DefaultSourceExt,
		OutputExt:  DefaultOutputExt,
	}
}

// Write stores a copy of data under filename, replacing any previous content.
// Writing identical content leaves the entry clean.
func (m *MemoryStore) Write(filename string, data []byte) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	if !validName.MatchString(filename) {
		return fmt.Errorf("%w: %q", ErrInvalidName, filename)
	}

	oldSize := 0
	entry, ok := m.Files[filename]
	if ok {
		if bytes.Equal(entry.Data, data) {
			return nil
		}
		oldSize = len(entry.Data)
	}
	if m.UsedBytes-oldSize+len(data) > MaxMemoryBytes {
		return ErrQuotaExceeded
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	now := time.Now()
	if !ok {
		entry = &FileEntry{Created: now}
		m.Files[filename] = entry
	}
	entry.Data = buf
	entry.Modified = now

	m.DirtyFiles[filename] = true
	m.UsedBytes += len(data) - oldSize
	return nil
}

// Read returns a copy of the content stored under filename.
func (m *MemoryStore) Read(filename string) ([]byte, error) {
	m.Mu.RLock()
	defer m.Mu.RUnlock()

	entry, ok := m.Files[filename]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, filename)
	}
	buf := make([]byte, len(entry.Data))
	copy(buf, entry.Data)
	return buf, nil
}

func (m *MemoryStore) ReadSource(name string) (string, error) {
	if err := CheckSource(name, m.SourceExt); err != nil {
		return "", err
	}
	raw, err := m.Read(name)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (m *MemoryStore) WriteDocument(name, doc string) (string, error) {
	out := filepath.Base(OutputPath(name, "", m.OutputExt))
	if err := m.Write(out, []byte(doc)); err != nil {
		return "", err
	}
	return out, nil
}

// PersistTo flushes changed files to dir, creating it if needed. It returns
// the first error; files that failed stay dirty.
func (m *MemoryStore) PersistTo(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Snapshot under the lock, then do the I/O without it.
	m.Mu.Lock()
	snapshot := make(map[string]FileEntry)
	for name := range m.DirtyFiles {
		entry := m.Files[name]
		data := make([]byte, len(entry.Data))
		copy(data, entry.Data)
		snapshot[name] = FileEntry{Data: data, Created: entry.Created, Modified: entry.Modified}
		delete(m.DirtyFiles, name)
	}
	m.Mu.Unlock()

	var firstErr error
	for name, entry := range snapshot {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, entry.Data, 0644); err != nil {
			m.Mu.Lock()
			m.DirtyFiles[name] = true
			m.Mu.Unlock()
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		_ = os.Chtimes(path, time.Now(), entry.Modified)
	}
	return firstErr
}

// Dirty reports whether any change has not been persisted yet.
func (m *MemoryStore) Dirty() bool {
	m.Mu.RLock()
	defer m.Mu.RUnlock()
	return len(m.DirtyFiles) > 0
}
