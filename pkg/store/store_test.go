package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSource(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		ext     string
		wantErr bool
	}{
		{"Default extension", "page.lol", "", false},
		{"Upper case extension", "PAGE.LOL", "", false},
		{"Wrong extension", "page.txt", "", true},
		{"No extension", "page", "", true},
		{"Custom extension", "page.lolcode", ".lolcode", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSource(tt.file, tt.ext)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadExtension)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		src, dir, ext string
		want          string
	}{
		{"site/index.lol", "", "", filepath.Join("site", "index.html")},
		{"site/index.lol", "public", "", filepath.Join("public", "index.html")},
		{"index.lol", "", ".htm", "index.htm"},
		{"a/b.c.lol", "", "", filepath.Join("a", "b.c.html")},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, OutputPath(tt.src, tt.dir, tt.ext), "OutputPath(%q, %q, %q)", tt.src, tt.dir, tt.ext)
	}
}

func TestDiskStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "page.lol")
	require.NoError(t, os.WriteFile(src, []byte("#HAI #KTHXBYE"), 0644))

	s := NewDiskStore("")
	got, err := s.ReadSource(src)
	require.NoError(t, err)
	assert.Equal(t, "#HAI #KTHXBYE", got)

	out, err := s.WriteDocument(src, "<html></html>")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "page.html"), out)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(raw))
}

func TestDiskStore_OutputDir(t *testing.T) {
	dir := t.TempDir()
	s := NewDiskStore(filepath.Join(dir, "public", "nested"))

	out, err := s.WriteDocument("somewhere/page.lol", "doc")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "public", "nested", "page.html"), out)
	assert.FileExists(t, out)
}

func TestDiskStore_Errors(t *testing.T) {
	dir := t.TempDir()
	s := NewDiskStore("")

	_, err := s.ReadSource(filepath.Join(dir, "missing.lol"))
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = s.ReadSource(filepath.Join(dir, "page.md"))
	assert.ErrorIs(t, err, ErrBadExtension)
}

func TestMemoryStore_Write(t *testing.T) {
	tests := []struct {
		name         string
		filename     string
		data         []byte
		expectError  bool
		expectedUsed int
	}{
		{"Valid write", "page.lol", []byte("abc"), false, 3},
		{"Path traversal", "../passwd", []byte("x"), true, 0},
		{"Nested path", "a/b.lol", []byte("x"), true, 0},
		{"Quota exceeded", "big.bin", make([]byte, MaxMemoryBytes+1), true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMemoryStore()
			err := m.Write(tt.filename, tt.data)
			if tt.expectError {
				assert.Error(t, err)
				assert.Empty(t, m.Files)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedUsed, m.UsedBytes)
			entry := m.Files[tt.filename]
			require.NotNil(t, entry)
			assert.False(t, entry.Created.IsZero())
			assert.False(t, entry.Modified.IsZero())
		})
	}
}

func TestMemoryStore_OverwriteTracksUsage(t *testing.T) {
	m := NewMemoryStore()
	require.NoError(t, m.Write("a.lol", []byte("12345")))
	require.NoError(t, m.Write("a.lol", []byte("12")))
	assert.Equal(t, 2, m.UsedBytes)
}

func TestMemoryStore_IdenticalWriteStaysClean(t *testing.T) {
	m := NewMemoryStore()
	require.NoError(t, m.Write("a.html", []byte("same")))
	require.NoError(t, m.PersistTo(t.TempDir()))
	modified := m.Files["a.html"].Modified

	require.NoError(t, m.Write("a.html", []byte("same")))
	assert.False(t, m.Dirty())
	assert.Equal(t, modified, m.Files["a.html"].Modified)

	require.NoError(t, m.Write("a.html", []byte("different")))
	assert.True(t, m.Dirty())
}

func TestMemoryStore_ReadReturnsCopy(t *testing.T) {
	m := NewMemoryStore()
	data := []byte("abc")
	require.NoError(t, m.Write("a.lol", data))
	data[0] = 'z'

	got, err := m.Read("a.lol")
	require.NoError(t, err)
	got[1] = 'z'

	again, err := m.Read("a.lol")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestMemoryStore_Store(t *testing.T) {
	var s Store = NewMemoryStore()
	m := s.(*MemoryStore)
	require.NoError(t, m.Write("index.lol", []byte("#HAI #KTHXBYE")))

	src, err := s.ReadSource("index.lol")
	require.NoError(t, err)
	assert.Equal(t, "#HAI #KTHXBYE", src)

	_, err = s.ReadSource("missing.lol")
	assert.ErrorIs(t, err, ErrFileNotFound)

	out, err := s.WriteDocument("index.lol", "<html></html>")
	require.NoError(t, err)
	assert.Equal(t, "index.html", out)
	assert.Contains(t, m.Files, "index.html")
}

func TestMemoryStore_PersistTo(t *testing.T) {
	dir := t.TempDir()
	m := NewMemoryStore()
	require.NoError(t, m.Write("keep.html", []byte("keep")))
	require.NoError(t, m.Write("also.html", []byte("also")))
	require.True(t, m.Dirty())

	require.NoError(t, m.PersistTo(dir))
	assert.False(t, m.Dirty())
	assert.FileExists(t, filepath.Join(dir, "keep.html"))
	assert.FileExists(t, filepath.Join(dir, "also.html"))

	raw, err := os.ReadFile(filepath.Join(dir, "keep.html"))
	require.NoError(t, err)
	assert.Equal(t, "keep", string(raw))
}

func TestStagedStore(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "page.lol")
	require.NoError(t, os.WriteFile(src, []byte("#HAI #KTHXBYE"), 0644))
	outDir := filepath.Join(dir, "public")

	s := NewStagedStore(outDir)
	got, err := s.ReadSource(src)
	require.NoError(t, err)
	assert.Equal(t, "#HAI #KTHXBYE", got)

	out, err := s.WriteDocument(src, "v1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "page.html"), out)
	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(raw))

	// Unchanged content is not written again.
	require.NoError(t, os.WriteFile(out, []byte("edited"), 0644))
	_, err = s.WriteDocument(src, "v1")
	require.NoError(t, err)
	raw, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "edited", string(raw))

	_, err = s.WriteDocument(src, "v2")
	require.NoError(t, err)
	raw, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(raw))
}
