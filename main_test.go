//go:build !js

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lolcompiler/pkg/compiler"
	"lolcompiler/pkg/htmlcheck"
)

// copyTestdata copies a sample source into a fresh directory and switches the
// working directory there so no lolc.yaml from the repo is picked up.
func copyTestdata(t *testing.T, name string) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, raw, 0644))
	t.Chdir(dir)
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), args, &out)
	return out.String(), err
}

func TestBuildSample(t *testing.T) {
	src := copyTestdata(t, "simpsons.lol")

	out, err := runCLI(t, "build", "--verify", src)
	require.NoError(t, err)

	docPath := strings.TrimSpace(out)
	assert.Equal(t, filepath.Join(filepath.Dir(src), "simpsons.html"), docPath)

	raw, err := os.ReadFile(docPath)
	require.NoError(t, err)
	doc := string(raw)

	expectedFragments := []string{
		"<!doctype html>\n<html>\n<!-- Springfield fan page -->\n<head><title>The Simpsons</title></head>\n<body>",
		"<p>\nHello my name is\nHomer J Simpson\nfrom\nSpringfield\n<br>\n<b>Mmm donuts</b>\n<i>doh</i>\n</p>",
		"<ul>\n<li>\nBart\n</li>\n<li>\nLisa\n<b>plays sax</b>\n</li>",
		`<audio controls><source src="https://example.com/theme.mp3" /></audio>`,
		`<iframe src="https://example.com/couch-gag.mp4" allowfullscreen loading="lazy"></iframe>`,
		"</body>\n</html>",
	}
	for _, frag := range expectedFragments {
		assert.Contains(t, doc, frag)
	}
	assert.NoError(t, htmlcheck.Check(doc))
}

func TestBuildOutputDir(t *testing.T) {
	src := copyTestdata(t, "simpsons.lol")
	outDir := filepath.Join(t.TempDir(), "public")

	out, err := runCLI(t, "build", "-o", outDir, src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "simpsons.html"), strings.TrimSpace(out))
	assert.FileExists(t, filepath.Join(outDir, "simpsons.html"))
}

func TestBuildFailures(t *testing.T) {
	tests := []struct {
		file  string
		check func(error) bool
	}{
		{"scope_error.lol", compiler.IsSemantic},
		{"unterminated.lol", compiler.IsSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			src := copyTestdata(t, tt.file)

			_, err := runCLI(t, "build", src)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
			assert.NoFileExists(t, strings.TrimSuffix(src, ".lol")+".html")
		})
	}
}

func TestBuildRejectsWrongExtension(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("page.txt", []byte("#HAI #KTHXBYE"), 0644))

	_, err := runCLI(t, "build", "page.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported source extension")
}

func TestWatchBuildsBeforeWatching(t *testing.T) {
	src := copyTestdata(t, "simpsons.lol")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	require.NoError(t, run(ctx, []string{"watch", src}, &out))
	docPath := filepath.Join(filepath.Dir(src), "simpsons.html")
	assert.Equal(t, docPath, strings.TrimSpace(out.String()))
	assert.FileExists(t, docPath)
}

func TestTokens(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("tiny.lol", []byte("#HAI\nhi #KTHXBYE"), 0644))

	out, err := runCLI(t, "tokens", "tiny.lol")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "#HAI")
	assert.Contains(t, lines[1], `"hi"`)
	assert.Contains(t, lines[1], "line 2")
	assert.Contains(t, lines[2], "#KTHXBYE")
	assert.Contains(t, lines[3], "EOF")
}

func TestInitAndConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	out, err := runCLI(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote lolc.yaml")
	assert.FileExists(t, filepath.Join(dir, "lolc.yaml"))

	_, err = runCLI(t, "init")
	assert.Error(t, err)
	_, err = runCLI(t, "init", "--force")
	assert.NoError(t, err)

	// output.dir from the file is honoured by build.
	require.NoError(t, os.WriteFile("lolc.yaml", []byte("output:\n  dir: site\n"), 0644))
	require.NoError(t, os.WriteFile("index.lol", []byte("#HAI #KTHXBYE"), 0644))
	out, err = runCLI(t, "build", "index.lol")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("site", "index.html"), strings.TrimSpace(out))
}

func TestBadLogLevelFails(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("lolc.yaml", []byte("log:\n  level: loud\n"), 0644))
	require.NoError(t, os.WriteFile("index.lol", []byte("#HAI #KTHXBYE"), 0644))

	_, err := runCLI(t, "build", "index.lol")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loud")
	assert.NoFileExists(t, "index.html")
}

func TestUnknownCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := runCLI(t, "frobnicate")
	assert.Error(t, err)
}
