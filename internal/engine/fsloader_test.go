package engine

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFileLoader_RelativeBeforeIncludeDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "common.td"), "class Local;")
	writeFile(t, filepath.Join(dir, "inc", "common.td"), "class Shared;")

	l := FileLoader{IncludeDirs: []string{filepath.Join(dir, "inc")}}
	doc, err := l.Include(filepath.Join(dir, "src", "main.td"), "common.td")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "src", "common.td"), doc.Name)
	assert.Equal(t, "class Local;", doc.Source)
}

func TestFileLoader_FallsBackToIncludeDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "inc", "a", "b.td"), "class B;")

	l := FileLoader{IncludeDirs: []string{filepath.Join(dir, "missing"), filepath.Join(dir, "inc")}}
	doc, err := l.Include(filepath.Join(dir, "main.td"), "a/b.td")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "inc", "a", "b.td"), doc.Name)
}

func TestFileLoader_NotFound(t *testing.T) {
	dir := t.TempDir()
	_, err := FileLoader{}.Include(filepath.Join(dir, "main.td"), "nope.td")
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "nope.td")
}

func TestFileLoader_SameFileTwoWaysLoadsOnce(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "prelude.td"), intrinsicPrelude)
	writeFile(t, filepath.Join(dir, "sub", "x.td"), `include "../prelude.td"
def int_x : Intrinsic<[], []>;`)

	e := New(nil, WithIncludeLoader(FileLoader{}))
	res, err := e.Run(context.Background(), []Document{{
		Name: filepath.Join(dir, "main.td"),
		Source: `include "prelude.td"
include "sub/x.td"`,
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"llvm.x"}, names(res.Signatures()))
	assert.Equal(t, 3, res.Stats.Documents)
}
