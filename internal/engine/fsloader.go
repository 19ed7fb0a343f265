package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileLoader resolves includes on the filesystem: first relative to the
// including document's directory, then under each of IncludeDirs in order.
type FileLoader struct {
	IncludeDirs []string
}

// Include implements IncludeLoader.
func (l FileLoader) Include(from, path string) (Document, error) {
	var candidates []string
	if filepath.IsAbs(path) {
		candidates = []string{path}
	} else {
		candidates = append(candidates, filepath.Join(filepath.Dir(from), path))
		for _, dir := range l.IncludeDirs {
			candidates = append(candidates, filepath.Join(dir, path))
		}
	}

	for _, c := range candidates {
		doc, err := ReadDocument(c)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return doc, err
	}
	return Document{}, fmt.Errorf("not found in %s: %w", strings.Join(candidates, ", "), fs.ErrNotExist)
}

// ReadDocument reads the file at path. The document is named by the cleaned
// path so the same file reached two ways is parsed once.
func ReadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	return Document{Name: filepath.Clean(path), Source: string(data)}, nil
}
