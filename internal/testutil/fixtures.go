// Package testutil holds deterministic generators and fixtures shared by
// package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/tdgen/internal/store"
)

// Prelude declares the intrinsic class hierarchy in the shape the default
// configuration expects.
const Prelude = `class LLVMType;
class SDPatternOperator;
class IntrinsicProperty;
class Intrinsic<list<LLVMType> ret_types, list<LLVMType> param_types = [],
                list<IntrinsicProperty> intr_properties = [], string name = ""> : SDPatternOperator;
class DefaultAttrsIntrinsic<list<LLVMType> ret_types, list<LLVMType> param_types = [],
                list<IntrinsicProperty> intr_properties = [], string name = "">
    : Intrinsic<ret_types, param_types, intr_properties, name>;
class ClangBuiltin<string name>;
`

// WriteFiles writes each name → content pair under dir, creating parent
// directories, and returns dir.
func WriteFiles(t *testing.T, dir string, files map[string]string) string {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return dir
}

// OpenCatalog opens a fresh signature catalog in a temporary directory and
// closes it when the test ends.
func OpenCatalog(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
