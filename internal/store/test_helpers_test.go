package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/tdgen/internal/ir"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run with minimal required fields.
func createTestRun(id string) Run {
	return Run{
		ID:               id,
		Fingerprint:      "fp-" + id,
		IRVersion:        ir.IRVersion,
		GeneratorVersion: ir.GeneratorVersion,
		Documents:        []string{"a.td"},
	}
}

// fooSignatures are the two signatures of an intrinsic over an open integer
// narrowed to two widths.
func fooSignatures() []ir.Signature {
	return []ir.Signature{
		{
			Arch:      "generic",
			Intrinsic: "int_foo",
			Name:      "llvm.foo.i8",
			Return:    ir.Int{Width: 32},
			Params:    []ir.Type{ir.Int{Width: 8}},
			Overloads: []ir.Type{ir.Int{Width: 8}},
		},
		{
			Arch:      "generic",
			Intrinsic: "int_foo",
			Name:      "llvm.foo.i16",
			Return:    ir.Int{Width: 32},
			Params:    []ir.Type{ir.Int{Width: 16}},
			Overloads: []ir.Type{ir.Int{Width: 16}},
		},
	}
}
