package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/roach88/tdgen/internal/testutil"
)

// defsSource exercises an overloaded intrinsic, a target intrinsic and a
// skipped descriptor.
const defsSource = `include "prelude.td"

def int_foo : Intrinsic<[llvm_i32_ty], [llvm_anyint_ty]>;
def int_x86_pause : Intrinsic<[], []>;
def int_bad : Intrinsic<[llvm_bogus_ty]>;
`

// writeProject lays out include/prelude.td and defs/main.td plus extra
// files, and returns the project directory.
func writeProject(t *testing.T, extra map[string]string) string {
	t.Helper()
	files := map[string]string{
		"include/prelude.td": testutil.Prelude,
		"defs/main.td":       defsSource,
	}
	for name, content := range extra {
		files[name] = content
	}
	return testutil.WriteFiles(t, t.TempDir(), files)
}

// execute runs the root command with args and returns stdout, stderr and
// the command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// generateArgs returns the arguments that generate the default project.
func generateArgs(dir string, extra ...string) []string {
	args := []string{"generate", filepath.Join(dir, "defs"), "-I", filepath.Join(dir, "include")}
	return append(args, extra...)
}
