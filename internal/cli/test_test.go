package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tdgen/internal/testutil"
)

const passingScenario = `name: foo_widths
description: "llvm.foo expands to four integer widths"
files: [defs.td]
include_dirs: [include]
assertions:
  - type: signature_count
    intrinsic: int_foo
    count: 4
  - type: signature
    name: llvm.foo.i64
    return: i32
    params: [i64]
`

const failingScenario = `name: wrong_count
files: [defs.td]
include_dirs: [include]
assertions:
  - type: signature_count
    count: 99
`

// writeScenarios lays out a scenarios directory with shared sources.
func writeScenarios(t *testing.T, scenarios map[string]string) string {
	t.Helper()
	files := map[string]string{
		"include/prelude.td": testutil.Prelude,
		"defs.td":            "include \"prelude.td\"\ndef int_foo : Intrinsic<[llvm_i32_ty], [llvm_anyint_ty]>;\n",
	}
	for name, content := range scenarios {
		files[name] = content
	}
	return testutil.WriteFiles(t, t.TempDir(), files)
}

func TestTestCommand_MissingArgs(t *testing.T) {
	_, _, err := execute(t, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommand_NonExistentScenariosDir(t *testing.T) {
	_, _, err := execute(t, "test", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommand_EmptyScenariosDir(t *testing.T) {
	dir := t.TempDir()

	out, _, err := execute(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")

	out, _, err = execute(t, "test", dir, "--format", "json")
	require.NoError(t, err)
	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Data.Total)
}

func TestTestCommand_Passing(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"foo.yaml": passingScenario})

	out, _, err := execute(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ foo_widths")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommand_Failing(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"foo.yaml":   passingScenario,
		"wrong.yaml": failingScenario,
	})

	out, _, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong_count")
	assert.Contains(t, out, "Expected: 99 signatures")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTestCommand_FailingJSON(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"wrong.yaml": failingScenario})

	out, _, err := execute(t, "test", dir, "--format", "json")
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.False(t, resp.Data.Scenarios[0].Pass)
	assert.NotEmpty(t, resp.Data.Scenarios[0].Errors)
}

func TestTestCommand_Filter(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"foo.yaml":   passingScenario,
		"wrong.yaml": failingScenario,
	})

	out, _, err := execute(t, "test", dir, "--filter", "fo*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 total")
	assert.NotContains(t, out, "wrong_count")
}

func TestTestCommand_GoldenUpdateAndCompare(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"foo.yaml": passingScenario})
	goldenPath := filepath.Join(dir, "golden", "foo_widths.golden")

	out, _, err := execute(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ foo_widths (golden updated)")

	golden, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"name":"llvm.foo.i8"`)
	assert.Contains(t, string(golden), `"run_id":"test-run-default"`)

	// Unchanged output matches.
	_, _, err = execute(t, "test", dir)
	require.NoError(t, err)

	// A stale golden file fails the scenario.
	require.NoError(t, os.WriteFile(goldenPath, []byte(`{"stale":true}`), 0o644))
	out, _, err = execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "does not match golden file")
}

func TestTestCommand_LoadError(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"typo.yaml": "name: typo\nfiles: [defs.td]\nassertion: []\n"})

	out, _, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ typo.yaml")
	assert.Contains(t, out, "failed to load scenario")
}
