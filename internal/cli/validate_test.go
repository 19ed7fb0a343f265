package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validateResponse struct {
	Status string           `json:"status"`
	Data   ValidationResult `json:"data"`
	Error  *CLIError        `json:"error"`
}

func validateArgs(dir string, extra ...string) []string {
	args := []string{"validate", filepath.Join(dir, "defs"), "-I", filepath.Join(dir, "include")}
	return append(args, extra...)
}

func TestValidate_Valid(t *testing.T) {
	dir := writeProject(t, nil)

	out, _, err := execute(t, validateArgs(dir)...)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All definitions valid (2 intrinsic(s))")
	assert.Contains(t, out, "Skipped 1 record(s):\n  int_bad: ")
}

func TestValidate_ValidJSON(t *testing.T) {
	dir := writeProject(t, nil)

	out, _, err := execute(t, validateArgs(dir, "--format", "json")...)
	require.NoError(t, err)

	var resp validateResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	require.NotNil(t, resp.Data.Report)
	assert.Equal(t, 2, resp.Data.Report.Intrinsics)
	assert.Empty(t, resp.Data.Report.Cycles)
}

// problemDefs has one problem of each kind.
const problemDefs = `include "prelude.td"
class Loop : Loop;
def int_missing : Intrinsic;
def int_v : Intrinsic<[], [llvm_void_ty]>;
def int_ok : Intrinsic<[llvm_i32_ty], []>;
`

func TestValidate_ReportsEveryProblem(t *testing.T) {
	dir := writeProject(t, map[string]string{"defs/main.td": problemDefs})

	out, _, err := execute(t, validateArgs(dir)...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed with 3 error(s)")

	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "Loop -> Loop")
	assert.Contains(t, out, "int_missing")
	assert.Contains(t, out, "E106: int_v: params[0]")
	assert.NotContains(t, out, "int_ok")
}

func TestValidate_ProblemsJSON(t *testing.T) {
	dir := writeProject(t, map[string]string{"defs/main.td": problemDefs})

	out, _, err := execute(t, validateArgs(dir, "--format", "json")...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp validateResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeResolve, resp.Error.Code)

	report := resp.Data.Report
	require.NotNil(t, report)
	assert.False(t, resp.Data.Valid)
	assert.Len(t, report.Cycles, 1)
	assert.Len(t, report.ResolveErrors, 1)
	require.Len(t, report.Invalid, 1)
	assert.Equal(t, "E106", report.Invalid[0].Code)
	assert.Equal(t, 2, report.Intrinsics)
}

func TestValidate_ParseErrorIsCommandError(t *testing.T) {
	dir := writeProject(t, map[string]string{"defs/main.td": "foo bar;"})

	out, _, err := execute(t, validateArgs(dir)...)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E011]")
}

func TestValidate_NonExistentPath(t *testing.T) {
	out, _, err := execute(t, "validate", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestValidate_MissingArgs(t *testing.T) {
	_, _, err := execute(t, "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}
