package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookupResponse struct {
	Status string       `json:"status"`
	Data   LookupResult `json:"data"`
	Error  *CLIError    `json:"error"`
}

// generateCatalog runs generate into a fresh catalog twice and returns its
// path.
func generateCatalog(t *testing.T) string {
	t.Helper()
	dir := writeProject(t, nil)
	db := filepath.Join(t.TempDir(), "catalog.db")
	for i := 0; i < 2; i++ {
		_, _, err := execute(t, generateArgs(dir, "--db", db)...)
		require.NoError(t, err)
	}
	return db
}

func TestLookup_Selector(t *testing.T) {
	db := generateCatalog(t)

	out, _, err := execute(t, "lookup", "--db", db, "--format", "json", "llvm.foo.i32", "llvm.x86.pause")
	require.NoError(t, err)

	var resp lookupResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Data.Run)

	// One row per selector per run.
	sigs := resp.Data.Signatures
	require.Len(t, sigs, 4)
	assert.Equal(t, "llvm.foo.i32", sigs[0].Name)
	assert.Equal(t, "llvm.foo.i32", sigs[1].Name)
	assert.NotEqual(t, sigs[0].RunID, sigs[1].RunID)
	assert.Equal(t, []string{"i32"}, sigs[0].Params)
	assert.Equal(t, "llvm.x86.pause", sigs[2].Name)
	assert.Equal(t, "void", sigs[2].Return)
}

func TestLookup_LatestRun(t *testing.T) {
	db := generateCatalog(t)

	out, _, err := execute(t, "lookup", "--db", db, "--format", "json")
	require.NoError(t, err)

	var resp lookupResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Data.Run)
	assert.Equal(t, int64(2), resp.Data.Run.Seq)
	require.Len(t, resp.Data.Signatures, 5)
	for _, s := range resp.Data.Signatures {
		assert.Equal(t, resp.Data.Run.ID, s.RunID)
	}

	// The same run by id.
	out, _, err = execute(t, "lookup", "--db", db, "--run", resp.Data.Run.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Run "+resp.Data.Run.ID+" (#2)")
	assert.Contains(t, out, "llvm.foo.i8 : i32 (i8)  [generic, run "+resp.Data.Run.ID+"]")
}

func TestLookup_NoMatch(t *testing.T) {
	db := generateCatalog(t)

	out, _, err := execute(t, "lookup", "--db", db, "llvm.absent")
	require.NoError(t, err)
	assert.Contains(t, out, "No signatures found.")
}

func TestLookup_UnknownRun(t *testing.T) {
	db := generateCatalog(t)

	out, _, err := execute(t, "lookup", "--db", db, "--run", "no-such-run")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]: run not found")
}

func TestLookup_MissingDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "absent.db")

	out, _, err := execute(t, "lookup", "--db", db, "llvm.foo.i32")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "database not found")
	assert.NoFileExists(t, db)
}

func TestLookup_RequiresDB(t *testing.T) {
	_, _, err := execute(t, "lookup", "llvm.foo.i32")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "db" not set`)
}
