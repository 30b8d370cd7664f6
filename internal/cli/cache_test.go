package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Translit-INC/translit/internal/lower"
)

// seedCache compiles the add/sub program into a fresh cache database and
// returns its path with the build result.
func seedCache(t *testing.T) (string, CompilationResult) {
	t.Helper()
	dir := t.TempDir()
	path := writeFile(t, dir, "add.yaml", addSubProgram)
	db := filepath.Join(dir, "cache.db")

	stdout, _, err := execute(t, "--format", "json", "compile", path, "--cache", db)
	require.NoError(t, err)

	var resp struct{ Data CompilationResult }
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	return db, resp.Data
}

func TestCacheList(t *testing.T) {
	db, built := seedCache(t)

	stdout, _, err := execute(t, "--format", "json", "cache", "--db", db)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   []CacheEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, int64(1), resp.Data[0].Seq)
	assert.Equal(t, built.SnapshotHash, resp.Data[0].SnapshotHash)
	assert.Equal(t, built.BuildID, resp.Data[0].BuildID)
	assert.Equal(t, "add_sub", resp.Data[0].Program)
	assert.Equal(t, len(addSubAsm), resp.Data[0].Size)
	assert.Equal(t, lower.Version, resp.Data[0].LowerVersion)

	stdout, _, err = execute(t, "cache", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "[1] "+shortHash(built.SnapshotHash))
}

func TestCacheEmpty(t *testing.T) {
	stdout, _, err := execute(t, "cache", "--db", filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "Cache is empty.")
}

func TestCacheShow(t *testing.T) {
	db, built := seedCache(t)

	stdout, _, err := execute(t, "cache", "--db", db, "--show", built.SnapshotHash)
	require.NoError(t, err)
	assert.Equal(t, addSubAsm, stdout)

	stdout, _, err = execute(t, "cache", "--db", db, "--show", built.BuildID)
	require.NoError(t, err)
	assert.Equal(t, addSubAsm, stdout)
}

func TestCacheShowMissing(t *testing.T) {
	db, _ := seedCache(t)

	stdout, _, err := execute(t, "cache", "--db", db, "--show", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E005]")
}

func TestCacheDelete(t *testing.T) {
	db, built := seedCache(t)

	stdout, _, err := execute(t, "cache", "--db", db, "--delete", built.SnapshotHash)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ Deleted "+built.SnapshotHash)

	stdout, _, err = execute(t, "cache", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Cache is empty.")
}

func TestCacheRequiresDB(t *testing.T) {
	_, _, err := execute(t, "cache")
	require.Error(t, err)
}

func TestShortHash(t *testing.T) {
	assert.Equal(t, "abc", shortHash("abc"))
	assert.Equal(t, "0123456789ab", shortHash("0123456789abcdef"))
}
