package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenariosDir = "../harness/testdata/scenarios"

// copyScenarioFixture builds a scenarios directory in a temp dir with one
// program and one scenario pointing at it.
func copyScenarioFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "programs/add.yaml", addSubProgram)
	writeFile(t, dir, "scenarios/add.yaml", `
name: add
description: literal add folds to a push
program: ../programs/add.yaml
assertions:
  - type: asm_contains
    text: "push 3"
`)
	return filepath.Join(dir, "scenarios")
}

func TestRunTestsAllPass(t *testing.T) {
	stdout, _, err := execute(t, "test", scenariosDir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ add_sub")
	assert.Contains(t, stdout, "✓ div_zero")
	assert.Contains(t, stdout, "✓ All scenarios passed")
}

func TestRunTestsJSON(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "test", scenariosDir)
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Data.Failed)
	assert.Equal(t, resp.Data.Total, resp.Data.Passed)
	assert.Len(t, resp.Data.Scenarios, resp.Data.Total)
}

func TestRunTestsFilter(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "test", scenariosDir, "--filter", "*div*")
	require.NoError(t, err)

	var resp struct {
		Data TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))

	names := make([]string, 0, len(resp.Data.Scenarios))
	for _, s := range resp.Data.Scenarios {
		names = append(names, s.Name)
	}
	assert.ElementsMatch(t, []string{"div_zero", "runtime_div"}, names)
}

func TestRunTestsNoMatches(t *testing.T) {
	stdout, _, err := execute(t, "test", scenariosDir, "--filter", "nothing_*")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No scenarios found.")
}

func TestRunTestsMissingDir(t *testing.T) {
	_, _, err := execute(t, "test", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunTestsFailingAssertion(t *testing.T) {
	dir := copyScenarioFixture(t)
	writeFile(t, dir, "wrong.yaml", `
name: wrong
description: expects a push that is never emitted
program: ../programs/add.yaml
assertions:
  - type: asm_contains
    text: "push 99"
`)

	stdout, _, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✓ add")
	assert.Contains(t, stdout, "✗ wrong")
	assert.Contains(t, stdout, "1 passed, 1 failed, 2 total")
}

func TestRunTestsUpdateAndCompareGolden(t *testing.T) {
	dir := copyScenarioFixture(t)

	stdout, _, err := execute(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, stdout, "(golden updated)")

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "add.golden"))
	require.NoError(t, err)
	assert.Equal(t, addSubAsm, string(golden))

	_, _, err = execute(t, "test", dir)
	require.NoError(t, err)

	// A stale golden file fails the scenario.
	writeFile(t, dir, "golden/add.golden", "stale\n")
	stdout, _, err = execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, stdout, "does not match golden file")
}

func TestRunTestsBadScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.yaml", "name: broken\nprogram: x.yaml\nassertions:\n  - type: nonsense\n")

	stdout, _, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, stdout, "failed to load scenario")
}

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "")
	writeFile(t, dir, "b.yml", "")
	writeFile(t, dir, "notes.txt", "")
	writeFile(t, dir, "nested/c.yaml", "")
	writeFile(t, dir, "golden/a.golden", "")
	writeFile(t, dir, "golden/skip.yaml", "")

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "b.yml"),
		filepath.Join(dir, "nested", "c.yaml"),
	}, files)

	files, err = findScenarioFiles(dir, "a*")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.yaml")}, files)

	_, err = findScenarioFiles(dir, "[")
	assert.Error(t, err)
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("scenarios", "golden", "add_sub.golden"),
		goldenFilePath(filepath.Join("scenarios", "add_sub.yaml")))
	assert.Equal(t,
		filepath.Join("s", "nested", "golden", "x.golden"),
		goldenFilePath(filepath.Join("s", "nested", "x.yml")))
}
