package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestRun_Scenarios(t *testing.T) {
	names := []string{"add_sub", "calls", "countdown", "div_zero", "runtime_div", "bad_opcode"}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			result, err := Run(loadTestScenario(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRun_SuccessPopulatesResult(t *testing.T) {
	result, err := Run(loadTestScenario(t, "add_sub"))
	require.NoError(t, err)

	assert.Equal(t, "test-build-default", result.BuildID)
	assert.False(t, result.Failed())
	assert.Contains(t, result.Assembly, "_start:")
	assert.Equal(t, []string{"ADD i8:1, i8:2", "SUB i8:3, i8:1", "END"}, result.IR)
}

func TestRun_FailurePopulatesErrorCode(t *testing.T) {
	result, err := Run(loadTestScenario(t, "div_zero"))
	require.NoError(t, err)

	assert.True(t, result.Failed())
	assert.Equal(t, "DIVIDE_BY_ZERO", result.ErrorCode)
	assert.Empty(t, result.Assembly)
	assert.Contains(t, result.BuildError, "functions[0].body[0]")
}

func TestRun_FixedBuildID(t *testing.T) {
	s := loadTestScenario(t, "add_sub")
	s.BuildID = "build-42"

	result, err := Run(s)
	require.NoError(t, err)
	assert.Equal(t, "build-42", result.BuildID)
}

func TestRun_FailingAssertion(t *testing.T) {
	s := loadTestScenario(t, "add_sub")
	s.Assertions = []Assertion{{Type: AssertAsmContains, Text: "call func_"}}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Assertion failed: asm_contains")
}

func TestRun_UnreadableProgram(t *testing.T) {
	s := loadTestScenario(t, "add_sub")
	s.Program = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load program")
}

func TestRun_Deterministic(t *testing.T) {
	s := loadTestScenario(t, "calls")

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)
	assert.Equal(t, GoldenBytes(first), GoldenBytes(second))
}
