package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// GoldenBytes renders the part of a result that golden files pin down:
// the assembly text of a successful build, or a one-line error record
// for a rejected one.
func GoldenBytes(result *Result) []byte {
	if result.Failed() {
		return []byte("error: " + result.ErrorCode + "\n")
	}
	return []byte(result.Assembly)
}

// RunWithGolden executes a scenario and compares its output against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the output doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, GoldenBytes(result))
}
