package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Translit-INC/translit/internal/compiler"
	"github.com/Translit-INC/translit/internal/driver"
	"github.com/Translit-INC/translit/internal/store"
	"github.com/Translit-INC/translit/internal/testutil"
)

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh in-memory artifact cache with a fixed
// build ID, so results are reproducible.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Load the program file
// 3. Build it through the driver
// 4. Evaluate assertions against the assembly, IR or error code
//
// A rejected program is not an execution error: its code lands in
// Result.ErrorCode for error_code assertions. The returned error covers
// only infrastructure failures such as an unreadable program file.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	prog, err := compiler.LoadProgram(scenario.Program)
	if err != nil {
		return nil, fmt.Errorf("failed to load program: %w", err)
	}

	d := driver.New(
		driver.WithStore(st),
		driver.WithIDGenerator(testutil.NewFixedIDGenerator(scenario.BuildID)),
		driver.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	result := NewResult()
	built, err := d.Build(context.Background(), prog)
	if err != nil {
		code := driver.ErrorCode(err)
		if code == "" {
			return nil, fmt.Errorf("failed to build program: %w", err)
		}
		result.ErrorCode = code
		result.BuildError = err.Error()
	} else {
		result.BuildID = built.BuildID
		result.Assembly = built.Assembly
		for _, inst := range built.Snapshot.Instructions() {
			result.IR = append(result.IR, inst.String())
		}
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}
