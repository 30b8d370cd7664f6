package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Listing  []string // Assembly or IR lines for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Listing) > 0 {
		fmt.Fprintf(&buf, "\nListing:\n")
		for i, line := range e.Listing {
			fmt.Fprintf(&buf, "  %3d  %s\n", i+1, line)
		}
	}

	return buf.String()
}

// asmLines splits assembly into trimmed, non-empty lines.
func asmLines(asm string) []string {
	var lines []string
	for _, line := range strings.Split(asm, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// assertAsmContains checks that some assembly line contains the text.
func assertAsmContains(lines []string, assertion Assertion) error {
	for _, line := range lines {
		if strings.Contains(line, assertion.Text) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertAsmContains,
		Expected: fmt.Sprintf("a line containing %q", assertion.Text),
		Actual:   "not found in assembly",
		Listing:  lines,
	}
}

// assertAsmOrder checks that lines containing each entry appear in order.
// Matches don't need to be consecutive (intervening lines are allowed).
func assertAsmOrder(lines []string, assertion Assertion) error {
	pos := 0
	for i, want := range assertion.Lines {
		found := -1
		for j := pos; j < len(lines); j++ {
			if strings.Contains(lines[j], want) {
				found = j
				break
			}
		}
		if found < 0 {
			actual := fmt.Sprintf("%q not found after line %d", want, pos)
			if i == 0 {
				actual = fmt.Sprintf("%q not found", want)
			}
			return &AssertionError{
				Type:     AssertAsmOrder,
				Expected: fmt.Sprintf("lines in order: %q", assertion.Lines),
				Actual:   actual,
				Listing:  lines,
			}
		}
		pos = found + 1
	}
	return nil
}

// assertAsmCount checks that exactly Count lines equal the text.
func assertAsmCount(lines []string, assertion Assertion) error {
	want := strings.TrimSpace(assertion.Text)
	count := 0
	for _, line := range lines {
		if line == want {
			count++
		}
	}
	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertAsmCount,
			Expected: fmt.Sprintf("%q exactly %d time(s)", want, assertion.Count),
			Actual:   fmt.Sprintf("found %d time(s)", count),
			Listing:  lines,
		}
	}
	return nil
}

// assertIRContains checks that some instruction's text form equals the text.
func assertIRContains(instructions []string, assertion Assertion) error {
	if slices.Contains(instructions, assertion.Text) {
		return nil
	}
	return &AssertionError{
		Type:     AssertIRContains,
		Expected: fmt.Sprintf("instruction %q", assertion.Text),
		Actual:   "not found in IR",
		Listing:  instructions,
	}
}

// assertErrorCode checks that the build failed with the given code.
func assertErrorCode(result *Result, assertion Assertion) error {
	if result.ErrorCode == assertion.Code {
		return nil
	}
	actual := "build succeeded"
	if result.Failed() {
		actual = fmt.Sprintf("build failed with %s: %s", result.ErrorCode, result.BuildError)
	}
	return &AssertionError{
		Type:     AssertErrorCode,
		Expected: fmt.Sprintf("build failure with %s", assertion.Code),
		Actual:   actual,
	}
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
//
// A failed build with no error_code assertion is itself reported as a
// failure, so a scenario never passes by accident on a rejected program.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	expectsFailure := false
	lines := asmLines(result.Assembly)

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertAsmContains:
			err = assertAsmContains(lines, assertion)
		case AssertAsmOrder:
			err = assertAsmOrder(lines, assertion)
		case AssertAsmCount:
			err = assertAsmCount(lines, assertion)
		case AssertIRContains:
			err = assertIRContains(result.IR, assertion)
		case AssertErrorCode:
			expectsFailure = true
			err = assertErrorCode(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	if result.Failed() && !expectsFailure {
		errors = append(errors, fmt.Sprintf("build failed unexpectedly with %s: %s",
			result.ErrorCode, result.BuildError))
	}

	return errors
}
