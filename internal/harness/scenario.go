package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Program is the path to the program file (.yaml, .yml or .cue).
	// Relative paths are resolved against the scenario file's directory.
	Program string `yaml:"program"`

	// Assertions validate the build outcome.
	// Supported types: asm_contains, asm_order, asm_count, ir_contains, error_code
	Assertions []Assertion `yaml:"assertions"`

	// BuildID is an optional fixed build ID. Defaults to "test-build-default".
	BuildID string `yaml:"build_id,omitempty"`
}

// Assertion validates one aspect of the build outcome.
type Assertion struct {
	// Type specifies the assertion type:
	// - "asm_contains": an assembly line contains Text
	// - "asm_order": lines containing each of Lines appear in order
	// - "asm_count": exactly Count assembly lines equal Text (after trimming)
	// - "ir_contains": an IR instruction's text form equals Text
	// - "error_code": the build failed with Code
	Type string `yaml:"type"`

	// Text is the line or fragment to look for.
	Text string `yaml:"text,omitempty"`

	// Lines is the expected line order (used by asm_order).
	Lines []string `yaml:"lines,omitempty"`

	// Count is the expected number of occurrences (used by asm_count).
	Count int `yaml:"count,omitempty"`

	// Code is the expected error code (used by error_code).
	// Builder codes (DIVIDE_BY_ZERO), validation codes (E103) and
	// lowering codes (NO_ENTRY_FUNCTION) are all accepted.
	Code string `yaml:"code,omitempty"`
}

// Assertion type constants.
const (
	AssertAsmContains = "asm_contains"
	AssertAsmOrder    = "asm_order"
	AssertAsmCount    = "asm_count"
	AssertIRContains  = "ir_contains"
	AssertErrorCode   = "error_code"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Program != "" && !filepath.IsAbs(scenario.Program) {
		scenario.Program = filepath.Join(filepath.Dir(path), scenario.Program)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Program == "" {
		return fmt.Errorf("program is required")
	}

	if _, err := os.Stat(s.Program); os.IsNotExist(err) {
		return fmt.Errorf("program file not found: %s", s.Program)
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertAsmContains, AssertIRContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for %s", index, a.Type)
		}
	case AssertAsmOrder:
		if len(a.Lines) == 0 {
			return fmt.Errorf("assertions[%d]: lines list is required for asm_order", index)
		}
	case AssertAsmCount:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for asm_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for asm_count", index)
		}
	case AssertErrorCode:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for error_code", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
