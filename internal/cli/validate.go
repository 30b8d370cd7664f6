package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Translit-INC/translit/internal/compiler"
	"github.com/Translit-INC/translit/internal/driver"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid        bool                       `json:"valid"`
	Program      string                     `json:"program,omitempty"`
	Instructions int                        `json:"instructions,omitempty"`
	Errors       []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <program>",
		Short: "Validate a program without lowering it",
		Long: `Validate a YAML or CUE program without lowering it.

Runs static checks (opcode names, types, names and labels), then builds
the IR so every instruction is verified. No assembly is produced.
Faster than compile for development feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	if _, err := os.Stat(path); err != nil {
		return outputValidateError(formatter, ErrCodeNotFound, fmt.Sprintf("program file not found: %s", path))
	}

	prog, err := compiler.LoadProgram(path)
	if err != nil {
		return outputValidateError(formatter, ErrCodeLoadFailed, err.Error())
	}

	errs, instructions := ValidateProgram(prog)
	if len(errs) > 0 {
		return outputValidationErrors(formatter, errs, ExitFailure)
	}
	formatter.VerboseLog("Built %d instruction(s)", instructions)

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{
			Valid:        true,
			Program:      prog.Name,
			Instructions: instructions,
		})
	}
	fmt.Fprintf(formatter.Writer, "✓ %s is valid\n", prog.Name)
	return nil
}

// ValidateProgram runs static validation and, if that passes, builds the
// IR. A builder rejection is reported as a single ValidationError carrying
// the builder code. Returns the instruction count of a valid program.
func ValidateProgram(prog *compiler.Program) ([]compiler.ValidationError, int) {
	if errs := compiler.Validate(prog); len(errs) > 0 {
		return errs, 0
	}

	snap, err := compiler.Compile(prog)
	if err != nil {
		verr := compiler.ValidationError{
			Field:   "program",
			Message: err.Error(),
			Code:    driver.ErrorCode(err),
		}
		var compileErr *compiler.CompileError
		if errors.As(err, &compileErr) {
			verr.Field = compileErr.Field
			verr.Message = compileErr.Message
		}
		if verr.Code == "" {
			verr.Code = ErrCodeGeneric
		}
		return []compiler.ValidationError{verr}, 0
	}
	return nil, snap.Len()
}

// outputValidateError outputs a single command-level error.
func outputValidateError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs every validation error and returns an
// ExitError with the given exit code.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError, exitCode int) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:  false,
				Errors: errs,
			},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if err := writeJSON(formatter.Writer, response); err != nil {
			return err
		}
		return NewExitError(exitCode, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "%s\n", err.Field)
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	return NewExitError(exitCode, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
