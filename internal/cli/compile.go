package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Translit-INC/translit/internal/compiler"
	"github.com/Translit-INC/translit/internal/driver"
	"github.com/Translit-INC/translit/internal/store"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // assembly output path
	Cache  string // artifact cache database path
	EmitIR string // snapshot JSON output path
}

// CompilationResult summarizes one build.
type CompilationResult struct {
	BuildID      string `json:"build_id"`
	Program      string `json:"program"`
	SnapshotHash string `json:"snapshot_hash"`
	ArtifactHash string `json:"artifact_hash"`
	Cached       bool   `json:"cached"`
	Output       string `json:"output,omitempty"`
	IROutput     string `json:"ir_output,omitempty"`
	Assembly     string `json:"assembly,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <program>",
		Short: "Compile a program to x86-64 NASM assembly",
		Long: `Compile a YAML or CUE program to x86-64 NASM assembly for Linux.

The program is validated, built into verified IR, and lowered.
Without --output the assembly is written to stdout.

With --cache, builds are looked up by the content hash of their IR
and lowered only once.

Examples:
  translit compile add.yaml
  translit compile add.yaml -o add.asm
  translit compile prog.cue -o prog.asm --cache ./translit.db
  translit compile prog.cue --emit-ir prog.ir.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "assembly output path")
	cmd.Flags().StringVar(&opts.Cache, "cache", "", "artifact cache database path")
	cmd.Flags().StringVar(&opts.EmitIR, "emit-ir", "", "write the IR snapshot as JSON to this path")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := os.Stat(path); err != nil {
		return outputCompileError(formatter, ErrCodeNotFound, fmt.Sprintf("program file not found: %s", path), nil)
	}

	prog, err := compiler.LoadProgram(path)
	if err != nil {
		return outputCompileError(formatter, ErrCodeLoadFailed, err.Error(), nil)
	}
	formatter.VerboseLog("Loaded program %q: %d function(s)", prog.Name, len(prog.Functions))

	driverOpts := []driver.Option{driver.WithLogger(slog.Default())}
	if opts.Cache != "" {
		st, err := store.Open(opts.Cache)
		if err != nil {
			return outputCompileError(formatter, ErrCodeCacheFailed, fmt.Sprintf("opening cache: %v", err), nil)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing cache", "error", closeErr)
			}
		}()
		driverOpts = append(driverOpts, driver.WithStore(st))
	}

	res, err := driver.New(driverOpts...).Build(ctx, prog)
	if err != nil {
		return outputBuildError(formatter, err)
	}

	result := CompilationResult{
		BuildID:      res.BuildID,
		Program:      res.Program,
		SnapshotHash: res.SnapshotHash,
		ArtifactHash: res.ArtifactHash,
		Cached:       res.Cached,
		Output:       opts.Output,
		IROutput:     opts.EmitIR,
	}

	if opts.EmitIR != "" {
		data, err := json.MarshalIndent(res.Snapshot, "", "  ")
		if err != nil {
			return outputCompileError(formatter, ErrCodeGeneric, fmt.Sprintf("encoding IR: %v", err), nil)
		}
		if err := os.WriteFile(opts.EmitIR, append(data, '\n'), 0644); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing IR file: %v", err), nil)
		}
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(res.Assembly), 0644); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	} else {
		result.Assembly = res.Assembly
	}

	return outputCompileSuccess(formatter, result)
}

// outputCompileSuccess outputs a successful build.
func outputCompileSuccess(formatter *OutputFormatter, result CompilationResult) error {
	if formatter.Format == "json" {
		return writeJSON(formatter.Writer, CLIResponse{
			Status:  "ok",
			Data:    result,
			BuildID: result.BuildID,
		})
	}

	// Assembly goes to stdout on its own so it can be piped to nasm.
	if result.Output == "" {
		fmt.Fprint(formatter.Writer, result.Assembly)
		formatter.VerboseLog("build %s (snapshot %s, cached=%t)", result.BuildID, result.SnapshotHash, result.Cached)
		return nil
	}

	suffix := ""
	if result.Cached {
		suffix = " (cached)"
	}
	fmt.Fprintf(formatter.Writer, "✓ Compiled %s → %s%s\n", result.Program, result.Output, suffix)
	fmt.Fprintf(formatter.Writer, "  build:    %s\n", result.BuildID)
	fmt.Fprintf(formatter.Writer, "  snapshot: %s\n", result.SnapshotHash)
	if result.IROutput != "" {
		fmt.Fprintf(formatter.Writer, "Wrote IR to %s\n", result.IROutput)
	}
	return nil
}

// outputCompileError outputs a single command-level error.
func outputCompileError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputBuildError outputs a rejected build. Validation failures list
// every error; builder and lowering failures carry one code.
func outputBuildError(formatter *OutputFormatter, err error) error {
	var verrs compiler.ValidationErrors
	if errors.As(err, &verrs) {
		return outputValidationErrors(formatter, verrs, ExitCommandError)
	}

	code := driver.ErrorCode(err)
	if code == "" {
		code = ErrCodeGeneric
	}

	var details any
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		details = map[string]string{"field": compileErr.Field}
	}

	if formatter.Format == "json" {
		_ = formatter.Error(code, err.Error(), details)
	} else {
		fmt.Fprintln(formatter.Writer, "✗ Build failed")
		fmt.Fprintln(formatter.Writer)
		if compileErr != nil && compileErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				compileErr.Pos.Filename(),
				compileErr.Pos.Line(),
				compileErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", code, err.Error())
	}
	return WrapExitError(ExitCommandError, "build failed", err)
}
