package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const addSubProgram = `
name: add_sub
functions:
  - name: main
    body:
      - op: add
        args: ["i8:1", "i8:2"]
        to: sum
      - op: sub
        args: ["i8:3", "i8:1"]
        to: diff
`

const addSubAsm = "section .data\n\n" +
	"section .text\nglobal _start\n\n" +
	"_start:\n" +
	"\tmov rbp, rsp\n" +
	"\tpush 3\n" +
	"\tpush 2\n" +
	"\tmov eax, 60\n" +
	"\tmov edi, 0\n" +
	"\tsyscall\n"

// writeFile writes content under dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
