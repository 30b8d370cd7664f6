package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleAsm = "section .text\nglobal _start\n\n_start:\n\tmov rbp, rsp\n\tpush 3\n\tpush 2\n\tpush 3\n\tmov eax, 60\n\tsyscall\n"

func sampleResult() *Result {
	r := NewResult()
	r.Assembly = sampleAsm
	r.IR = []string{"ADD i8:1, i8:2", "END"}
	return r
}

func TestAsmLines(t *testing.T) {
	lines := asmLines("a\n\n\t b \n")
	assert.Equal(t, []string{"a", "b"}, lines)
}

func TestAssertAsmContains(t *testing.T) {
	lines := asmLines(sampleAsm)

	assert.NoError(t, assertAsmContains(lines, Assertion{Text: "push 2"}))
	assert.NoError(t, assertAsmContains(lines, Assertion{Text: "eax, 60"}))

	err := assertAsmContains(lines, Assertion{Text: "call"})
	require.Error(t, err)
	var aerr *AssertionError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, AssertAsmContains, aerr.Type)
	assert.Contains(t, err.Error(), "Listing:")
}

func TestAssertAsmOrder(t *testing.T) {
	lines := asmLines(sampleAsm)

	assert.NoError(t, assertAsmOrder(lines, Assertion{Lines: []string{"push 3", "push 2", "push 3"}}))
	assert.NoError(t, assertAsmOrder(lines, Assertion{Lines: []string{"_start:", "syscall"}}))

	err := assertAsmOrder(lines, Assertion{Lines: []string{"syscall", "_start:"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"_start:" not found after line`)

	err = assertAsmOrder(lines, Assertion{Lines: []string{"ret"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"ret" not found`)
}

func TestAssertAsmCount(t *testing.T) {
	lines := asmLines(sampleAsm)

	assert.NoError(t, assertAsmCount(lines, Assertion{Text: "push 3", Count: 2}))
	assert.NoError(t, assertAsmCount(lines, Assertion{Text: "  syscall ", Count: 1}))
	assert.NoError(t, assertAsmCount(lines, Assertion{Text: "ret", Count: 0}))

	err := assertAsmCount(lines, Assertion{Text: "push 2", Count: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "found 1 time(s)")
}

func TestAssertIRContains(t *testing.T) {
	r := sampleResult()
	assert.NoError(t, assertIRContains(r.IR, Assertion{Text: "ADD i8:1, i8:2"}))
	assert.Error(t, assertIRContains(r.IR, Assertion{Text: "ADD i8:1"}))
}

func TestAssertErrorCode(t *testing.T) {
	ok := sampleResult()
	err := assertErrorCode(ok, Assertion{Code: "E103"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build succeeded")

	failed := NewResult()
	failed.ErrorCode = "E103"
	failed.BuildError = "[E103] functions[0].body[0].op: unknown opcode"
	assert.NoError(t, assertErrorCode(failed, Assertion{Code: "E103"}))

	err = assertErrorCode(failed, Assertion{Code: "E101"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build failed with E103")
}

func TestEvaluateAssertions(t *testing.T) {
	r := sampleResult()
	errs := EvaluateAssertions(r, []Assertion{
		{Type: AssertAsmContains, Text: "push 2"},
		{Type: AssertAsmCount, Text: "syscall", Count: 1},
		{Type: AssertIRContains, Text: "END"},
	})
	assert.Empty(t, errs)

	errs = EvaluateAssertions(r, []Assertion{
		{Type: AssertAsmContains, Text: "call"},
		{Type: "bogus"},
	})
	require.Len(t, errs, 2)
	assert.Contains(t, errs[1], `unknown assertion type "bogus"`)
}

func TestEvaluateAssertions_UnexpectedBuildFailure(t *testing.T) {
	r := NewResult()
	r.ErrorCode = "DIVIDE_BY_ZERO"
	r.BuildError = "DIVIDE_BY_ZERO: DIV operand 1: literal zero divisor"

	errs := EvaluateAssertions(r, []Assertion{{Type: AssertAsmCount, Text: "ret", Count: 0}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "build failed unexpectedly with DIVIDE_BY_ZERO")

	errs = EvaluateAssertions(r, []Assertion{{Type: AssertErrorCode, Code: "DIVIDE_BY_ZERO"}})
	assert.Empty(t, errs)
}
