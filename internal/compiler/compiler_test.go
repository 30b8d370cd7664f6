package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Translit-INC/translit/internal/ir"
)

func TestLoadProgramYAML(t *testing.T) {
	prog, err := LoadProgram("testdata/add_sub.yaml")
	require.NoError(t, err)

	assert.Equal(t, "add_sub", prog.Name)
	require.Len(t, prog.Functions, 1)
	assert.Equal(t, "main", prog.Functions[0].Name)
	require.Len(t, prog.Functions[0].Body, 2)
	assert.Equal(t, Step{Op: "add", Args: []string{"i8:1", "i8:2"}, To: "sum"}, prog.Functions[0].Body[0])
}

func TestLoadProgramCUE(t *testing.T) {
	prog, err := LoadProgram("testdata/calls.cue")
	require.NoError(t, err)

	assert.Equal(t, "calls", prog.Name)
	require.Len(t, prog.Functions, 2)
	assert.Equal(t, []Param{{Name: "x", Type: "i64"}}, prog.Functions[1].Params)
	assert.Equal(t, "i64", prog.Functions[1].Returns)
}

func TestParseProgramYAMLRejectsUnknownFields(t *testing.T) {
	_, err := ParseProgramYAML([]byte("name: x\nfunctions: []\nextra: 1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extra")
}

func TestParseProgramCUEError(t *testing.T) {
	_, err := ParseProgramCUE([]byte("program: {name: 1 & 2}"), "bad.cue")
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "cue", ce.Field)
	assert.True(t, ce.Pos.IsValid())
}

func TestLoadProgramUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := LoadProgram(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported program format")
}

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		text string
		want ir.Literal
	}{
		{"i8:1", ir.Int8(1)},
		{"i8:-1", ir.Int8(-1)},
		{"i8:255", ir.Literal{Type: ir.TypeI8, Value: 255}},
		{"i16:0x10", ir.Int16(16)},
		{"i32:-2147483648", ir.Int32(-2147483648)},
		{"i64:18446744073709551615", ir.Int64(-1)},
		{"bool:true", ir.Boolean(true)},
		{"boolean:false", ir.Boolean(false)},
	}
	for _, tt := range tests {
		got, err := ParseLiteral(tt.text)
		require.NoError(t, err, tt.text)
		assert.Equal(t, tt.want, got, tt.text)
	}

	for _, bad := range []string{"i8:256", "i8:-129", "f32:1", "none:0", "bool:maybe", "i8"} {
		_, err := ParseLiteral(bad)
		assert.Error(t, err, bad)
	}
}

func TestSplitOperand(t *testing.T) {
	kind, body, err := splitOperand(" %sum ")
	require.NoError(t, err)
	assert.Equal(t, operandVariable, kind)
	assert.Equal(t, "sum", body)

	kind, _, err = splitOperand("_")
	require.NoError(t, err)
	assert.Equal(t, operandEmpty, kind)

	_, _, err = splitOperand("%")
	assert.Error(t, err)
	_, _, err = splitOperand("sum")
	assert.Error(t, err)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, normalizeName("caf\u00e9"), normalizeName("cafe\u0301"))
	assert.Equal(t, "sum", normalizeName(" sum "))
}

func TestCompileAddSub(t *testing.T) {
	prog, err := LoadProgram("testdata/add_sub.yaml")
	require.NoError(t, err)
	require.Empty(t, Validate(prog))

	snap, err := Compile(prog)
	require.NoError(t, err)

	ins := snap.Instructions()
	require.Len(t, ins, 3)
	assert.Equal(t, "ADD i8:1, i8:2", ins[0].String())
	assert.Equal(t, "SUB i8:3, i8:1", ins[1].String())
	assert.Equal(t, ir.OpEND, ins[2].Op)
}

func TestCompileCallsForwardReference(t *testing.T) {
	prog, err := LoadProgram("testdata/calls.cue")
	require.NoError(t, err)
	require.Empty(t, Validate(prog))

	snap, err := Compile(prog)
	require.NoError(t, err)

	fns := snap.Functions()
	require.Len(t, fns, 2)
	assert.Equal(t, ir.TypeI64, fns[0].Sig.Returns)
	assert.Equal(t, []ir.Type{ir.TypeI64}, fns[1].Sig.Params)

	call := snap.Instruction(0)
	assert.Equal(t, ir.OpCALL, call.Op)
	assert.Equal(t, ir.FunctionRef{ID: 1}, call.Operands[0])
}

func TestCompileLoop(t *testing.T) {
	prog, err := LoadProgram("testdata/countdown.yaml")
	require.NoError(t, err)
	require.Empty(t, Validate(prog))

	snap, err := Compile(prog)
	require.NoError(t, err)

	blocks := snap.Blocks()
	require.Len(t, blocks, 2)
	assert.Less(t, blocks[0].Start, blocks[1].Start)
}

func TestCompileReportsBuildErrorWithField(t *testing.T) {
	prog := &Program{Functions: []Function{{
		Name: "main",
		Body: []Step{
			{Op: "nop"},
			{Op: "div", Args: []string{"i8:4", "i8:0"}},
		},
	}}}

	_, err := Compile(prog)
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "functions[0].body[1]", ce.Field)
	assert.True(t, ir.HasCode(err, ir.ErrCodeDivideByZero))
}

func TestCompileUnknownFunction(t *testing.T) {
	prog := &Program{Functions: []Function{{
		Name: "main",
		Body: []Step{{Op: "call", Args: []string{"&missing"}}},
	}}}

	_, err := Compile(prog)
	assert.True(t, ir.HasCode(err, ir.ErrCodeUnknownFunction))
}

func TestCompileUseBeforeDefinition(t *testing.T) {
	prog := &Program{Functions: []Function{{
		Name: "main",
		Body: []Step{
			{Op: "push", Args: []string{"%later"}},
			{Op: "push", Args: []string{"i8:1"}, To: "later"},
		},
	}}}

	_, err := Compile(prog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined name")
}

func TestValidate(t *testing.T) {
	prog := &Program{Functions: []Function{
		{
			Name:   "main",
			Params: []Param{{Name: "a", Type: "i8"}},
			Body: []Step{
				{Op: "frobnicate"},
				{Op: "add", Args: []string{"i8:1", "x:2"}, To: "s"},
				{Op: "add", Args: []string{"%s", "%nope"}, To: "s"},
				{Op: "jmp", Args: []string{"@nowhere"}},
				{Op: "call", Args: []string{"&ghost"}},
				{Op: "end"},
				{Let: "v", Type: "none"},
				{Set: "w", Value: "i8:1"},
				{Op: "nop", Label: "both"},
			},
		},
		{Name: "main", Returns: "float"},
	}}

	errs := Validate(prog)

	codes := map[string]int{}
	for _, e := range errs {
		codes[e.Code]++
	}
	assert.Equal(t, 1, codes[ErrDuplicateFunction])
	assert.Equal(t, 2, codes[ErrUnknownOpcode], "frobnicate and reserved END")
	assert.Equal(t, 2, codes[ErrInvalidType], "let type none and returns float")
	assert.Equal(t, 1, codes[ErrDuplicateName])
	assert.Equal(t, 1, codes[ErrMalformedStep])
	assert.Equal(t, 1, codes[ErrMalformedOperand])
	assert.Equal(t, 4, codes[ErrUndefinedName], "%nope, @nowhere, &ghost and set w")
	assert.Equal(t, 1, codes[ErrEntryParams])

	assert.Equal(t, "functions[0].body[0].op", errs[indexOf(errs, ErrUnknownOpcode)].Field)
}

func TestValidateEmptyProgram(t *testing.T) {
	errs := Validate(&Program{})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrNoFunctions, errs[0].Code)
	assert.Contains(t, ValidationErrors(errs).Error(), "E101")
}

func indexOf(errs []ValidationError, code string) int {
	for i, e := range errs {
		if e.Code == code {
			return i
		}
	}
	return -1
}
