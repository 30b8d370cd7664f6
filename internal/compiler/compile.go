package compiler

import (
	"fmt"
	"strings"

	"github.com/Translit-INC/translit/internal/ir"
)

// Compile replays a program through ir.Builder and returns the finalized
// snapshot. Functions are declared up front in program order, so calls may
// name functions defined later; the first function is the entry point.
//
// Compile does not run Validate. Callers that want every static error at
// once should validate first.
func Compile(p *Program) (*ir.Snapshot, error) {
	b := ir.NewBuilder()
	funcs := make(map[string]ir.FunctionID, len(p.Functions))

	for i, fn := range p.Functions {
		field := fmt.Sprintf("functions[%d]", i)
		sig, err := signature(fn)
		if err != nil {
			return nil, &CompileError{Field: field, Message: err.Error(), Err: err}
		}
		id, err := b.DeclareFunction(sig)
		if err != nil {
			return nil, buildError(field, err)
		}
		funcs[normalizeName(fn.Name)] = id
	}

	for i, fn := range p.Functions {
		c := &funcCompiler{
			b:      b,
			funcs:  funcs,
			values: make(map[string]ir.Variable),
			labels: make(map[string]ir.BlockID),
		}
		if err := c.compile(fmt.Sprintf("functions[%d]", i), funcs[normalizeName(fn.Name)], fn); err != nil {
			return nil, err
		}
	}

	snap, err := b.Finalize()
	if err != nil {
		return nil, buildError("functions", err)
	}
	return snap, nil
}

func signature(fn Function) (ir.Signature, error) {
	var sig ir.Signature
	for _, p := range fn.Params {
		t, err := ir.ParseType(p.Type)
		if err != nil {
			return sig, err
		}
		sig.Params = append(sig.Params, t)
	}
	if fn.Returns != "" {
		t, err := ir.ParseType(fn.Returns)
		if err != nil {
			return sig, err
		}
		sig.Returns = t
	}
	return sig, nil
}

// funcCompiler holds the name tables of the function being compiled.
type funcCompiler struct {
	b      *ir.Builder
	funcs  map[string]ir.FunctionID
	values map[string]ir.Variable
	labels map[string]ir.BlockID
}

func (c *funcCompiler) compile(field string, id ir.FunctionID, fn Function) error {
	if err := c.b.DefineFunction(id); err != nil {
		return buildError(field, err)
	}
	for i, p := range fn.Params {
		v, err := c.b.Param(i)
		if err != nil {
			return buildError(fmt.Sprintf("%s.params[%d]", field, i), err)
		}
		c.values[normalizeName(p.Name)] = v
	}
	if err := c.declareLabels(field+".body", fn.Body); err != nil {
		return err
	}
	if err := c.steps(field+".body", fn.Body); err != nil {
		return err
	}
	if err := c.b.EndFunction(); err != nil {
		return buildError(field, err)
	}
	return nil
}

// declareLabels reserves every label of the function so jumps may target
// labels placed later.
func (c *funcCompiler) declareLabels(field string, steps []Step) error {
	for i, st := range steps {
		if st.Label == "" {
			continue
		}
		id, err := c.b.DeclareBlock()
		if err != nil {
			return buildError(fmt.Sprintf("%s[%d]", field, i), err)
		}
		c.labels[normalizeName(st.Label)] = id
		if err := c.declareLabels(fmt.Sprintf("%s[%d].body", field, i), st.Body); err != nil {
			return err
		}
	}
	return nil
}

func (c *funcCompiler) steps(field string, steps []Step) error {
	for i, st := range steps {
		if err := c.step(fmt.Sprintf("%s[%d]", field, i), st); err != nil {
			return err
		}
	}
	return nil
}

func (c *funcCompiler) step(field string, st Step) error {
	kind, n := st.kind()
	if n != 1 {
		return &CompileError{Field: field, Message: "step must set exactly one of op, label, let, set"}
	}

	switch kind {
	case "op":
		op, err := ir.ParseOpCode(strings.ToUpper(st.Op))
		if err != nil {
			return &CompileError{Field: field + ".op", Message: err.Error(), Err: err}
		}
		operands := make([]ir.Operand, len(st.Args))
		for i, arg := range st.Args {
			o, err := c.operand(arg)
			if err != nil {
				return &CompileError{Field: fmt.Sprintf("%s.args[%d]", field, i), Message: err.Error(), Err: err}
			}
			operands[i] = o
		}
		v, err := c.b.Push(op, operands...)
		if err != nil {
			return buildError(field, err)
		}
		if st.To != "" {
			c.values[normalizeName(st.To)] = v
		}

	case "label":
		if err := c.b.OpenBlock(c.labels[normalizeName(st.Label)]); err != nil {
			return buildError(field, err)
		}
		if err := c.steps(field+".body", st.Body); err != nil {
			return err
		}
		if err := c.b.EndBlock(); err != nil {
			return buildError(field, err)
		}

	case "let":
		t, err := ir.ParseType(st.Type)
		if err != nil {
			return &CompileError{Field: field + ".type", Message: err.Error(), Err: err}
		}
		v, err := c.b.DeclareVariable(t)
		if err != nil {
			return buildError(field, err)
		}
		c.values[normalizeName(st.Let)] = v
		if st.Value != "" {
			return c.assign(field, v, st.Value)
		}

	case "set":
		v, ok := c.values[normalizeName(st.Set)]
		if !ok {
			return &CompileError{Field: field + ".set", Message: fmt.Sprintf("undefined variable %q", st.Set)}
		}
		return c.assign(field, v, st.Value)
	}
	return nil
}

func (c *funcCompiler) assign(field string, v ir.Variable, text string) error {
	src, err := c.operand(text)
	if err != nil {
		return &CompileError{Field: field + ".value", Message: err.Error(), Err: err}
	}
	if err := c.b.Assign(v, src); err != nil {
		return buildError(field, err)
	}
	return nil
}

// operand resolves operand text against the function's name tables.
func (c *funcCompiler) operand(text string) (ir.Operand, error) {
	kind, body, err := splitOperand(text)
	if err != nil {
		return nil, err
	}
	switch kind {
	case operandEmpty:
		return ir.Empty{}, nil
	case operandLiteral:
		lit, err := ParseLiteral(body)
		if err != nil {
			return nil, err
		}
		return lit, nil
	case operandVariable:
		v, ok := c.values[body]
		if !ok {
			return nil, fmt.Errorf("undefined name %q", body)
		}
		return v, nil
	case operandLabel:
		id, ok := c.labels[body]
		if !ok {
			return nil, fmt.Errorf("undefined label %q", body)
		}
		return ir.BlockRef{ID: id}, nil
	case operandFunction:
		id, ok := c.funcs[body]
		if !ok {
			// Unknown names still reach the builder so the caller sees
			// the builder's UNKNOWN_FUNCTION code.
			return ir.FunctionRef{ID: -1}, nil
		}
		return ir.FunctionRef{ID: id}, nil
	}
	return nil, fmt.Errorf("malformed operand %q", text)
}

func buildError(field string, err error) error {
	return &CompileError{Field: field, Message: err.Error(), Err: err}
}
