package lower

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Translit-INC/translit/internal/ir"
)

// emitter writes the body of one function.
type emitter struct {
	l   *lowerer
	f   *frame
	buf strings.Builder
}

func (e *emitter) ins(format string, args ...any) {
	e.buf.WriteByte('\t')
	fmt.Fprintf(&e.buf, format, args...)
	e.buf.WriteByte('\n')
}

func (e *emitter) prologue() {
	if e.f.entry {
		e.ins("mov rbp, rsp")
	} else {
		e.ins("push rbp")
		e.ins("mov rbp, rsp")
	}
	if e.f.cells > 0 {
		e.ins("sub rsp, %d", e.f.cells*wordSize)
	}
	for i, slot := range e.f.params {
		src := "rax"
		if i < len(argRegs) {
			src = argRegs[i]
			e.ins("push %s", src)
		} else {
			// Stack arguments sit above the saved rbp and return address.
			e.ins("mov rax, qword [rbp+%d]", 2*wordSize+(i-len(argRegs))*wordSize)
			e.ins("push rax")
		}
		e.storeSinks(slot, e.f.fn.Start-1, src)
	}
}

// labels emits every block placed at instruction i and resets rsp to the
// depth the stream has there.
func (e *emitter) labels(i int) {
	for _, id := range e.l.byPos[i] {
		e.buf.WriteString(blockLabel(id) + ":\n")
		top := e.f.stackTop(i)
		if top == 0 {
			e.ins("mov rsp, rbp")
		} else {
			e.ins("lea rsp, [rbp-%d]", top)
		}
	}
}

func blockLabel(id ir.BlockID) string {
	return "block_" + strconv.Itoa(int(id))
}

func (e *emitter) instruction(i int, in ir.Instruction) {
	if in.Op.IsArithmetic() || in.Op.IsComparison() {
		e.binary(i, in)
		return
	}
	switch in.Op {
	case ir.OpNOP:
		e.ins("nop")
	case ir.OpEND:
		if !e.f.entry {
			e.epilogue()
			e.buf.WriteString("\n")
		}
	case ir.OpAND, ir.OpOR:
		e.binary(i, in)
	case ir.OpNOT:
		e.not(i, in)
	case ir.OpPUSH:
		e.push(i, in.Operands[0])
	case ir.OpVAR:
		cell := e.f.result[i]
		e.ins("mov %s, 0", e.f.slotAddr(cell))
		e.storeSinks(cell, i, "0")
	case ir.OpSET:
		cell := in.Operands[0].(ir.Variable).Slot
		e.load("rax", in.Operands[1])
		e.ins("mov %s, rax", e.f.slotAddr(cell))
		e.storeSinks(cell, i, "rax")
	case ir.OpPHI:
		// The cell already holds the latest incoming value.
	case ir.OpJMP:
		e.ins("jmp %s", blockLabel(in.Operands[0].(ir.BlockRef).ID))
	case ir.OpJMPIF:
		e.jumpIf(in)
	case ir.OpCALL:
		e.call(i, in)
	case ir.OpRET:
		e.ret(in)
	}
}

// load places an operand's value in reg.
func (e *emitter) load(reg string, o ir.Operand) {
	switch v := o.(type) {
	case ir.Literal:
		e.ins("mov %s, %d", reg, v.Value)
	case ir.Variable:
		e.ins("mov %s, %s", reg, e.f.slotAddr(v.Slot))
	}
}

// storeSinks copies a value just written to slot into every PHI cell that
// merges it. src is a register or immediate holding the value.
func (e *emitter) storeSinks(slot, at int, src string) {
	for _, cell := range e.l.phis.sinks(slot, at) {
		e.ins("mov %s, %s", e.f.slotAddr(cell), src)
	}
}

// pushResult pushes the value in rax as the result of instruction i.
func (e *emitter) pushResult(i int) {
	slot := e.f.result[i]
	e.ins("push rax")
	e.storeSinks(slot, i, "rax")
}

// pushConst pushes a folded result of instruction i.
func (e *emitter) pushConst(i int, v uint64) {
	slot := e.f.result[i]
	sinks := e.l.phis.sinks(slot, i)
	if v <= 0x7FFFFFFF && len(sinks) == 0 {
		e.ins("push %d", v)
		return
	}
	e.ins("mov rax, %d", v)
	e.pushResult(i)
}

func (e *emitter) binary(i int, in ir.Instruction) {
	a, b := in.Operands[0], in.Operands[1]
	la, aLit := a.(ir.Literal)
	lb, bLit := b.(ir.Literal)
	if aLit && bLit {
		if r, ok := fold(in.Op, la, lb); ok {
			e.pushConst(i, r.Value)
			return
		}
	}

	e.load("rax", a)
	e.load("rcx", b)
	switch in.Op {
	case ir.OpADD:
		e.ins("add rax, rcx")
	case ir.OpSUB:
		e.ins("sub rax, rcx")
	case ir.OpMUL:
		e.ins("imul rax, rcx")
	case ir.OpAND:
		e.ins("and rax, rcx")
	case ir.OpOR:
		e.ins("or rax, rcx")
	case ir.OpSHL:
		e.ins("shl rax, cl")
	case ir.OpSHR:
		e.ins("shr rax, cl")
	case ir.OpDIV, ir.OpMOD:
		if !bLit || lb.Value == 0 {
			e.l.divGuard = true
			e.ins("test rcx, rcx")
			e.ins("jz %s", divZeroLabel)
		}
		e.ins("xor edx, edx")
		e.ins("div rcx")
		if in.Op == ir.OpMOD {
			e.ins("mov rax, rdx")
		}
	default:
		// comparisons
		e.ins("cmp rax, rcx")
		e.ins("%s al", setcc[in.Op])
		e.ins("movzx eax, al")
		e.pushResult(i)
		return
	}
	e.truncate(e.l.slots[e.f.result[i]].Type)
	e.pushResult(i)
}

var setcc = map[ir.OpCode]string{
	ir.OpEQ:    "sete",
	ir.OpCMP:   "seta",
	ir.OpCMPEQ: "setae",
}

// truncate clears the bits of rax above the width of t.
func (e *emitter) truncate(t ir.Type) {
	switch t {
	case ir.TypeI8:
		e.ins("movzx eax, al")
	case ir.TypeI16:
		e.ins("movzx eax, ax")
	case ir.TypeI32:
		e.ins("mov eax, eax")
	}
}

func (e *emitter) not(i int, in ir.Instruction) {
	if lit, ok := in.Operands[0].(ir.Literal); ok {
		e.pushConst(i, foldNot(lit).Value)
		return
	}
	e.load("rax", in.Operands[0])
	e.ins("test rax, rax")
	e.ins("sete al")
	e.ins("movzx eax, al")
	e.pushResult(i)
}

func (e *emitter) push(i int, o ir.Operand) {
	switch v := o.(type) {
	case ir.Literal:
		e.pushConst(i, v.Value)
	case ir.Variable:
		if len(e.l.phis.sinks(e.f.result[i], i)) == 0 {
			e.ins("push %s", e.f.slotAddr(v.Slot))
			return
		}
		e.load("rax", v)
		e.pushResult(i)
	}
}

func (e *emitter) jumpIf(in ir.Instruction) {
	e.load("rax", in.Operands[0])
	e.ins("test rax, rax")
	e.ins("jnz %s", blockLabel(in.Operands[1].(ir.BlockRef).ID))
}

func (e *emitter) call(i int, in ir.Instruction) {
	callee, label := e.l.callTarget(in.Operands[0].(ir.FunctionRef))
	args := in.Operands[1:]

	stackArgs := 0
	for j := len(args) - 1; j >= len(argRegs); j-- {
		e.pushOperand(args[j])
		stackArgs++
	}
	for j := 0; j < len(args) && j < len(argRegs); j++ {
		e.load(argRegs[j], args[j])
	}
	e.ins("call %s", label)
	if stackArgs > 0 {
		e.ins("add rsp, %d", stackArgs*wordSize)
	}
	if callee.Sig.Returns != ir.TypeNone {
		e.pushResult(i)
	}
}

// pushOperand pushes an operand that does not become a slot.
func (e *emitter) pushOperand(o ir.Operand) {
	switch v := o.(type) {
	case ir.Literal:
		if v.Value <= 0x7FFFFFFF {
			e.ins("push %d", v.Value)
			return
		}
		e.ins("mov rax, %d", v.Value)
		e.ins("push rax")
	case ir.Variable:
		e.ins("push %s", e.f.slotAddr(v.Slot))
	}
}

func (e *emitter) ret(in ir.Instruction) {
	if e.f.entry {
		if len(in.Operands) == 0 {
			e.buf.WriteString(exitCall)
			return
		}
		e.load("rdi", in.Operands[0])
		e.ins("mov eax, 60")
		e.ins("syscall")
		return
	}
	if len(in.Operands) == 1 {
		e.load("rax", in.Operands[0])
	}
	e.epilogue()
}

func (e *emitter) epilogue() {
	e.ins("mov rsp, rbp")
	e.ins("pop rbp")
	e.ins("ret")
}
