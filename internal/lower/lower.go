package lower

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Translit-INC/translit/internal/ir"
)

// Version identifies the assembly Lower produces. Bump it whenever the
// output for an existing snapshot changes; cached artifacts from another
// version are rebuilt.
const Version = "1"

// System V integer argument registers, in order.
var argRegs = [...]string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}

const (
	dataSection = "section .data\n"
	textSection = "section .text\nglobal _start\n\n"
	entryLabel  = "_start:\n"
	exitCall    = "\tmov eax, 60\n\tmov edi, 0\n\tsyscall\n"

	divZeroLabel = "__div_by_zero"
	divZeroData  = "div_zero_msg: db \"division by zero\", 10\ndiv_zero_len: equ $ - div_zero_msg\n"
	divZeroStub  = "\n" + divZeroLabel + ":\n" +
		"\tmov eax, 1\n" +
		"\tmov edi, 2\n" +
		"\tlea rsi, [rel div_zero_msg]\n" +
		"\tmov edx, div_zero_len\n" +
		"\tsyscall\n" +
		"\tmov eax, 60\n" +
		"\tmov edi, " + divZeroStatus + "\n" +
		"\tsyscall\n"

	// divZeroStatus is the exit status of a program that divided by a
	// zero held in a variable: 128 + SIGFPE.
	divZeroStatus = "136"
)

// Lower translates s into NASM x86-64 assembly for Linux.
//
// Output layout: data section, text section with every non-entry function
// in declaration order, the entry body under _start, then the exit
// syscall. The division guard stub follows when any runtime divisor was
// emitted.
func Lower(s *ir.Snapshot) (string, error) {
	fns := s.Functions()
	if len(fns) == 0 {
		return "", &LowerError{Code: ErrCodeNoEntryFunction, Function: -1, Message: "snapshot has no functions"}
	}

	l := &lowerer{
		snap:  s,
		fns:   fns,
		slots: s.Slots(),
		byPos: make(map[int][]ir.BlockID),
	}
	for _, blk := range s.Blocks() {
		l.byPos[blk.Start] = append(l.byPos[blk.Start], blk.ID)
	}
	l.phis = newPhiGraph(s, l.slots)

	var text strings.Builder
	for _, fn := range fns[1:] {
		text.WriteString("func_" + itoa(fn.Start) + ":\n")
		text.WriteString(l.function(fn, false))
	}
	text.WriteString(entryLabel)
	text.WriteString(l.function(fns[0], true))
	text.WriteString(exitCall)

	var out strings.Builder
	out.WriteString(dataSection)
	if l.divGuard {
		out.WriteString(divZeroData)
	}
	out.WriteString("\n")
	out.WriteString(textSection)
	out.WriteString(text.String())
	if l.divGuard {
		out.WriteString(divZeroStub)
	}
	return out.String(), nil
}

// lowerer carries the read-only views of one Lower call.
type lowerer struct {
	snap     *ir.Snapshot
	fns      []ir.Function
	slots    []ir.Slot
	byPos    map[int][]ir.BlockID
	phis     phiGraph
	divGuard bool
}

// function lowers one function body, prologue included.
func (l *lowerer) function(fn ir.Function, entry bool) string {
	e := &emitter{l: l, f: newFrame(fn, entry, l.slots)}
	e.prologue()
	for i := fn.Start; i <= fn.End; i++ {
		e.labels(i)
		e.instruction(i, l.snap.Instruction(i))
	}
	return e.buf.String()
}

// callTarget resolves a CALL operand to its label. A target without a
// label means the Builder's call checks were bypassed.
func (l *lowerer) callTarget(ref ir.FunctionRef) (ir.Function, string) {
	if ref.ID <= 0 || int(ref.ID) >= len(l.fns) {
		panic(&LowerError{
			Code:     ErrCodeUnresolvedCallTarget,
			Function: int(ref.ID),
			Message:  fmt.Sprintf("call target %s has no label", ref),
		})
	}
	fn := l.fns[ref.ID]
	return fn, "func_" + itoa(fn.Start)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
