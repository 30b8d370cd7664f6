package lower

import "github.com/Translit-INC/translit/internal/ir"

const wordSize = 8

// frame is the stack layout of one function.
type frame struct {
	fn    ir.Function
	entry bool

	// cells is the number of 8-byte cells reserved below rbp.
	cells int

	// params lists the function's param slots in declaration order.
	params []int

	// offset maps a slot to its distance below rbp in bytes.
	offset map[int]int

	// result maps an instruction index to the slot it produced.
	result map[int]int

	// depth[i-fn.Start] is the number of pushed values live before
	// instruction i.
	depth []int
}

// newFrame lays out fn from the snapshot's slot list.
func newFrame(fn ir.Function, entry bool, slots []ir.Slot) *frame {
	f := &frame{
		fn:     fn,
		entry:  entry,
		offset: make(map[int]int),
		result: make(map[int]int),
	}

	var pushed []int
	for idx, s := range slots {
		if !fn.Contains(s.Inst) {
			continue
		}
		switch s.Kind {
		case ir.SlotCell:
			f.cells++
			f.offset[idx] = f.cells * wordSize
			f.result[s.Inst] = idx
		case ir.SlotParam:
			f.params = append(f.params, idx)
			pushed = append(pushed, idx)
		case ir.SlotValue:
			f.result[s.Inst] = idx
			pushed = append(pushed, idx)
		}
	}
	for k, idx := range pushed {
		f.offset[idx] = (f.cells + k + 1) * wordSize
	}

	f.depth = make([]int, fn.End-fn.Start+1)
	live := len(f.params)
	next := len(f.params)
	for i := fn.Start; i <= fn.End; i++ {
		f.depth[i-fn.Start] = live
		for next < len(pushed) && slots[pushed[next]].Inst == i {
			live++
			next++
		}
	}
	return f
}

// slotAddr returns the memory operand of a slot.
func (f *frame) slotAddr(slot int) string {
	return "qword " + rbpAddr(f.offset[slot])
}

// stackTop returns the rsp offset below rbp before instruction i.
func (f *frame) stackTop(i int) int {
	return (f.cells + f.depth[i-f.fn.Start]) * wordSize
}

func rbpAddr(off int) string {
	if off == 0 {
		return "[rbp]"
	}
	return "[rbp-" + itoa(off) + "]"
}
