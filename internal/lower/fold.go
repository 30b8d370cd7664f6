package lower

import "github.com/Translit-INC/translit/internal/ir"

// fold evaluates op over two literal operands. It reports false when the
// result is only known at run time.
func fold(op ir.OpCode, a, b ir.Literal) (ir.Literal, bool) {
	x, y := a.Value, b.Value
	mask := a.Type.Mask()

	var v uint64
	switch op {
	case ir.OpADD:
		v = (x + y) & mask
	case ir.OpSUB:
		v = (x - y) & mask
	case ir.OpMUL:
		v = (x * y) & mask
	case ir.OpDIV:
		if y == 0 {
			return ir.Literal{}, false
		}
		v = x / y
	case ir.OpMOD:
		if y == 0 {
			return ir.Literal{}, false
		}
		v = x % y
	case ir.OpAND:
		v = x & y
	case ir.OpOR:
		v = x | y
	case ir.OpSHL:
		v = (x << (y & 63)) & mask
	case ir.OpSHR:
		v = x >> (y & 63)
	case ir.OpEQ:
		return ir.Boolean(x == y), true
	case ir.OpCMP:
		return ir.Boolean(x > y), true
	case ir.OpCMPEQ:
		return ir.Boolean(x >= y), true
	default:
		return ir.Literal{}, false
	}
	return ir.Literal{Type: a.Type, Value: v}, true
}

// foldNot evaluates NOT over a literal: 1 for zero, otherwise 0.
func foldNot(a ir.Literal) ir.Literal {
	return ir.Boolean(a.Value == 0)
}
