package ir

import (
	"fmt"
	"strconv"
)

// Operand is a sealed interface for instruction operands.
// Only Literal, Variable, FunctionRef, BlockRef and Empty implement it.
type Operand interface {
	operand() // Sealed - only these types implement it
	fmt.Stringer
}

// NoSlot is the slot index carried by the Variable returned for an
// instruction that produces no value.
const NoSlot = -1

// Literal is a typed constant. Value holds the two's-complement payload
// truncated to the width of Type.
type Literal struct {
	Type  Type
	Value uint64
}

func (Literal) operand() {}

// String renders the literal as "<type>:<payload>".
func (l Literal) String() string {
	if l.Type == TypeBool {
		return "bool:" + strconv.FormatBool(l.Value != 0)
	}
	return l.Type.String() + ":" + strconv.FormatUint(l.Value, 10)
}

// NewLiteral creates a literal, rejecting payloads that do not fit t.
func NewLiteral(t Type, raw uint64) (Literal, error) {
	if t == TypeNone || !t.Valid() {
		return Literal{}, lifecycleError(ErrCodeTypeMismatch, "literal cannot have type %s", t)
	}
	if !t.Fits(raw) {
		return Literal{}, lifecycleError(ErrCodeLiteralOverflow, "payload %d does not fit %s", raw, t)
	}
	return Literal{Type: t, Value: raw}, nil
}

// Int8 creates an i8 literal.
func Int8(v int8) Literal { return Literal{Type: TypeI8, Value: uint64(uint8(v))} }

// Int16 creates an i16 literal.
func Int16(v int16) Literal { return Literal{Type: TypeI16, Value: uint64(uint16(v))} }

// Int32 creates an i32 literal.
func Int32(v int32) Literal { return Literal{Type: TypeI32, Value: uint64(uint32(v))} }

// Int64 creates an i64 literal.
func Int64(v int64) Literal { return Literal{Type: TypeI64, Value: uint64(v)} }

// Boolean creates a bool literal.
func Boolean(v bool) Literal {
	if v {
		return Literal{Type: TypeBool, Value: 1}
	}
	return Literal{Type: TypeBool}
}

// Variable refers to a storage slot created by the Builder that issued it.
type Variable struct {
	Type Type
	Slot int
}

func (Variable) operand() {}

// String renders the variable as "%<slot>:<type>".
func (v Variable) String() string {
	if v.Slot == NoSlot {
		return "%void"
	}
	return fmt.Sprintf("%%%d:%s", v.Slot, v.Type)
}

// IsVoid reports whether v is the placeholder returned for an instruction
// that produced no value.
func (v Variable) IsVoid() bool {
	return v.Slot == NoSlot
}

// FunctionRef names a function by its FunctionID.
type FunctionRef struct {
	ID FunctionID
}

func (FunctionRef) operand() {}

func (f FunctionRef) String() string { return fmt.Sprintf("fn:%d", f.ID) }

// BlockRef names a block label by its BlockID.
type BlockRef struct {
	ID BlockID
}

func (BlockRef) operand() {}

func (b BlockRef) String() string { return fmt.Sprintf("block:%d", b.ID) }

// Empty fills an unused operand position. Trailing Empty operands are
// ignored by the Builder.
type Empty struct{}

func (Empty) operand() {}

func (Empty) String() string { return "_" }
