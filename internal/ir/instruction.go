package ir

import (
	"slices"
	"strings"
)

// FunctionID identifies a function by declaration order.
type FunctionID int

// BlockID identifies a block label. IDs are unique within a Builder.
type BlockID int

// Instruction is one entry of the instruction stream. It is immutable once
// appended and identified by its index.
type Instruction struct {
	Op       OpCode
	Operands []Operand
}

// String renders the instruction as "OP a, b".
func (in Instruction) String() string {
	if len(in.Operands) == 0 {
		return in.Op.String()
	}
	parts := make([]string, len(in.Operands))
	for i, o := range in.Operands {
		parts[i] = o.String()
	}
	return in.Op.String() + " " + strings.Join(parts, ", ")
}

func (in Instruction) clone() Instruction {
	return Instruction{Op: in.Op, Operands: slices.Clone(in.Operands)}
}

// Signature declares parameter types and the return type of a function.
type Signature struct {
	Params  []Type `json:"params"`
	Returns Type   `json:"returns"`
}

func (s Signature) clone() Signature {
	return Signature{Params: slices.Clone(s.Params), Returns: s.Returns}
}

// Function is a contiguous range of the instruction stream. Start is the
// index of the first instruction and End the index of its END terminator.
// Both are -1 while the function is declared but not yet defined.
type Function struct {
	ID    FunctionID `json:"id"`
	Start int        `json:"start"`
	End   int        `json:"end"`
	Sig   Signature  `json:"signature"`
}

// Defined reports whether the function body has been opened.
func (f Function) Defined() bool {
	return f.Start >= 0
}

// Contains reports whether instruction index i belongs to f.
func (f Function) Contains(i int) bool {
	return i >= f.Start && i <= f.End
}

// Block is a label inside one function. Start is the index of the first
// instruction placed after the label; End is the index one past the last.
type Block struct {
	ID     BlockID    `json:"id"`
	Func   FunctionID `json:"func"`
	Start  int        `json:"start"`
	End    int        `json:"end"`
	Placed bool       `json:"placed"`
}

// SlotKind says how a slot receives its value.
type SlotKind uint8

const (
	// SlotValue holds the result of one value-producing instruction.
	SlotValue SlotKind = iota
	// SlotParam holds a function parameter.
	SlotParam
	// SlotCell is a mutable binding written by SET, or a PHI result.
	SlotCell
)

var slotKindNames = [...]string{SlotValue: "value", SlotParam: "param", SlotCell: "cell"}

func (k SlotKind) String() string {
	if int(k) < len(slotKindNames) {
		return slotKindNames[k]
	}
	return "unknown"
}

// MarshalText encodes the kind by name.
func (k SlotKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Slot records the instruction that created a storage location and the
// location's type. Param slots carry their function's Start index.
type Slot struct {
	Inst int      `json:"inst"`
	Type Type     `json:"type"`
	Kind SlotKind `json:"kind"`
}
