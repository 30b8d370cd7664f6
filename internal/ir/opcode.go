package ir

import "fmt"

// OpCode identifies an instruction kind. The set is closed; serialized IR
// carries the opcode name, never its numeric value.
type OpCode uint8

const (
	OpNOP OpCode = iota
	OpEND
	OpADD
	OpSUB
	OpMUL
	OpDIV
	OpMOD
	OpAND
	OpOR
	OpNOT
	OpSHL
	OpSHR
	OpEQ
	OpCMP   // unsigned greater-than
	OpCMPEQ // unsigned greater-or-equal
	OpJMP
	OpJMPIF
	OpCALL
	OpRET
	OpPHI
	OpPUSH
	OpVAR
	OpSET
)

// arityVariadic marks opcodes whose operand count is checked per opcode.
const arityVariadic = -1

type opInfo struct {
	name  string
	arity int
	// reserved opcodes are appended by Builder methods, never by Push.
	reserved bool
}

var opTable = [...]opInfo{
	OpNOP:   {name: "NOP", arity: 0},
	OpEND:   {name: "END", arity: 0, reserved: true},
	OpADD:   {name: "ADD", arity: 2},
	OpSUB:   {name: "SUB", arity: 2},
	OpMUL:   {name: "MUL", arity: 2},
	OpDIV:   {name: "DIV", arity: 2},
	OpMOD:   {name: "MOD", arity: 2},
	OpAND:   {name: "AND", arity: 2},
	OpOR:    {name: "OR", arity: 2},
	OpNOT:   {name: "NOT", arity: 1},
	OpSHL:   {name: "SHL", arity: 2},
	OpSHR:   {name: "SHR", arity: 2},
	OpEQ:    {name: "EQ", arity: 2},
	OpCMP:   {name: "CMP", arity: 2},
	OpCMPEQ: {name: "CMPEQ", arity: 2},
	OpJMP:   {name: "JMP", arity: 1},
	OpJMPIF: {name: "JMPIF", arity: 2},
	OpCALL:  {name: "CALL", arity: arityVariadic},
	OpRET:   {name: "RET", arity: arityVariadic},
	OpPHI:   {name: "PHI", arity: arityVariadic},
	OpPUSH:  {name: "PUSH", arity: 1},
	OpVAR:   {name: "VAR", arity: 0, reserved: true},
	OpSET:   {name: "SET", arity: 2, reserved: true},
}

// String returns the opcode name.
func (op OpCode) String() string {
	if int(op) < len(opTable) {
		return opTable[op].name
	}
	return fmt.Sprintf("OP(%d)", uint8(op))
}

// Valid reports whether op is a declared opcode.
func (op OpCode) Valid() bool {
	return int(op) < len(opTable)
}

// Arity returns the fixed operand count, or -1 for CALL, RET and PHI.
func (op OpCode) Arity() int {
	if !op.Valid() {
		return 0
	}
	return opTable[op].arity
}

// Reserved reports whether op is appended only by Builder methods.
func (op OpCode) Reserved() bool {
	return op.Valid() && opTable[op].reserved
}

// IsArithmetic reports whether op takes two integers of one type and
// yields that type.
func (op OpCode) IsArithmetic() bool {
	switch op {
	case OpADD, OpSUB, OpMUL, OpDIV, OpMOD, OpSHL, OpSHR:
		return true
	}
	return false
}

// IsComparison reports whether op yields a bool from two operands.
func (op OpCode) IsComparison() bool {
	switch op {
	case OpEQ, OpCMP, OpCMPEQ:
		return true
	}
	return false
}

// MarshalText encodes the opcode by name.
func (op OpCode) MarshalText() ([]byte, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("invalid opcode %d", uint8(op))
	}
	return []byte(op.String()), nil
}

// UnmarshalText decodes an opcode name.
func (op *OpCode) UnmarshalText(text []byte) error {
	parsed, err := ParseOpCode(string(text))
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}

// ParseOpCode resolves an opcode name. Matching is case-sensitive on the
// upper-case name.
func ParseOpCode(name string) (OpCode, error) {
	for i, info := range opTable {
		if info.name == name {
			return OpCode(i), nil
		}
	}
	return OpNOP, fmt.Errorf("unknown opcode %q", name)
}
