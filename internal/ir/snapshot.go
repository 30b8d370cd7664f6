package ir

import (
	"encoding/json"
	"slices"
)

// Snapshot is the immutable result of Builder.Finalize. Every accessor
// returns a copy, so a Snapshot may be shared between goroutines.
type Snapshot struct {
	instructions []Instruction
	functions    []Function
	blocks       []Block
	slots        []Slot
}

// Len returns the number of instructions.
func (s *Snapshot) Len() int {
	return len(s.instructions)
}

// Instruction returns the instruction at index i.
func (s *Snapshot) Instruction(i int) Instruction {
	return s.instructions[i].clone()
}

// Instructions returns a copy of the instruction stream.
func (s *Snapshot) Instructions() []Instruction {
	out := make([]Instruction, len(s.instructions))
	for i, in := range s.instructions {
		out[i] = in.clone()
	}
	return out
}

// Functions returns the function records in declaration order.
func (s *Snapshot) Functions() []Function {
	out := make([]Function, len(s.functions))
	for i, fn := range s.functions {
		out[i] = fn
		out[i].Sig = fn.Sig.clone()
	}
	return out
}

// Function returns the function with the given ID.
func (s *Snapshot) Function(id FunctionID) (Function, bool) {
	if id < 0 || int(id) >= len(s.functions) {
		return Function{}, false
	}
	fn := s.functions[id]
	fn.Sig = fn.Sig.clone()
	return fn, true
}

// Entry returns the entry function, the first one declared.
func (s *Snapshot) Entry() (Function, bool) {
	return s.Function(0)
}

// Blocks returns the block labels in declaration order.
func (s *Snapshot) Blocks() []Block {
	return slices.Clone(s.blocks)
}

// Slots returns the storage slots in creation order.
func (s *Snapshot) Slots() []Slot {
	return slices.Clone(s.slots)
}

// snapshotJSON is the versioned serialized form of a Snapshot.
type snapshotJSON struct {
	IRVersion    string            `json:"ir_version"`
	Functions    []Function        `json:"functions"`
	Blocks       []Block           `json:"blocks"`
	Slots        []Slot            `json:"slots"`
	Instructions []instructionJSON `json:"instructions"`
}

type instructionJSON struct {
	Op       OpCode   `json:"op"`
	Operands []string `json:"operands"`
}

// MarshalJSON encodes the snapshot with opcode and type names. The
// encoding is for inspection and hashing; it carries IRVersion so readers
// can reject formats they do not understand.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.encode())
}

func (s *Snapshot) encode() snapshotJSON {
	out := snapshotJSON{
		IRVersion:    IRVersion,
		Functions:    s.Functions(),
		Blocks:       s.Blocks(),
		Slots:        s.Slots(),
		Instructions: make([]instructionJSON, len(s.instructions)),
	}
	if out.Blocks == nil {
		out.Blocks = []Block{}
	}
	if out.Slots == nil {
		out.Slots = []Slot{}
	}
	for i, in := range s.instructions {
		operands := make([]string, len(in.Operands))
		for j, o := range in.Operands {
			operands[j] = o.String()
		}
		out.Instructions[i] = instructionJSON{Op: in.Op, Operands: operands}
	}
	return out
}

// canonicalForm converts the snapshot into plain maps and slices accepted
// by MarshalCanonical.
func (s *Snapshot) canonicalForm() map[string]any {
	functions := make([]any, len(s.functions))
	for i, fn := range s.functions {
		params := make([]any, len(fn.Sig.Params))
		for j, p := range fn.Sig.Params {
			params[j] = p.String()
		}
		functions[i] = map[string]any{
			"id":      int(fn.ID),
			"start":   fn.Start,
			"end":     fn.End,
			"params":  params,
			"returns": fn.Sig.Returns.String(),
		}
	}
	blocks := make([]any, len(s.blocks))
	for i, blk := range s.blocks {
		blocks[i] = map[string]any{
			"id":    int(blk.ID),
			"func":  int(blk.Func),
			"start": blk.Start,
			"end":   blk.End,
		}
	}
	slots := make([]any, len(s.slots))
	for i, sl := range s.slots {
		slots[i] = map[string]any{
			"inst": sl.Inst,
			"type": sl.Type.String(),
			"kind": sl.Kind.String(),
		}
	}
	instructions := make([]any, len(s.instructions))
	for i, in := range s.instructions {
		operands := make([]any, len(in.Operands))
		for j, o := range in.Operands {
			operands[j] = o.String()
		}
		instructions[i] = map[string]any{
			"op":       in.Op.String(),
			"operands": operands,
		}
	}
	return map[string]any{
		"ir_version":   IRVersion,
		"functions":    functions,
		"blocks":       blocks,
		"slots":        slots,
		"instructions": instructions,
	}
}
