package ir

// Builder incrementally constructs a verified instruction stream.
//
// All state is owned by the instance. A Builder is not safe for concurrent
// use; independent Builders share nothing.
//
// Every mutating method either succeeds or returns a *BuildError and leaves
// the Builder exactly as it was.
type Builder struct {
	instructions []Instruction
	functions    []Function
	params       [][]int // param slot indices per function
	blocks       []Block
	slots        []Slot

	curFunc   int // index into functions, -1 when none is open
	curBlock  int // index into blocks, -1 when none is open
	finalized bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{curFunc: -1, curBlock: -1}
}

// Len returns the current length of the instruction stream.
func (b *Builder) Len() int {
	return len(b.instructions)
}

// DeclareFunction registers a function signature without opening its body,
// so that calls to it can be pushed before it is defined. The first
// function registered is the program entry point.
func (b *Builder) DeclareFunction(sig Signature) (FunctionID, error) {
	if b.finalized {
		return 0, errFinalized()
	}
	if err := b.checkSignature(sig); err != nil {
		return 0, err
	}
	id := FunctionID(len(b.functions))
	b.functions = append(b.functions, Function{ID: id, Start: -1, End: -1, Sig: sig.clone()})
	b.params = append(b.params, nil)
	return id, nil
}

// DefineFunction opens the body of a declared function at the current end
// of the stream.
func (b *Builder) DefineFunction(id FunctionID) error {
	if b.finalized {
		return errFinalized()
	}
	if b.curFunc >= 0 {
		return lifecycleError(ErrCodeFunctionAlreadyOpen, "function %d is still open", b.curFunc)
	}
	if id < 0 || int(id) >= len(b.functions) {
		return lifecycleError(ErrCodeUnknownFunction, "function %d was never declared", id)
	}
	if b.functions[id].Defined() {
		return lifecycleError(ErrCodeUnknownFunction, "function %d is already defined", id)
	}
	b.open(int(id))
	return nil
}

// StartFunction declares a function and opens its body in one step.
func (b *Builder) StartFunction(sig Signature) (FunctionID, error) {
	if b.finalized {
		return 0, errFinalized()
	}
	if b.curFunc >= 0 {
		return 0, lifecycleError(ErrCodeFunctionAlreadyOpen, "function %d is still open", b.curFunc)
	}
	id, err := b.DeclareFunction(sig)
	if err != nil {
		return 0, err
	}
	b.open(int(id))
	return id, nil
}

func (b *Builder) open(idx int) {
	fn := &b.functions[idx]
	fn.Start = len(b.instructions)
	slots := make([]int, len(fn.Sig.Params))
	for i, t := range fn.Sig.Params {
		slots[i] = len(b.slots)
		b.slots = append(b.slots, Slot{Inst: fn.Start, Type: t, Kind: SlotParam})
	}
	b.params[idx] = slots
	b.curFunc = idx
}

func (b *Builder) checkSignature(sig Signature) error {
	for i, t := range sig.Params {
		if t == TypeNone || !t.Valid() {
			return lifecycleError(ErrCodeInvalidSignature, "parameter %d has type %s", i, t)
		}
	}
	if !sig.Returns.Valid() {
		return lifecycleError(ErrCodeInvalidSignature, "return type %s", sig.Returns)
	}
	if len(b.functions) == 0 && len(sig.Params) > 0 {
		return lifecycleError(ErrCodeInvalidSignature, "entry function cannot take parameters")
	}
	return nil
}

// Param returns the Variable bound to parameter i of the open function.
func (b *Builder) Param(i int) (Variable, error) {
	if b.finalized {
		return voidVariable(), errFinalized()
	}
	if b.curFunc < 0 {
		return voidVariable(), lifecycleError(ErrCodeNoOpenFunction, "no function is open")
	}
	params := b.params[b.curFunc]
	if i < 0 || i >= len(params) {
		return voidVariable(), lifecycleError(ErrCodeUnknownVariable,
			"function %d has %d parameters, asked for %d", b.curFunc, len(params), i)
	}
	slot := params[i]
	return Variable{Type: b.slots[slot].Type, Slot: slot}, nil
}

// EndFunction closes the open function. The function's End is the current
// stream length, where an END terminator is appended.
func (b *Builder) EndFunction() error {
	if b.finalized {
		return errFinalized()
	}
	if b.curFunc < 0 {
		return lifecycleError(ErrCodeNoOpenFunction, "no function is open")
	}
	if b.curBlock >= 0 {
		return lifecycleError(ErrCodeUnclosedBlock, "block %d is still open", b.curBlock)
	}
	b.functions[b.curFunc].End = len(b.instructions)
	b.instructions = append(b.instructions, Instruction{Op: OpEND})
	b.curFunc = -1
	return nil
}

// DeclareBlock reserves a label in the open function. The label can be used
// as a jump target before OpenBlock places it.
func (b *Builder) DeclareBlock() (BlockID, error) {
	if b.finalized {
		return 0, errFinalized()
	}
	if b.curFunc < 0 {
		return 0, lifecycleError(ErrCodeNoOpenFunction, "blocks may only be declared inside a function")
	}
	id := BlockID(len(b.blocks))
	b.blocks = append(b.blocks, Block{ID: id, Func: FunctionID(b.curFunc), Start: -1, End: -1})
	return id, nil
}

// OpenBlock places a declared label at the current end of the stream.
func (b *Builder) OpenBlock(id BlockID) error {
	if b.finalized {
		return errFinalized()
	}
	if b.curFunc < 0 {
		return lifecycleError(ErrCodeNoOpenFunction, "blocks may only be opened inside a function")
	}
	if b.curBlock >= 0 {
		return lifecycleError(ErrCodeBlockAlreadyOpen, "block %d is still open", b.curBlock)
	}
	if id < 0 || int(id) >= len(b.blocks) || b.blocks[id].Func != FunctionID(b.curFunc) {
		return lifecycleError(ErrCodeUnknownLabel, "block %d does not belong to function %d", id, b.curFunc)
	}
	if b.blocks[id].Placed {
		return lifecycleError(ErrCodeUnknownLabel, "block %d is already placed", id)
	}
	blk := &b.blocks[id]
	blk.Start = len(b.instructions)
	blk.Placed = true
	b.curBlock = int(id)
	return nil
}

// StartBlock declares and opens a block in one step.
func (b *Builder) StartBlock() (BlockID, error) {
	if b.finalized {
		return 0, errFinalized()
	}
	if b.curFunc < 0 {
		return 0, lifecycleError(ErrCodeNoOpenFunction, "blocks may only be opened inside a function")
	}
	if b.curBlock >= 0 {
		return 0, lifecycleError(ErrCodeBlockAlreadyOpen, "block %d is still open", b.curBlock)
	}
	id, err := b.DeclareBlock()
	if err != nil {
		return 0, err
	}
	if err := b.OpenBlock(id); err != nil {
		return 0, err
	}
	return id, nil
}

// EndBlock closes the open block.
func (b *Builder) EndBlock() error {
	if b.finalized {
		return errFinalized()
	}
	if b.curBlock < 0 {
		return lifecycleError(ErrCodeNoOpenBlock, "no block is open")
	}
	b.blocks[b.curBlock].End = len(b.instructions)
	b.curBlock = -1
	return nil
}

// Push verifies and appends one instruction. When the instruction yields a
// value a slot is appended and the returned Variable refers to it;
// otherwise the returned Variable is void.
func (b *Builder) Push(op OpCode, operands ...Operand) (Variable, error) {
	if b.finalized {
		return voidVariable(), errFinalized()
	}
	ops := trimEmpty(operands)
	result, err := b.verify(op, ops)
	if err != nil {
		return voidVariable(), err
	}
	idx := len(b.instructions)
	b.instructions = append(b.instructions, Instruction{Op: op, Operands: ops})
	if result == TypeNone {
		return voidVariable(), nil
	}
	kind := SlotValue
	if op == OpPHI {
		kind = SlotCell
	}
	return b.addSlot(idx, result, kind), nil
}

// DeclareVariable creates a mutable binding of type t in the open function.
// The binding starts at zero and changes only through Assign.
func (b *Builder) DeclareVariable(t Type) (Variable, error) {
	if b.finalized {
		return voidVariable(), errFinalized()
	}
	if b.curFunc < 0 {
		return voidVariable(), lifecycleError(ErrCodeNoOpenFunction, "variables may only be declared inside a function")
	}
	if t == TypeNone || !t.Valid() {
		return voidVariable(), lifecycleError(ErrCodeTypeMismatch, "variable cannot have type %s", t)
	}
	idx := len(b.instructions)
	b.instructions = append(b.instructions, Instruction{Op: OpVAR})
	return b.addSlot(idx, t, SlotCell), nil
}

// Assign stores src into a variable created by DeclareVariable.
func (b *Builder) Assign(v Variable, src Operand) error {
	if b.finalized {
		return errFinalized()
	}
	if b.curFunc < 0 {
		return lifecycleError(ErrCodeNoOpenFunction, "assignment outside a function")
	}
	if sv, ok := src.(Variable); ok && sv.IsVoid() {
		return operandError(ErrCodeUnassignableSource, OpSET, 1, "source instruction produced no value")
	}
	if !b.isDeclaredVariable(v) {
		return operandError(ErrCodeUnknownVariable, OpSET, 0, "%s is not a declared variable of function %d", v, b.curFunc)
	}
	if err := b.checkOperand(OpSET, 1, src); err != nil {
		return err
	}
	t, err := valueType(OpSET, 1, src)
	if err != nil {
		return err
	}
	if t != v.Type {
		return operandError(ErrCodeTypeMismatch, OpSET, 1, "cannot assign %s to variable of type %s", t, v.Type)
	}
	b.instructions = append(b.instructions, Instruction{Op: OpSET, Operands: []Operand{v, src}})
	return nil
}

func (b *Builder) isDeclaredVariable(v Variable) bool {
	if !b.ownsSlot(v) {
		return false
	}
	s := b.slots[v.Slot]
	return s.Kind == SlotCell && b.instructions[s.Inst].Op == OpVAR
}

// Finalize moves the accumulated state into an immutable Snapshot. The
// Builder rejects every call afterwards.
func (b *Builder) Finalize() (*Snapshot, error) {
	if b.finalized {
		return nil, errFinalized()
	}
	if b.curFunc >= 0 {
		return nil, lifecycleError(ErrCodeUnclosedFunction, "function %d has no end", b.curFunc)
	}
	for _, fn := range b.functions {
		if !fn.Defined() {
			return nil, lifecycleError(ErrCodeUnknownFunction, "function %d was declared but never defined", fn.ID)
		}
	}
	for _, blk := range b.blocks {
		if !blk.Placed {
			return nil, lifecycleError(ErrCodeUnknownLabel, "block %d was declared but never placed", blk.ID)
		}
	}
	snap := &Snapshot{
		instructions: b.instructions,
		functions:    b.functions,
		blocks:       b.blocks,
		slots:        b.slots,
	}
	b.instructions, b.functions, b.params, b.blocks, b.slots = nil, nil, nil, nil, nil
	b.finalized = true
	return snap, nil
}

func (b *Builder) addSlot(inst int, t Type, kind SlotKind) Variable {
	b.slots = append(b.slots, Slot{Inst: inst, Type: t, Kind: kind})
	return Variable{Type: t, Slot: len(b.slots) - 1}
}

// ownsSlot reports whether v names an existing slot of the open function
// with a matching type.
func (b *Builder) ownsSlot(v Variable) bool {
	if b.curFunc < 0 || v.Slot < 0 || v.Slot >= len(b.slots) {
		return false
	}
	s := b.slots[v.Slot]
	return s.Inst >= b.functions[b.curFunc].Start && s.Type == v.Type
}

func trimEmpty(operands []Operand) []Operand {
	n := len(operands)
	for n > 0 {
		if _, ok := operands[n-1].(Empty); !ok {
			break
		}
		n--
	}
	out := make([]Operand, n)
	copy(out, operands[:n])
	return out
}

func voidVariable() Variable {
	return Variable{Type: TypeNone, Slot: NoSlot}
}

func errFinalized() *BuildError {
	return lifecycleError(ErrCodeFinalized, "builder has already been finalized")
}
