package ir

// verify checks one instruction against the current Builder state and
// returns its result type. It never mutates the Builder.
//
// Check order: opcode legality, function context, arity, operand
// well-formedness, then per-opcode typing and context rules.
func (b *Builder) verify(op OpCode, ops []Operand) (Type, error) {
	if !op.Valid() {
		return TypeNone, opError(ErrCodeInvalidOpcode, op, "unknown opcode")
	}
	if op.Reserved() {
		return TypeNone, opError(ErrCodeReservedOpcode, op, "appended by the builder, not by push")
	}
	if b.curFunc < 0 {
		switch op {
		case OpRET:
			return TypeNone, opError(ErrCodeReturnOutside, op, "no function is open")
		case OpCALL:
			return TypeNone, opError(ErrCodeCallOutside, op, "no function is open")
		default:
			return TypeNone, opError(ErrCodeNoOpenFunction, op, "no function is open")
		}
	}
	if err := checkArity(op, len(ops)); err != nil {
		return TypeNone, err
	}
	for i, o := range ops {
		if err := b.checkOperand(op, i, o); err != nil {
			return TypeNone, err
		}
	}

	switch {
	case op.IsArithmetic():
		t, err := sameType(op, ops, Type.IsInteger, "an integer")
		if err != nil {
			return TypeNone, err
		}
		if op == OpDIV || op == OpMOD {
			if lit, ok := ops[1].(Literal); ok && lit.Value == 0 {
				return TypeNone, operandError(ErrCodeDivideByZero, op, 1, "divisor is the literal zero")
			}
		}
		return t, nil

	case op.IsComparison():
		// EQ compares any one type; the ordered comparisons need integers.
		accept, want := Type.IsInteger, "an integer"
		if op == OpEQ {
			accept, want = Type.Valid, "a value"
		}
		if _, err := sameType(op, ops, accept, want); err != nil {
			return TypeNone, err
		}
		return TypeBool, nil
	}

	switch op {
	case OpNOP:
		return TypeNone, nil

	case OpAND, OpOR:
		return sameType(op, ops, isIntegerOrBool, "an integer or bool")

	case OpNOT:
		t, err := valueType(op, 0, ops[0])
		if err != nil {
			return TypeNone, err
		}
		if !isIntegerOrBool(t) {
			return TypeNone, operandError(ErrCodeTypeMismatch, op, 0, "expected an integer or bool, got %s", t)
		}
		return TypeBool, nil

	case OpPUSH:
		return valueType(op, 0, ops[0])

	case OpJMP:
		return TypeNone, b.checkLabel(op, 0, ops[0])

	case OpJMPIF:
		cond, ok := ops[0].(Variable)
		if !ok || cond.Type != TypeBool {
			return TypeNone, operandError(ErrCodeTypeMismatch, op, 0, "condition must be a bool variable, got %s", ops[0])
		}
		return TypeNone, b.checkLabel(op, 1, ops[1])

	case OpCALL:
		return b.verifyCall(ops)

	case OpRET:
		return TypeNone, b.verifyReturn(ops)

	case OpPHI:
		return verifyPhi(ops)
	}
	return TypeNone, opError(ErrCodeInvalidOpcode, op, "no verification rule")
}

func checkArity(op OpCode, n int) error {
	switch op {
	case OpCALL:
		if n < 1 {
			return opError(ErrCodeArity, op, "expected a call target, got no operands")
		}
	case OpRET:
		if n > 1 {
			return opError(ErrCodeArity, op, "expected 0 or 1 operands, got %d", n)
		}
	case OpPHI:
		if n < 2 {
			return opError(ErrCodeArity, op, "expected at least 2 operands, got %d", n)
		}
	default:
		if want := op.Arity(); n != want {
			return opError(ErrCodeArity, op, "expected %d operands, got %d", want, n)
		}
	}
	return nil
}

// checkOperand validates an operand in isolation: literals must fit their
// width and variables must name a slot of the open function.
func (b *Builder) checkOperand(op OpCode, i int, o Operand) error {
	switch v := o.(type) {
	case Empty:
		return operandError(ErrCodeTypeMismatch, op, i, "empty operand before a non-empty one")
	case Literal:
		if v.Type == TypeNone || !v.Type.Valid() {
			return operandError(ErrCodeTypeMismatch, op, i, "literal cannot have type %s", v.Type)
		}
		if !v.Type.Fits(v.Value) {
			return operandError(ErrCodeLiteralOverflow, op, i, "payload %d does not fit %s", v.Value, v.Type)
		}
	case Variable:
		if v.IsVoid() {
			return operandError(ErrCodeUnassignableSource, op, i, "source instruction produced no value")
		}
		if !b.ownsSlot(v) {
			return operandError(ErrCodeUnknownVariable, op, i, "%s is not a slot of function %d", v, b.curFunc)
		}
	case nil:
		return operandError(ErrCodeTypeMismatch, op, i, "nil operand")
	}
	return nil
}

// valueType returns the type of a value operand (literal or variable).
func valueType(op OpCode, i int, o Operand) (Type, error) {
	switch v := o.(type) {
	case Literal:
		return v.Type, nil
	case Variable:
		return v.Type, nil
	}
	return TypeNone, operandError(ErrCodeTypeMismatch, op, i, "expected a value, got %s", o)
}

// sameType checks that both operands of a binary op share one type
// accepted by ok.
func sameType(op OpCode, ops []Operand, ok func(Type) bool, want string) (Type, error) {
	t0, err := valueType(op, 0, ops[0])
	if err != nil {
		return TypeNone, err
	}
	if !ok(t0) {
		return TypeNone, operandError(ErrCodeTypeMismatch, op, 0, "expected %s, got %s", want, t0)
	}
	t1, err := valueType(op, 1, ops[1])
	if err != nil {
		return TypeNone, err
	}
	if t1 != t0 {
		return TypeNone, operandError(ErrCodeTypeMismatch, op, 1, "expected %s to match operand 0, got %s", t0, t1)
	}
	return t0, nil
}

func isIntegerOrBool(t Type) bool {
	return t.IsInteger() || t == TypeBool
}

func (b *Builder) checkLabel(op OpCode, i int, o Operand) error {
	ref, ok := o.(BlockRef)
	if !ok {
		return operandError(ErrCodeTypeMismatch, op, i, "expected a block label, got %s", o)
	}
	if ref.ID < 0 || int(ref.ID) >= len(b.blocks) || b.blocks[ref.ID].Func != FunctionID(b.curFunc) {
		return operandError(ErrCodeUnknownLabel, op, i, "block %d is not a label of function %d", ref.ID, b.curFunc)
	}
	return nil
}

func (b *Builder) verifyCall(ops []Operand) (Type, error) {
	ref, ok := ops[0].(FunctionRef)
	if !ok {
		return TypeNone, operandError(ErrCodeTypeMismatch, OpCALL, 0, "expected a function reference, got %s", ops[0])
	}
	if ref.ID < 0 || int(ref.ID) >= len(b.functions) {
		return TypeNone, operandError(ErrCodeUnknownFunction, OpCALL, 0, "function %d was never registered", ref.ID)
	}
	if int(ref.ID) == b.curFunc {
		return TypeNone, operandError(ErrCodeRecursiveSelfCall, OpCALL, 0, "function %d calls itself", ref.ID)
	}
	if ref.ID == 0 {
		return TypeNone, operandError(ErrCodeEntryCall, OpCALL, 0, "the entry function cannot be called")
	}
	sig := b.functions[ref.ID].Sig
	if got := len(ops) - 1; got != len(sig.Params) {
		return TypeNone, opError(ErrCodeArity, OpCALL, "function %d takes %d arguments, got %d", ref.ID, len(sig.Params), got)
	}
	for i, want := range sig.Params {
		t, err := valueType(OpCALL, i+1, ops[i+1])
		if err != nil {
			return TypeNone, err
		}
		if t != want {
			return TypeNone, operandError(ErrCodeTypeMismatch, OpCALL, i+1, "argument %d expects %s, got %s", i, want, t)
		}
	}
	return sig.Returns, nil
}

func (b *Builder) verifyReturn(ops []Operand) error {
	want := b.functions[b.curFunc].Sig.Returns
	if len(ops) == 0 {
		if want != TypeNone {
			return opError(ErrCodeReturnTypeMismatch, OpRET, "function returns %s, got no value", want)
		}
		return nil
	}
	t, err := valueType(OpRET, 0, ops[0])
	if err != nil {
		return err
	}
	if t != want {
		return operandError(ErrCodeReturnTypeMismatch, OpRET, 0, "function returns %s, got %s", want, t)
	}
	return nil
}

func verifyPhi(ops []Operand) (Type, error) {
	var t Type
	for i, o := range ops {
		v, ok := o.(Variable)
		if !ok {
			return TypeNone, operandError(ErrCodeTypeMismatch, OpPHI, i, "expected a variable, got %s", o)
		}
		if i == 0 {
			t = v.Type
			continue
		}
		if v.Type != t {
			return TypeNone, operandError(ErrCodeTypeMismatch, OpPHI, i, "expected %s to match operand 0, got %s", t, v.Type)
		}
	}
	return t, nil
}
