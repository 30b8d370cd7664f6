package ir

import "fmt"

// Type is the value type of a literal, a slot or an instruction result.
type Type uint8

const (
	// TypeNone marks "no value". It is the result type of instructions that
	// produce nothing and the return type of functions that return nothing.
	TypeNone Type = iota
	TypeI8
	TypeI16
	TypeI32
	TypeI64
	TypeBool
)

var typeNames = [...]string{
	TypeNone: "none",
	TypeI8:   "i8",
	TypeI16:  "i16",
	TypeI32:  "i32",
	TypeI64:  "i64",
	TypeBool: "bool",
}

// String returns the type's name as used in programs and serialized IR.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// Valid reports whether t is one of the declared types.
func (t Type) Valid() bool {
	return int(t) < len(typeNames)
}

// IsInteger reports whether t is one of the fixed-width integer types.
func (t Type) IsInteger() bool {
	return t >= TypeI8 && t <= TypeI64
}

// Bits returns the width of a value of type t. Booleans occupy one bit of
// payload; none has no width.
func (t Type) Bits() int {
	switch t {
	case TypeI8:
		return 8
	case TypeI16:
		return 16
	case TypeI32:
		return 32
	case TypeI64:
		return 64
	case TypeBool:
		return 1
	default:
		return 0
	}
}

// Mask returns the payload mask for t.
func (t Type) Mask() uint64 {
	bits := t.Bits()
	if bits == 64 {
		return ^uint64(0)
	}
	return (uint64(1) << bits) - 1
}

// Fits reports whether raw is a valid payload for t.
func (t Type) Fits(raw uint64) bool {
	if t == TypeNone || !t.Valid() {
		return false
	}
	return raw&^t.Mask() == 0
}

// MarshalText encodes the type by name.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid type %d", uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a type name.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseType resolves a type name. "boolean" is accepted as an alias for bool.
func ParseType(name string) (Type, error) {
	if name == "boolean" {
		return TypeBool, nil
	}
	for i, n := range typeNames {
		if n == name {
			return Type(i), nil
		}
	}
	return TypeNone, fmt.Errorf("unknown type %q", name)
}
