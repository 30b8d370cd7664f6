package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/Translit-INC/translit/internal/ir"
)

// operandKind classifies operand text before names are resolved.
type operandKind int

const (
	operandLiteral operandKind = iota
	operandVariable
	operandLabel
	operandFunction
	operandEmpty
)

// splitOperand classifies text and returns the name or literal body.
func splitOperand(text string) (operandKind, string, error) {
	text = strings.TrimSpace(text)
	switch {
	case text == "_":
		return operandEmpty, "", nil
	case strings.HasPrefix(text, "%"):
		return nameOperand(operandVariable, text)
	case strings.HasPrefix(text, "@"):
		return nameOperand(operandLabel, text)
	case strings.HasPrefix(text, "&"):
		return nameOperand(operandFunction, text)
	case strings.Contains(text, ":"):
		return operandLiteral, text, nil
	}
	return 0, "", fmt.Errorf("malformed operand %q", text)
}

func nameOperand(kind operandKind, text string) (operandKind, string, error) {
	name := text[1:]
	if name == "" {
		return 0, "", fmt.Errorf("operand %q has an empty name", text)
	}
	return kind, normalizeName(name), nil
}

// normalizeName gives names one canonical form so that visually equal
// names written with different Unicode compositions resolve alike.
func normalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ParseLiteral parses "<type>:<value>". Integer values may be negative,
// in which case they are stored in two's complement at the type's width,
// and accept Go number prefixes (0x, 0o, 0b).
func ParseLiteral(text string) (ir.Literal, error) {
	typeName, value, ok := strings.Cut(strings.TrimSpace(text), ":")
	if !ok {
		return ir.Literal{}, fmt.Errorf("literal %q must be <type>:<value>", text)
	}
	t, err := ir.ParseType(typeName)
	if err != nil {
		return ir.Literal{}, err
	}

	switch {
	case t == ir.TypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return ir.Literal{}, fmt.Errorf("literal %q: invalid bool", text)
		}
		return ir.Boolean(b), nil
	case t.IsInteger():
		if strings.HasPrefix(value, "-") {
			n, err := strconv.ParseInt(value, 0, t.Bits())
			if err != nil {
				return ir.Literal{}, fmt.Errorf("literal %q: out of range for %s", text, t)
			}
			return ir.Literal{Type: t, Value: uint64(n) & t.Mask()}, nil
		}
		n, err := strconv.ParseUint(value, 0, t.Bits())
		if err != nil {
			return ir.Literal{}, fmt.Errorf("literal %q: out of range for %s", text, t)
		}
		return ir.Literal{Type: t, Value: n}, nil
	}
	return ir.Literal{}, fmt.Errorf("literal %q cannot have type %s", text, t)
}
