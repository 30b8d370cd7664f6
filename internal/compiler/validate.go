package compiler

import (
	"fmt"
	"strings"

	"github.com/Translit-INC/translit/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrNoFunctions       = "E101" // at least one function required
	ErrDuplicateFunction = "E102" // duplicate function name
	ErrUnknownOpcode     = "E103" // opcode name not recognised
	ErrInvalidType       = "E104" // invalid type string
	ErrDuplicateName     = "E105" // duplicate label or binding name
	ErrMalformedStep     = "E106" // step must have exactly one form
	ErrMalformedOperand  = "E107" // operand text does not parse
	ErrUndefinedName     = "E108" // reference to an undefined name
	ErrEntryParams       = "E109" // entry function takes parameters
)

// ValidationError represents a static program error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors is returned when Validate finds problems.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return fmt.Sprintf("%d validation error(s): %s", len(errs), strings.Join(parts, "; "))
}

// Validate checks a program for static errors.
// Returns all errors found (does not fail-fast). Ordering and typing rules
// are left to the builder at compile time.
func Validate(p *Program) []ValidationError {
	var errs []ValidationError

	// E101: at least one function
	if len(p.Functions) == 0 {
		errs = append(errs, ValidationError{
			Field:   "functions",
			Message: "at least one function is required",
			Code:    ErrNoFunctions,
		})
	}

	funcs := make(map[string]bool)
	for i, fn := range p.Functions {
		name := normalizeName(fn.Name)
		field := fmt.Sprintf("functions[%d]", i)
		if name == "" {
			errs = append(errs, ValidationError{Field: field + ".name", Message: "name is required", Code: ErrMalformedStep})
		} else if funcs[name] {
			// E102: duplicate function
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate function name: %q", fn.Name),
				Code:    ErrDuplicateFunction,
			})
		}
		funcs[name] = true
	}

	for i, fn := range p.Functions {
		errs = append(errs, validateFunction(fmt.Sprintf("functions[%d]", i), i == 0, fn, funcs)...)
	}
	return errs
}

// funcScope collects the names visible inside one function.
type funcScope struct {
	labels   map[string]bool
	bindings map[string]bool
}

func validateFunction(field string, entry bool, fn Function, funcs map[string]bool) []ValidationError {
	var errs []ValidationError
	scope := funcScope{labels: map[string]bool{}, bindings: map[string]bool{}}

	// E109: the entry function has no caller to pass arguments
	if entry && len(fn.Params) > 0 {
		errs = append(errs, ValidationError{
			Field:   field + ".params",
			Message: "the entry function cannot take parameters",
			Code:    ErrEntryParams,
		})
	}

	for j, p := range fn.Params {
		pf := fmt.Sprintf("%s.params[%d]", field, j)
		if err := checkValueType(pf+".type", p.Type); err != nil {
			errs = append(errs, *err)
		}
		errs = append(errs, scope.bind(pf+".name", p.Name)...)
	}
	if fn.Returns != "" {
		if _, err := ir.ParseType(fn.Returns); err != nil {
			errs = append(errs, ValidationError{Field: field + ".returns", Message: err.Error(), Code: ErrInvalidType})
		}
	}

	// First pass declares names so forward references are legal.
	errs = append(errs, scope.declare(field+".body", fn.Body)...)
	errs = append(errs, scope.check(field+".body", fn.Body, funcs)...)
	return errs
}

func (s funcScope) bind(field, name string) []ValidationError {
	name = normalizeName(name)
	if name == "" {
		return []ValidationError{{Field: field, Message: "name is required", Code: ErrMalformedStep}}
	}
	if s.bindings[name] {
		return []ValidationError{{Field: field, Message: fmt.Sprintf("duplicate binding name: %q", name), Code: ErrDuplicateName}}
	}
	s.bindings[name] = true
	return nil
}

func (s funcScope) declare(field string, steps []Step) []ValidationError {
	var errs []ValidationError
	for k, st := range steps {
		sf := fmt.Sprintf("%s[%d]", field, k)
		kind, n := st.kind()
		if n != 1 {
			// E106: exactly one form per step
			errs = append(errs, ValidationError{
				Field:   sf,
				Message: fmt.Sprintf("step must set exactly one of op, label, let, set (found %d)", n),
				Code:    ErrMalformedStep,
			})
			continue
		}
		switch kind {
		case "op":
			if st.To != "" {
				errs = append(errs, s.bind(sf+".to", st.To)...)
			}
		case "let":
			errs = append(errs, s.bind(sf+".let", st.Let)...)
		case "label":
			name := normalizeName(st.Label)
			if s.labels[name] {
				errs = append(errs, ValidationError{Field: sf + ".label", Message: fmt.Sprintf("duplicate label: %q", name), Code: ErrDuplicateName})
			}
			s.labels[name] = true
			errs = append(errs, s.declare(sf+".body", st.Body)...)
		}
	}
	return errs
}

func (s funcScope) check(field string, steps []Step, funcs map[string]bool) []ValidationError {
	var errs []ValidationError
	for k, st := range steps {
		sf := fmt.Sprintf("%s[%d]", field, k)
		kind, n := st.kind()
		if n != 1 {
			continue
		}
		switch kind {
		case "op":
			// E103: opcode must exist and be pushable
			op, err := ir.ParseOpCode(strings.ToUpper(st.Op))
			if err != nil || op.Reserved() {
				errs = append(errs, ValidationError{Field: sf + ".op", Message: fmt.Sprintf("unknown opcode %q", st.Op), Code: ErrUnknownOpcode})
			}
			for a, arg := range st.Args {
				if err := s.checkOperand(fmt.Sprintf("%s.args[%d]", sf, a), arg, funcs); err != nil {
					errs = append(errs, *err)
				}
			}
			if st.Body != nil || st.Value != "" || st.Type != "" {
				errs = append(errs, ValidationError{Field: sf, Message: "op steps take only args and to", Code: ErrMalformedStep})
			}
		case "label":
			errs = append(errs, s.check(sf+".body", st.Body, funcs)...)
		case "let":
			if err := checkValueType(sf+".type", st.Type); err != nil {
				errs = append(errs, *err)
			}
			if st.Value != "" {
				if err := s.checkOperand(sf+".value", st.Value, funcs); err != nil {
					errs = append(errs, *err)
				}
			}
		case "set":
			if !s.bindings[normalizeName(st.Set)] {
				errs = append(errs, ValidationError{Field: sf + ".set", Message: fmt.Sprintf("undefined variable %q", st.Set), Code: ErrUndefinedName})
			}
			if st.Value == "" {
				errs = append(errs, ValidationError{Field: sf + ".value", Message: "set requires a value", Code: ErrMalformedStep})
			} else if err := s.checkOperand(sf+".value", st.Value, funcs); err != nil {
				errs = append(errs, *err)
			}
		}
	}
	return errs
}

func (s funcScope) checkOperand(field, text string, funcs map[string]bool) *ValidationError {
	kind, body, err := splitOperand(text)
	if err != nil {
		return &ValidationError{Field: field, Message: err.Error(), Code: ErrMalformedOperand}
	}
	switch kind {
	case operandLiteral:
		if _, err := ParseLiteral(body); err != nil {
			return &ValidationError{Field: field, Message: err.Error(), Code: ErrMalformedOperand}
		}
	case operandVariable:
		if !s.bindings[body] {
			return &ValidationError{Field: field, Message: fmt.Sprintf("undefined name %q", body), Code: ErrUndefinedName}
		}
	case operandLabel:
		if !s.labels[body] {
			return &ValidationError{Field: field, Message: fmt.Sprintf("undefined label %q", body), Code: ErrUndefinedName}
		}
	case operandFunction:
		if !funcs[body] {
			return &ValidationError{Field: field, Message: fmt.Sprintf("undefined function %q", body), Code: ErrUndefinedName}
		}
	}
	return nil
}

func checkValueType(field, name string) *ValidationError {
	t, err := ir.ParseType(name)
	if err != nil {
		return &ValidationError{Field: field, Message: err.Error(), Code: ErrInvalidType}
	}
	if t == ir.TypeNone {
		return &ValidationError{Field: field, Message: "a value cannot have type none", Code: ErrInvalidType}
	}
	return nil
}
