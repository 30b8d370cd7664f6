package compiler

// Program is a program description as written in a YAML or CUE file.
type Program struct {
	Name      string     `yaml:"name" json:"name"`
	Functions []Function `yaml:"functions" json:"functions"`
}

// Function declares one function. The first function is the entry point.
type Function struct {
	Name    string  `yaml:"name" json:"name"`
	Params  []Param `yaml:"params,omitempty" json:"params,omitempty"`
	Returns string  `yaml:"returns,omitempty" json:"returns,omitempty"` // empty means none
	Body    []Step  `yaml:"body" json:"body"`
}

// Param is a named, typed function parameter.
type Param struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type" json:"type"`
}

// Step is one entry of a function body. Exactly one of Op, Label, Let or
// Set must be present.
type Step struct {
	// Op pushes an instruction; To binds its result to a name.
	Op   string   `yaml:"op,omitempty" json:"op,omitempty"`
	Args []string `yaml:"args,omitempty" json:"args,omitempty"`
	To   string   `yaml:"to,omitempty" json:"to,omitempty"`

	// Label places a block; Body holds the block's steps.
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
	Body  []Step `yaml:"body,omitempty" json:"body,omitempty"`

	// Let declares a mutable variable of Type, optionally initialised
	// from Value.
	Let  string `yaml:"let,omitempty" json:"let,omitempty"`
	Type string `yaml:"type,omitempty" json:"type,omitempty"`

	// Set assigns Value to a declared variable.
	Set   string `yaml:"set,omitempty" json:"set,omitempty"`
	Value string `yaml:"value,omitempty" json:"value,omitempty"`
}

// kind returns which of the mutually exclusive step forms is used, and how
// many were set.
func (s Step) kind() (string, int) {
	var kind string
	n := 0
	for _, c := range []struct {
		name string
		set  bool
	}{
		{"op", s.Op != ""},
		{"label", s.Label != ""},
		{"let", s.Let != ""},
		{"set", s.Set != ""},
	} {
		if c.set {
			kind = c.name
			n++
		}
	}
	return kind, n
}
