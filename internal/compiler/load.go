package compiler

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// LoadProgram reads a program file. The format is chosen by extension:
// .yaml/.yml or .cue.
func LoadProgram(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program file: %w", err)
	}

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return ParseProgramYAML(data)
	case ".cue":
		return ParseProgramCUE(data, path)
	default:
		return nil, fmt.Errorf("unsupported program format %q (want .yaml, .yml or .cue)", filepath.Ext(path))
	}
}

// ParseProgramYAML decodes a YAML program. Unknown fields are rejected.
func ParseProgramYAML(data []byte) (*Program, error) {
	var prog Program
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&prog); err != nil {
		return nil, fmt.Errorf("failed to parse program YAML: %w", err)
	}
	return &prog, nil
}

// ParseProgramCUE decodes a CUE program. The program may be the whole
// file or the value of a top-level "program" field.
func ParseProgramCUE(data []byte, filename string) (*Program, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	if p := v.LookupPath(cue.ParsePath("program")); p.Exists() {
		v = p
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var prog Program
	if err := v.Decode(&prog); err != nil {
		return nil, formatCUEError(err)
	}
	return &prog, nil
}
