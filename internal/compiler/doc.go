// Package compiler turns program descriptions into IR.
//
// A program is a list of named functions, each a list of steps. Programs
// are written in YAML or CUE; both decode into the same Program type.
//
// Operand syntax inside step args:
//
//	i8:-1  i16:300  i32:0x10  i64:7  bool:true   literals
//	%name                                         parameter, binding or variable
//	@label                                        block label of the same function
//	&name                                         function
//	_                                             empty operand
//
// Validate reports every static problem at once; Compile replays the
// program through ir.Builder, which enforces typing and context rules.
package compiler
