// Package harness runs conformance scenarios against the full build
// pipeline.
//
// A scenario names a program file and a list of assertions about the
// build outcome: text that must appear in the assembly, the order of
// instructions, how often a line occurs, the IR that was built, or the
// error code a rejected program must fail with.
//
// Every scenario runs against a fresh in-memory artifact cache with a
// fixed build ID, so repeated runs produce byte-identical output for
// golden-file comparison.
//
// # Scenario format
//
//	name: add_sub
//	description: folds literal arithmetic into pushes
//	program: ../programs/add_sub.yaml
//	assertions:
//	  - type: asm_contains
//	    text: "push 3"
//	  - type: asm_order
//	    lines: ["push 3", "push 2", "syscall"]
//	  - type: asm_count
//	    text: "syscall"
//	    count: 1
//	  - type: ir_contains
//	    text: "ADD i8:1, i8:2"
//	  - type: error_code
//	    code: DIVIDE_BY_ZERO
//
// Program paths are resolved relative to the scenario file.
package harness
