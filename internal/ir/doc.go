// Package ir provides the typed intermediate representation for translit.
//
// The package owns three things:
//   - the value model (Type, Literal, Variable and the other Operand kinds)
//   - the instruction model (OpCode, Instruction, Function, Block, Slot)
//   - the Builder, which verifies every instruction before appending it and
//     produces an immutable Snapshot on Finalize
//
// ir imports nothing internal. Lowering, compilation and storage all build on
// top of it.
//
// Key design constraints:
//   - All state lives on a Builder instance; there are no package globals
//   - A rejected instruction leaves the Builder unchanged
//   - Opcodes and types serialize by name, never by numeric value
//   - A Snapshot is never mutated after Finalize
package ir
