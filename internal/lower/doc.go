// Package lower translates a finalized ir.Snapshot into x86-64 assembly in
// NASM syntax for Linux.
//
// Every value lives on the stack. Each function frame is anchored at rbp:
// mutable cells (declared variables and PHI results) sit directly below rbp
// and every other value is pushed in program order, so the k-th pushed
// value of a function lives at [rbp-8*(cells+k)]. Block labels reset rsp to
// the depth the stream had at that point, which keeps the layout valid
// across jumps.
//
// Operations on two literals are folded at lowering time. All arithmetic is
// unsigned with 64-bit wraparound, then truncated to the operand width.
//
// Lower is a pure function of its input and may run concurrently over the
// same Snapshot.
package lower
