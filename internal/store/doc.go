// Package store provides a SQLite-backed cache of lowered programs.
//
// Each row maps a snapshot hash to the assembly text lowered from it.
// Rows are written once and never updated: a second write for the same
// snapshot hash is ignored, so the first build of a program wins.
//
// All listings are ordered by seq, a logical insertion clock assigned
// inside the write transaction. Wall time is never stored.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout: 5 seconds unless set with WithBusyTimeout
//   - foreign_keys=ON: Enforce referential integrity
package store
