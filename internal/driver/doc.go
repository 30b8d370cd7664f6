// Package driver runs one build of a program: static validation, IR
// construction, content hashing, an optional artifact cache lookup,
// lowering to assembly, and the cache write.
//
// A Driver is safe for concurrent use. Each Build gets its own build ID
// from the configured IDGenerator, and every phase is logged through the
// configured slog.Logger with the build ID attached.
package driver
