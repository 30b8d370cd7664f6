// Package cli implements the translit command line: compile, validate,
// test and cache. Every command supports --format text|json and returns
// an *ExitError whose code the binary exits with.
package cli
