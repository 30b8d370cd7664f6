package ir

// Version constants for the IR encoding and the toolchain.
const (
	// IRVersion is the serialized IR schema version. It is part of every
	// snapshot hash, so bumping it invalidates cached artifacts.
	IRVersion = "1"

	// ToolVersion is the translit toolchain version.
	ToolVersion = "0.1.0"
)
