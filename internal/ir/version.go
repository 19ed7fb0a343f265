package ir

// Version constants for IR schema and generator.
const (
	// IRVersion is the signature schema version.
	IRVersion = "1"

	// GeneratorVersion is the tdgen version.
	GeneratorVersion = "0.1.0"
)
