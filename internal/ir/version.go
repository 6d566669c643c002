package ir

// Version constants for the IR schema and the validator.
const (
	// IRVersion is the lowered IR schema version (semver).
	IRVersion = "1.2.0"

	// ValidatorVersion is the lowir validator version.
	ValidatorVersion = "0.1.0"
)
