package ir

// Version constants for the trace format and engine.
const (
	// TraceVersion is the canonical trace schema version.
	TraceVersion = "1"

	// EngineVersion is the sortviz engine version.
	EngineVersion = "0.1.0"
)
