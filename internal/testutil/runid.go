package testutil

// FixedRunID returns the same run ID every time.
//
// Unlike engine.FixedGenerator, which hands out IDs in sequence, this keeps
// the ID stable across repeated runs so golden traces and stored records
// compare byte for byte. Satisfies engine.RunIDGenerator.
type FixedRunID string

// Generate returns the fixed ID, or "test-run" when empty.
func (id FixedRunID) Generate() string {
	if id == "" {
		return "test-run"
	}
	return string(id)
}
