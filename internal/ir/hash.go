package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows the encoding to change without collisions.
const (
	DomainInput = "sortviz/input/v1"
	DomainTrace = "sortviz/trace/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// InputHash identifies an input sequence. Runs over equal inputs share it,
// which lets run history group comparable runs.
func InputHash(values []int) string {
	canonical, err := MarshalCanonical(values)
	if err != nil {
		// []int always marshals
		panic(fmt.Sprintf("InputHash: %v", err))
	}
	return hashWithDomain(DomainInput, canonical)
}

// TraceHash fingerprints an event sequence. Two runs of the same algorithm
// over the same input must produce the same hash.
func TraceHash(events []StepEvent) (string, error) {
	trace := make([]any, len(events))
	for i, e := range events {
		trace[i] = EventDocument(e)
	}
	canonical, err := MarshalCanonical(trace)
	if err != nil {
		return "", fmt.Errorf("TraceHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTrace, canonical), nil
}
