// Package ir defines the value types shared by the sort engine, its
// observers and persistence: algorithms, step events, run states and
// results, plus canonical JSON encoding for golden traces and hashing.
//
// Canonical JSON is deterministic: sorted keys, NFC strings, no floats and no
// whitespace. Golden files and trace hashes depend on that stability.
package ir
