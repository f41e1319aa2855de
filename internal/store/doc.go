// Package store provides SQLite-backed run history for the sorting engine.
//
// The store keeps:
//   - Runs: one row per finished run with its input, output and counters
//   - Events: the optional step trace of a run, keyed by (run_id, seq)
//
// # Ordering
//
//   - Runs are listed by id. Run IDs are UUIDv7, so id order is start order.
//   - Events are always read ORDER BY seq ASC.
//   - Wall time is stored as elapsed duration only and never orders rows.
//
// # Schema
//
// The schema is versioned through PRAGMA user_version and upgraded in
// order by Open, one transaction per version. Open refuses databases
// stamped newer than SchemaVersion and databases whose runs or events tables
// lack the columns this package reads, returning a *SchemaError.
//
// Connections use WAL journaling, synchronous=NORMAL, a 5 second busy
// timeout and foreign keys, so a deleted run takes its events with it.
//
// Inputs and outputs are stored as canonical JSON arrays, and input_hash is
// ir.InputHash, so runs over the same input can be grouped.
package store
