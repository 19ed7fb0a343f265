// Package store provides the SQLite-backed signature catalog.
//
// Every generation run can be recorded with the signatures it emitted:
//   - Runs: one row per run, keyed by run id, with the signature-set
//     fingerprint and the versions that produced it
//   - Signatures: one row per emitted signature, keyed by (run id,
//     signature id)
//
// # Ordering
//
// Runs and signatures carry a seq column assigned at write time. Every query
// orders by seq, then id COLLATE BINARY, so results are identical across
// machines and never depend on timestamps.
//
// # Idempotency
//
// Writing a run id that already exists is a no-op. Signature ids are
// name-based UUIDs of the canonical signature content (see ir.SignatureID),
// so rewriting a run cannot duplicate its rows.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
